package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/normalisers/docx"
	"github.com/lovbase/paragraf/internal/normalisers/html"
	"github.com/lovbase/paragraf/internal/normalisers/markdown"
	"github.com/lovbase/paragraf/internal/normalisers/pdf"
	"github.com/lovbase/paragraf/internal/normalisers/plaintext"
)

// Registry routes raw documents to the normaliser registered for
// their MIME type. When several normalisers claim a type the highest
// priority wins.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byMIME: make(map[string][]driven.Normaliser),
	}
}

// NewDefaultRegistry creates a registry with all built-in normalisers
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	return r
}

// Register adds a normaliser for all its supported MIME types.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mime := range normaliser.SupportedMIMETypes() {
		mime = canonicalMIME(mime)
		list := append(r.byMIME[mime], normaliser)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mime] = list
	}
}

// Normalise converts a raw document using the best normaliser for its
// MIME type. Unknown types fall back to the plaintext normaliser when
// one is registered.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	normaliser := r.lookup(canonicalMIME(raw.MIMEType))
	if normaliser == nil {
		return nil, fmt.Errorf("%w: no normaliser for MIME type %q", domain.ErrUnsupportedType, raw.MIMEType)
	}

	return normaliser.Normalise(ctx, raw)
}

// SupportedMIMETypes returns the MIME types with a registered
// normaliser, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		types = append(types, mime)
	}
	sort.Strings(types)
	return types
}

func (r *Registry) lookup(mime string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if list := r.byMIME[mime]; len(list) > 0 {
		return list[0]
	}
	if list := r.byMIME["text/plain"]; len(list) > 0 {
		return list[0]
	}
	return nil
}

// canonicalMIME lowercases the type and drops parameters such as
// "; charset=utf-8".
func canonicalMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}
