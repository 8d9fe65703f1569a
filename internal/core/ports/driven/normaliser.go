package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// Normaliser converts raw source bytes into a normalised document:
// plain text content plus metadata, ready for document type detection
// and indexing.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority breaks ties when multiple normalisers support the same
	// MIME type. Higher wins.
	Priority() int

	// Normalise converts a raw document. Returns
	// domain.ErrUnsupportedType when the content cannot be handled
	// despite a matching MIME type.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult carries the outcome of normalising one raw document.
type NormaliseResult struct {
	// Document is the normalised document. DocType is left unset;
	// detection runs after normalisation.
	Document *domain.Document
}
