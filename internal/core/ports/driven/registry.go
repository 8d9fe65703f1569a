package driven

import (
	"context"

	"github.com/lovbase/paragraf/internal/core/domain"
)

// NormaliserRegistry selects and runs the right normaliser for a raw
// document based on its MIME type.
type NormaliserRegistry interface {
	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// Normalise routes the raw document to the highest-priority
	// normaliser supporting its MIME type. Returns
	// domain.ErrUnsupportedType when no normaliser matches.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// SupportedMIMETypes returns all MIME types with a registered
	// normaliser.
	SupportedMIMETypes() []string
}
