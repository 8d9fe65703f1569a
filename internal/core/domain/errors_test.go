package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrSyncInProgress", ErrSyncInProgress},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrSearchUnavailable", ErrSearchUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrCollectionNotFound", ErrCollectionNotFound},
		{"ErrEmbeddingMismatch", ErrEmbeddingMismatch},
		{"ErrConnectorValidation", ErrConnectorValidation},
		{"ErrConnectorClosed", ErrConnectorClosed},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Distinct tests that sentinel errors do not match each other
func TestErrors_Distinct(t *testing.T) {
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
	assert.False(t, errors.Is(ErrCollectionNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrLLMUnavailable, ErrEmbeddingUnavailable))
}

// TestErrors_Wrapping tests that wrapped sentinels survive errors.Is
func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("load collection %q: %w", "standard", ErrCollectionNotFound)

	assert.True(t, errors.Is(wrapped, ErrCollectionNotFound))
	assert.Contains(t, wrapped.Error(), "standard")

	doubly := fmt.Errorf("search: %w", wrapped)
	assert.True(t, errors.Is(doubly, ErrCollectionNotFound))
}
