package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDocType_IsValid tests document type validation
func TestDocType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		docType  DocType
		expected bool
	}{
		{"lovtekst is valid", DocTypeLovtekst, true},
		{"vejledning is valid", DocTypeVejledning, true},
		{"cirkulaere is valid", DocTypeCirkulaere, true},
		{"afgoerelse is valid", DocTypeAfgoerelse, true},
		{"juridisk_vejledning is valid", DocTypeJuridiskVejledning, true},
		{"generisk is valid", DocTypeGenerisk, true},
		{"empty string is invalid", DocType(""), false},
		{"unknown type is invalid", DocType("bekendtgoerelse"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.docType.IsValid())
		})
	}
}

// TestDocType_Description tests that every type has a real description
func TestDocType_Description(t *testing.T) {
	for _, dt := range AllDocTypes() {
		assert.NotEqual(t, unknownDescription, dt.Description(), "type %s", dt)
		assert.NotEmpty(t, dt.Description())
	}
	assert.Equal(t, unknownDescription, DocType("nope").Description())
}

// TestAllDocTypes tests the enumeration is complete and valid
func TestAllDocTypes(t *testing.T) {
	all := AllDocTypes()

	assert.Len(t, all, 6)
	for _, dt := range all {
		assert.True(t, dt.IsValid())
	}
}
