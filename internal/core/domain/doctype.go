package domain

// DocType classifies a legal document by its publication form.
// The type decides which indexer chunks the document.
type DocType string

// Available document types.
const (
	// DocTypeLovtekst is a statute or consolidated act (lovbekendtgørelse).
	DocTypeLovtekst DocType = "lovtekst"

	// DocTypeVejledning is an administrative guidance document.
	DocTypeVejledning DocType = "vejledning"

	// DocTypeCirkulaere is a circular issued to the tax administration.
	DocTypeCirkulaere DocType = "cirkulaere"

	// DocTypeAfgoerelse is a published ruling or judgment.
	DocTypeAfgoerelse DocType = "afgoerelse"

	// DocTypeJuridiskVejledning is a section of Den juridiske vejledning,
	// the tax authority's consolidated legal guide.
	DocTypeJuridiskVejledning DocType = "juridisk_vejledning"

	// DocTypeGenerisk is any document that matched no specific type.
	DocTypeGenerisk DocType = "generisk"
)

// IsValid returns true if the document type is recognised.
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeLovtekst, DocTypeVejledning, DocTypeCirkulaere,
		DocTypeAfgoerelse, DocTypeJuridiskVejledning, DocTypeGenerisk:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t DocType) String() string {
	return string(t)
}

// Description returns a human-readable description of the type.
func (t DocType) Description() string {
	switch t {
	case DocTypeLovtekst:
		return "Lovtekst (statute or consolidated act)"
	case DocTypeVejledning:
		return "Vejledning (administrative guidance)"
	case DocTypeCirkulaere:
		return "Cirkulære (administrative circular)"
	case DocTypeAfgoerelse:
		return "Afgørelse (ruling or judgment)"
	case DocTypeJuridiskVejledning:
		return "Den juridiske vejledning (legal guide section)"
	case DocTypeGenerisk:
		return "Generisk (untyped document)"
	default:
		return unknownDescription
	}
}

// AllDocTypes returns all recognised document types.
func AllDocTypes() []DocType {
	return []DocType{
		DocTypeLovtekst,
		DocTypeVejledning,
		DocTypeCirkulaere,
		DocTypeAfgoerelse,
		DocTypeJuridiskVejledning,
		DocTypeGenerisk,
	}
}
