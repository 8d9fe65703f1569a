package domain

import "time"

// Document represents a normalised legal document with metadata.
// It is the canonical representation after text extraction.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// CollectionID links to the Collection this document is indexed in.
	CollectionID string

	// SourceID links to the Source that produced this document.
	SourceID string

	// URI is the original location (file path, bundle entry).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// This is the complete document text before chunking.
	Content string

	// DocType classifies the legal document (lovtekst, vejledning, ...).
	DocType DocType

	// Identifier is the formal document identifier where one exists,
	// e.g. "LBK nr 1284" for a consolidated act or "SKM2023.123.SR"
	// for a ruling.
	Identifier string

	// LawAbbrevs lists the law abbreviations detected in the document
	// (e.g. "LL", "PSL"). The first entry is the primary law.
	LawAbbrevs []string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// PrimaryLaw returns the primary law abbreviation, or "" if none was
// detected.
func (d *Document) PrimaryLaw() string {
	if len(d.LawAbbrevs) == 0 {
		return ""
	}
	return d.LawAbbrevs[0]
}

// Chunk represents a searchable unit within a document.
// Documents are split into chunks for granular search results; each
// chunk carries the legal metadata the retrieval layer boosts on.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Type classifies the chunk (regel, note, eksempel, ...).
	Type ChunkType

	// Section is the section identifier the chunk belongs to, e.g.
	// "§ 9 C" for a law paragraph or "C.C.2.1.1" for a guidance
	// section.
	Section string

	// Subsection narrows Section where applicable, e.g. "Stk. 2".
	Subsection string

	// Title is the heading of the section the chunk was taken from.
	Title string

	// LawRefs lists the structured law references found in the chunk.
	LawRefs []LawRef

	// NormalisedLawRefs lists law references in canonical string form,
	// e.g. "LL § 9 C, stk. 4".
	NormalisedLawRefs []string

	// CaseRefs lists case references as they appeared in the text.
	CaseRefs []string

	// NormalisedCaseRefs lists case references in canonical dotted
	// form, e.g. "SKM.2023.123.SR".
	NormalisedCaseRefs []string

	// NoteRefs lists note numbers referenced by the chunk (law texts
	// use three-digit endnote markers).
	NoteRefs []string

	// Concepts lists the legal key concepts tagged on the chunk.
	Concepts []string

	// Themes lists the broad themes inherited from the section.
	Themes []string

	// IsPrimary marks chunks that state a rule rather than comment
	// on one. Primary chunks rank above derived material.
	IsPrimary bool

	// Retrievability scores how useful the chunk is as a search hit,
	// in [0, 1]. Computed during indexing, recomputed after balancing.
	Retrievability float64

	// LegalStatus records whether the rule in the chunk still applies.
	LegalStatus LegalStatus

	// ExpiryDate holds the expiry date for midlertidig rules, when one
	// could be extracted from the text (free-form, as written).
	ExpiryDate string

	// CrossRefs links to related chunks, weighted by relation strength.
	CrossRefs []CrossRef

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs that have no
	// structured field, e.g. indexer-specific diagnostics.
	Metadata map[string]any
}
