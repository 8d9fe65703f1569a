package domain

import (
	"fmt"
	"strings"
)

// ChunkType classifies the legal function of a chunk within its
// document. Retrieval weights and balancing targets differ per type.
type ChunkType string

// Available chunk types.
const (
	// ChunkTypeRegel states a binding rule.
	ChunkTypeRegel ChunkType = "regel"

	// ChunkTypeNote is an explanatory note attached to a paragraph.
	ChunkTypeNote ChunkType = "note"

	// ChunkTypeReference mostly points at other material.
	ChunkTypeReference ChunkType = "reference"

	// ChunkTypeUndtagelse states an exception to a rule.
	ChunkTypeUndtagelse ChunkType = "undtagelse"

	// ChunkTypeEksempel is a worked example.
	ChunkTypeEksempel ChunkType = "eksempel"

	// ChunkTypeDefinition defines a term.
	ChunkTypeDefinition ChunkType = "definition"

	// ChunkTypeOversigt is a table of rulings or similar overview.
	ChunkTypeOversigt ChunkType = "oversigt"

	// ChunkTypeAfsnit is plain body text with no specific function.
	ChunkTypeAfsnit ChunkType = "afsnit"
)

// IsValid returns true if the chunk type is recognised.
func (t ChunkType) IsValid() bool {
	switch t {
	case ChunkTypeRegel, ChunkTypeNote, ChunkTypeReference, ChunkTypeUndtagelse,
		ChunkTypeEksempel, ChunkTypeDefinition, ChunkTypeOversigt, ChunkTypeAfsnit:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ChunkType) String() string {
	return string(t)
}

// BaseRetrievability returns the starting retrievability score for a
// chunk of this type, before content bonuses.
func (t ChunkType) BaseRetrievability() float64 {
	switch t {
	case ChunkTypeRegel:
		return 0.9
	case ChunkTypeUndtagelse:
		return 0.85
	case ChunkTypeDefinition:
		return 0.8
	case ChunkTypeEksempel:
		return 0.75
	case ChunkTypeOversigt:
		return 0.7
	case ChunkTypeNote:
		return 0.6
	case ChunkTypeReference:
		return 0.5
	default:
		return 0.65
	}
}

// AllChunkTypes returns all recognised chunk types.
func AllChunkTypes() []ChunkType {
	return []ChunkType{
		ChunkTypeRegel,
		ChunkTypeNote,
		ChunkTypeReference,
		ChunkTypeUndtagelse,
		ChunkTypeEksempel,
		ChunkTypeDefinition,
		ChunkTypeOversigt,
		ChunkTypeAfsnit,
	}
}

// LegalStatus records whether the rule stated by a chunk still applies.
type LegalStatus string

// Available legal statuses.
const (
	// LegalStatusGaeldende marks rules currently in force.
	LegalStatusGaeldende LegalStatus = "gaeldende"

	// LegalStatusMidlertidig marks rules with a limited lifetime.
	LegalStatusMidlertidig LegalStatus = "midlertidig"

	// LegalStatusOphaevet marks repealed rules.
	LegalStatusOphaevet LegalStatus = "ophaevet"

	// LegalStatusHistorisk marks commentary on rules no longer in force.
	LegalStatusHistorisk LegalStatus = "historisk"
)

// IsValid returns true if the status is recognised.
func (s LegalStatus) IsValid() bool {
	switch s {
	case LegalStatusGaeldende, LegalStatusMidlertidig, LegalStatusOphaevet, LegalStatusHistorisk:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s LegalStatus) String() string {
	return string(s)
}

// Description returns a human-readable description of the status.
func (s LegalStatus) Description() string {
	switch s {
	case LegalStatusGaeldende:
		return "Gældende (in force)"
	case LegalStatusMidlertidig:
		return "Midlertidig (time-limited)"
	case LegalStatusOphaevet:
		return "Ophævet (repealed)"
	case LegalStatusHistorisk:
		return "Historisk (commentary on repealed rules)"
	default:
		return unknownDescription
	}
}

// AllLegalStatuses returns all recognised legal statuses.
func AllLegalStatuses() []LegalStatus {
	return []LegalStatus{
		LegalStatusGaeldende,
		LegalStatusMidlertidig,
		LegalStatusOphaevet,
		LegalStatusHistorisk,
	}
}

// LawRef is a structured reference to a law paragraph.
type LawRef struct {
	// Law is the law abbreviation, e.g. "LL" for ligningsloven.
	// Empty when the text used a bare "§ n" and no law could be
	// resolved from context.
	Law string

	// Paragraph is the paragraph number including any letter suffix,
	// e.g. "9 C" or "33 A".
	Paragraph string

	// Stk is the stykke (subsection) number, or "" when absent.
	Stk string

	// Nr is the nummer within the stykke, or "" when absent.
	Nr string
}

// String renders the reference in canonical form, e.g.
// "LL § 9 C, stk. 4, nr. 2".
func (r LawRef) String() string {
	var b strings.Builder
	if r.Law != "" {
		b.WriteString(r.Law)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "§ %s", r.Paragraph)
	if r.Stk != "" {
		fmt.Fprintf(&b, ", stk. %s", r.Stk)
	}
	if r.Nr != "" {
		fmt.Fprintf(&b, ", nr. %s", r.Nr)
	}
	return b.String()
}

// Relation describes how two chunks relate to each other.
type Relation string

// Available cross-reference relations, ordered roughly by strength.
const (
	RelationHasExample       Relation = "has_example"
	RelationExampleOf        Relation = "example_of"
	RelationSameSection      Relation = "same_section"
	RelationCommonPrimaryLaw Relation = "common_primary_law"
	RelationCommonLawRef     Relation = "common_law_reference"
	RelationCommonCaseRef    Relation = "common_case_reference"
	RelationCommonConcept    Relation = "common_concept"
	RelationRelated          Relation = "related"
)

// CrossRef links a chunk to a related chunk.
type CrossRef struct {
	// ChunkID is the related chunk.
	ChunkID string

	// Relation describes why the chunks are related.
	Relation Relation

	// Weight scores the strength of the relation. Higher is stronger.
	Weight int
}
