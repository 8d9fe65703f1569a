package domain

import "time"

// DefaultCollectionName is the collection used when none is selected.
const DefaultCollectionName = "standard"

// Collection is a named index over a set of documents. Collections are
// built and searched independently; one collection is active at a time.
type Collection struct {
	// ID is the unique identifier for the collection.
	ID string

	// Name is the unique human-chosen name, e.g. "standard" or
	// "aktieavance-2025".
	Name string

	// Description is an optional free-form description.
	Description string

	// EmbeddingModel records which model produced the stored vectors.
	// Searching with a different model would compare incompatible
	// spaces, so the service refuses to mix models within a collection.
	EmbeddingModel string

	// Dimensions is the vector size of the stored embeddings.
	Dimensions int

	// Provenance records how the collection was created, e.g. toolchain
	// details parsed from an imported bundle's requirements manifest.
	Provenance map[string]string

	// CreatedAt is when the collection was created.
	CreatedAt time.Time

	// UpdatedAt is when the collection last changed.
	UpdatedAt time.Time
}

// CollectionStats summarises the contents of a collection.
type CollectionStats struct {
	// CollectionID identifies the collection.
	CollectionID string

	// Documents is the number of documents in the collection.
	Documents int

	// Chunks is the number of chunks in the collection.
	Chunks int

	// Embedded is the number of chunks with a stored embedding.
	Embedded int

	// ByDocType counts documents per document type.
	ByDocType map[DocType]int

	// ByChunkType counts chunks per chunk type.
	ByChunkType map[ChunkType]int

	// ByLegalStatus counts chunks per legal status.
	ByLegalStatus map[LegalStatus]int
}
