// Package indexers turns normalised documents into typed chunks, one
// indexer per document type. Each indexer knows the structure of its
// type: statutes split on paragraph signs, guidance sections split on
// their section identifiers, rulings split on their standard headings.
//
// Indexers produce chunks with type, section, references and base
// retrievability filled in. Post-processors refine the result and the
// embedding stage runs afterwards.
package indexers
