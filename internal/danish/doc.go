// Package danish analyses Danish legal text: law and case reference
// extraction, guidance section identifiers, stopword filtering,
// concept detection and question classification.
//
// The extraction functions are shared between query analysis (what is
// the user asking about) and indexing (what does this chunk cite), so
// both sides normalise references the same way and metadata boosting
// can match them exactly.
package danish
