package driven

import "github.com/custodia-labs/fixit-cli/internal/core/domain"

// SparseEncoder produces sparse lexical vectors for hybrid retrieval.
//
// The encoder is fitted per document: Fit derives term statistics from
// one document's chunks, and subsequent Encode calls weight terms
// against those statistics until the next Fit.
type SparseEncoder interface {
	// Fit computes term statistics over the given chunk texts.
	Fit(texts []string)

	// Encode converts text into a sparse vector using the statistics
	// from the most recent Fit. Text with no known terms yields an
	// empty vector.
	Encode(text string) domain.SparseVector
}
