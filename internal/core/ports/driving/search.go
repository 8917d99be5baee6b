package driving

import (
	"context"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
)

// RetrievalService answers repair questions against the ingested corpus.
type RetrievalService interface {
	// Search runs hybrid retrieval with cross-encoder reranking and
	// returns the top results in descending score order. No matches is
	// a valid empty answer, not an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RetrievalResult, error)
}
