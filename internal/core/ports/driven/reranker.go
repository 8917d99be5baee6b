package driven

import "context"

// Reranker scores candidate passages against a query with a
// cross-encoder model.
//
// Implementations may include:
//   - Text Embeddings Inference /rerank endpoint
type Reranker interface {
	// Rerank returns one relevance score per passage, aligned with the
	// input order: scores[i] is the score for passages[i].
	Rerank(ctx context.Context, query string, passages []string) ([]float64, error)

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error
}
