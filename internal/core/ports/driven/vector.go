package driven

import (
	"context"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
)

// VectorStore is a remote hybrid vector index.
// Backed by a Pinecone-style REST API.
type VectorStore interface {
	// Upsert writes records into the given namespace, overwriting any
	// records with the same IDs.
	Upsert(ctx context.Context, namespace string, records []UpsertRecord) error

	// Query returns the topK nearest candidates to the dense query
	// vector within the namespace. A nil filter matches everything;
	// otherwise candidates must match every filter field. An empty
	// result is a valid answer, not an error.
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]any) ([]Candidate, error)

	// Ping validates the store is reachable.
	Ping(ctx context.Context) error
}

// UpsertRecord is one vector plus its metadata, keyed by chunk vector ID.
type UpsertRecord struct {
	// ID is the chunk's vector ID (document digest plus chunk index).
	ID string

	// Values is the dense embedding.
	Values []float32

	// Sparse is the lexical vector, empty when the chunk produced no
	// sparse terms.
	Sparse domain.SparseVector

	// Metadata is stored alongside the vector and returned on query.
	Metadata map[string]any
}

// Candidate is one similarity match returned by Query.
type Candidate struct {
	// ID is the matched record's vector ID.
	ID string

	// Score is the store's similarity score.
	Score float64

	// Metadata is the metadata stored with the record.
	Metadata map[string]any
}
