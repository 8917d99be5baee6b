package driven

import (
	"context"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
)

// IngestStateStore persists per-document ingestion progress.
// The store is the source of truth for resumable runs: a document
// recorded as completed is never re-processed.
type IngestStateStore interface {
	// Get retrieves the state entry for a document digest.
	// Returns domain.ErrNotFound when no entry exists.
	Get(ctx context.Context, documentID string) (*domain.IngestStateEntry, error)

	// Set stores or replaces the state entry for a document digest.
	// The entry must be durable before Set returns.
	Set(ctx context.Context, documentID string, entry domain.IngestStateEntry) error

	// All returns every recorded entry keyed by document digest.
	All(ctx context.Context) (map[string]domain.IngestStateEntry, error)
}
