package domain

import "fmt"

// IngestStatus is the closed set of per-document ingestion states.
// A document absent from the state store is implicitly pending.
type IngestStatus string

const (
	// StatusPending means the document has not been claimed yet.
	// Pending is implicit: pending documents have no state entry.
	StatusPending IngestStatus = "pending"

	// StatusProcessing means ingestion started but has not finished.
	// A document still marked processing after a restart crashed
	// mid-ingest and is retried from scratch.
	StatusProcessing IngestStatus = "processing"

	// StatusCompleted means all chunks were embedded and upserted and
	// the document metadata row was written.
	StatusCompleted IngestStatus = "completed"

	// StatusFailed means ingestion raised an error; the document is
	// retried on the next run.
	StatusFailed IngestStatus = "failed"
)

// Valid reports whether s is a member of the closed status set.
func (s IngestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ParseIngestStatus converts a stored string into an IngestStatus,
// rejecting anything outside the closed set.
func ParseIngestStatus(raw string) (IngestStatus, error) {
	s := IngestStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: ingest status %q", ErrInvalidInput, raw)
	}
	return s, nil
}

// IngestStateEntry is one row of the durable checkpoint map, keyed by
// content digest.
type IngestStateEntry struct {
	// Status is the current ingestion state.
	Status IngestStatus `json:"status"`

	// Filename is the source file the digest was first seen under.
	Filename string `json:"filename"`

	// Error holds the failure message when Status is failed.
	Error string `json:"error,omitempty"`
}
