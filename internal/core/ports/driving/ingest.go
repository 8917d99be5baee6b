package driving

import (
	"context"
	"time"
)

// IngestOrchestrator coordinates manual ingestion runs.
type IngestOrchestrator interface {
	// Ingest processes every manual under opts.Root and returns a
	// report of the run. Per-document failures are recorded in the
	// report and do not fail the run unless opts.Strict is set.
	Ingest(ctx context.Context, opts IngestOptions) (*IngestReport, error)

	// Watch runs an initial ingest and then re-ingests manuals as they
	// appear or change under opts.Root, until ctx is cancelled.
	Watch(ctx context.Context, opts IngestOptions) error
}

// IngestOptions controls an ingestion run.
type IngestOptions struct {
	// Root is the corpus directory to scan.
	Root string

	// Strict halts the run on the first document failure.
	Strict bool
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// Scanned is the number of manual files found under the root.
	Scanned int

	// Skipped is the number of documents already ingested.
	Skipped int

	// Completed is the number of documents ingested this run.
	Completed int

	// Failed is the number of documents that could not be ingested.
	Failed int

	// Failures lists each failed document.
	Failures []IngestFailure

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// IngestFailure records one document that failed during a run.
type IngestFailure struct {
	// Path is the file that failed.
	Path string

	// Reason is the failure message.
	Reason string
}
