package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrParseFailure indicates a document could not be parsed at all.
	// The document is recorded as failed and enumeration continues.
	ErrParseFailure = errors.New("parse failure")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store could not be
	// reached. At query time this is a fatal per-query error and must
	// never be collapsed into an empty result set, so callers can
	// trigger their own fallback.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrRerankerUnavailable indicates the rerank service is not
	// configured or unreachable.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrMissingConfig indicates required configuration (index name,
	// API key) is absent. Fatal at startup, never per-document.
	ErrMissingConfig = errors.New("missing configuration")

	// ErrIngestHalted indicates strict-mode ingestion stopped on the
	// first document failure.
	ErrIngestHalted = errors.New("ingestion halted")
)
