package domain

import (
	"strconv"
	"time"
)

// Document represents an ingested manual.
// Identity is the content digest of the raw file bytes, so two copies of
// the same manual under different paths resolve to one document.
type Document struct {
	// ID is the content digest (hex-encoded SHA-256 of the raw bytes).
	ID string

	// Filename is the base name of the source file.
	Filename string

	// ApplianceType is derived from the first path segment under the
	// ingestion root (e.g. "Refrigerator"). "unknown" when the path is
	// too shallow. Structural convention, not content-derived.
	ApplianceType string

	// Brand is derived from the second path segment under the ingestion
	// root (e.g. "Samsung"). "unknown" when the path is too shallow.
	Brand string

	// TotalPages is the page count reported by the parser.
	TotalPages int

	// Images describes the raster images exported during parsing.
	Images []ImageRef

	// IngestedAt is when the document completed ingestion.
	IngestedAt time.Time
}

// Page holds the extracted content of one manual page.
// Pages are transient: they exist only between parsing and chunking
// and are never persisted.
type Page struct {
	// Number is the 1-based page position.
	Number int

	// Text is the extracted plain text.
	Text string

	// Images describes raster images embedded in this page.
	Images []ImageRef
}

// ImageRef describes one exported page image.
type ImageRef struct {
	// DocumentID is the owning document's content digest.
	DocumentID string

	// PageNumber is the 1-based page the image was found on.
	PageNumber int

	// Path is where the exported image was written.
	Path string
}

// Chunk is a bounded-length text segment produced by the chunker.
// Chunk identity for storage purposes is "{DocumentID}-{Index}", which
// makes re-upserts overwrite rather than duplicate.
type Chunk struct {
	// DocumentID is the owning document's content digest.
	DocumentID string

	// Index is the zero-based position within the document's chunk
	// sequence. Stable across reruns of the same document.
	Index int

	// PageNumber is the 1-based page the chunk was cut from.
	PageNumber int

	// Text is the raw chunk text.
	Text string

	// PartNumbers are best-effort part-number tokens found in Text,
	// deduplicated and sorted.
	PartNumbers []string

	// ModelNumbers are best-effort model-number tokens found in Text,
	// deduplicated and sorted.
	ModelNumbers []string
}

// VectorID returns the deterministic vector-store identity of the chunk.
func (c Chunk) VectorID() string {
	return c.DocumentID + "-" + strconv.Itoa(c.Index)
}

// SparseVector maps hashed token indices to non-negative weights, in the
// {indices, values} shape remote vector stores expect. Indices and Values
// are parallel slices.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// EmbeddingRecord pairs a chunk with its dense and sparse vectors.
// This is the unit of upsert into the vector store.
type EmbeddingRecord struct {
	// Chunk carries identity and metadata.
	Chunk Chunk

	// Dense is the fixed-dimensionality, L2-normalised embedding.
	Dense []float32

	// Sparse is the hashed term-weight vector.
	Sparse SparseVector
}

// MetadataTextCap is the maximum chunk text length persisted as
// vector-store metadata. Longer text is truncated at storage time only;
// the in-memory chunk keeps the full text.
const MetadataTextCap = 2000
