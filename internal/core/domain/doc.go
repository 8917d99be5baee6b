// Package domain defines the core business entities for Fixit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested manual identified by its content digest
//   - Page: Extracted text and images for one manual page
//   - Chunk: A searchable unit within a document
//   - EmbeddingRecord: The unit of upsert into the vector store
//   - RetrievalResult: A ranked, evidence-bearing passage
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
