// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ManualSource: Enumerates manual files under a corpus root
//   - DocumentParser: Extracts page text and images from a manual
//   - Chunker: Splits page text into retrieval-sized chunks
//   - EmbeddingService: Generates dense vector embeddings
//   - SparseEncoder: Generates sparse lexical vectors
//   - VectorStore: Remote hybrid vector index (upsert and query)
//   - Reranker: Cross-encoder relevance scoring
//   - IngestStateStore: Per-document ingestion checkpoint persistence
//   - DocumentStore: Document and chunk metadata persistence
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, parser, or connector package
package driven
