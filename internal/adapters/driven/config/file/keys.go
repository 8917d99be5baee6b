package file

// Canonical configuration keys. Values live under dotted TOML tables,
// e.g. [pinecone] host = "..." becomes "pinecone.host".
const (
	// Embedding service.
	KeyEmbeddingAPIKey  = "embedding.api_key"
	KeyEmbeddingBaseURL = "embedding.base_url"
	KeyEmbeddingModel   = "embedding.model"

	// Pinecone index.
	KeyPineconeHost      = "pinecone.host"
	KeyPineconeAPIKey    = "pinecone.api_key"
	KeyPineconeNamespace = "pinecone.namespace"

	// Cross-encoder reranker.
	KeyRerankerBaseURL = "reranker.base_url"
	KeyRerankerAPIKey  = "reranker.api_key"

	// Ingestion.
	KeyIngestBatchSize = "ingest.batch_size"
	KeyIngestStrict    = "ingest.strict"
)
