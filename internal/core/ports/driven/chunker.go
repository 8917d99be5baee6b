package driven

// Chunker splits extracted page text into retrieval-sized pieces.
type Chunker interface {
	// Split divides text into chunks. Non-empty input always yields at
	// least one chunk; chunks are returned in document order.
	Split(text string) []string
}
