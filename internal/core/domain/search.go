package domain

// SummaryFallbackLen is how much matched text stands in for a missing
// summary field on a retrieval result.
const SummaryFallbackLen = 280

// DefaultTopK is how many reranked results a search returns when the
// caller does not ask for a specific count.
const DefaultTopK = 5

// CandidateMultiplier is how many vector store candidates are fetched
// per requested result before reranking.
const CandidateMultiplier = 2

// SearchOptions controls a retrieval request.
type SearchOptions struct {
	// TopK is the number of results to return. Zero means DefaultTopK.
	TopK int

	// ApplianceType restricts candidates to one appliance category when
	// non-empty.
	ApplianceType string

	// Brand restricts candidates to one brand when non-empty.
	Brand string
}

// RetrievalResult is one ranked candidate returned by the retrieval
// pipeline. Results are produced fresh per query and never persisted.
type RetrievalResult struct {
	// DocumentID is the matched document's content digest.
	DocumentID string

	// Source is the display label of the matched document, typically
	// the source filename.
	Source string

	// PageNumber is the 1-based page of the matched chunk, 0 when the
	// stored metadata did not carry one.
	PageNumber int

	// ApplianceType is the category label recorded at ingest time.
	ApplianceType string

	// Summary is a short description of the match. When the stored
	// metadata has no summary, the first SummaryFallbackLen characters
	// of Text are used.
	Summary string

	// PartNumbers are the part-number tokens recorded for the chunk.
	PartNumbers []string

	// Score is the cross-encoder relevance score. Rerank scores are
	// never mixed with the dense similarity used for candidate
	// generation.
	Score float64

	// Text is the full matched chunk text.
	Text string
}

// Summarise fills the Summary field from Text when it is empty.
func (r *RetrievalResult) Summarise() {
	if r.Summary != "" {
		return
	}
	text := []rune(r.Text)
	if len(text) > SummaryFallbackLen {
		text = text[:SummaryFallbackLen]
	}
	r.Summary = string(text)
}
