package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fixit-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers queries in two stages: dense candidate
// generation from the vector store, then cross-encoder reranking of
// the candidate texts.
type RetrievalService struct {
	embedder  driven.EmbeddingService
	vectors   driven.VectorStore
	reranker  driven.Reranker
	namespace string
}

// NewRetrievalService creates a new retrieval service querying the
// given vector store namespace.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	reranker driven.Reranker,
	namespace string,
) *RetrievalService {
	return &RetrievalService{
		embedder:  embedder,
		vectors:   vectors,
		reranker:  reranker,
		namespace: namespace,
	}
}

// Search embeds the query, fetches an over-sampled candidate set,
// reranks candidates against the query, and returns the top results.
// An empty candidate set returns an empty slice; a store that cannot
// be reached returns an error, never a silently empty answer.
func (s *RetrievalService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	// 1. EMBED QUERY
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// 2. CANDIDATE GENERATION
	// Over-sample so the reranker has room to reorder.
	filter := buildFilter(opts)
	candidates, err := s.vectors.Query(ctx, s.namespace, vector, topK*domain.CandidateMultiplier, filter)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	if len(candidates) == 0 {
		logger.Debug("No candidates for query %q", query)
		return []domain.RetrievalResult{}, nil
	}
	logger.Debug("Reranking %d candidates for query %q", len(candidates), query)

	// 3. CROSS-ENCODER RERANK
	passages := make([]string, len(candidates))
	for i, candidate := range candidates {
		passages[i] = metaString(candidate.Metadata, "text")
	}
	scores, err := s.reranker.Rerank(ctx, query, passages)
	if err != nil {
		return nil, fmt.Errorf("rerank candidates: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("rerank candidates: got %d scores for %d passages", len(scores), len(candidates))
	}

	// 4. ORDER AND TRIM
	// Stable sort keeps the original candidate order for tied scores.
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > topK {
		order = order[:topK]
	}

	results := make([]domain.RetrievalResult, 0, len(order))
	for _, i := range order {
		meta := candidates[i].Metadata
		result := domain.RetrievalResult{
			DocumentID:    metaString(meta, "document_id"),
			Source:        metaString(meta, "filename"),
			PageNumber:    metaInt(meta, "page_number"),
			ApplianceType: metaString(meta, "appliance_type"),
			Summary:       metaString(meta, "summary"),
			PartNumbers:   metaStrings(meta, "part_numbers"),
			Score:         scores[i],
			Text:          metaString(meta, "text"),
		}
		result.Summarise()
		results = append(results, result)
	}
	return results, nil
}

// buildFilter translates search options into a vector store metadata
// filter, or nil when the search is unscoped.
func buildFilter(opts domain.SearchOptions) map[string]any {
	filter := map[string]any{}
	if opts.ApplianceType != "" {
		filter["appliance_type"] = opts.ApplianceType
	}
	if opts.Brand != "" {
		filter["brand"] = opts.Brand
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	value, _ := meta[key].(string)
	return value
}

// metaInt reads a numeric metadata value. JSON decoding yields float64
// but records built in-process may carry int.
func metaInt(meta map[string]any, key string) int {
	if meta == nil {
		return 0
	}
	switch value := meta[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return 0
	}
}

// metaStrings reads a string list metadata value, tolerating both
// []string and the []any form JSON decoding produces.
func metaStrings(meta map[string]any, key string) []string {
	if meta == nil {
		return nil
	}
	switch value := meta[key].(type) {
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
