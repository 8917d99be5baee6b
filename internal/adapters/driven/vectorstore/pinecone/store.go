// Package pinecone provides a vector store adapter for the Pinecone
// REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultTimeout bounds each API call.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the Pinecone store.
type Config struct {
	// Host is the index host URL (required), e.g.
	// https://fixit-abc123.svc.us-east-1-aws.pinecone.io
	Host string

	// APIKey is the Pinecone API key (required).
	APIKey string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Store talks to one Pinecone index over its REST API.
type Store struct {
	client *http.Client
	host   string
	apiKey string
}

// wire formats for the Pinecone data plane.
type sparseValues struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

type upsertVector struct {
	ID           string         `json:"id"`
	Values       []float32      `json:"values"`
	SparseValues *sparseValues  `json:"sparse_values,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []upsertVector `json:"vectors"`
	Namespace string         `json:"namespace"`
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Namespace       string         `json:"namespace"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// NewStore creates a new Pinecone store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("pinecone: %w: index host is required", domain.ErrMissingConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone: %w: API key is required", domain.ErrMissingConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client: &http.Client{Timeout: cfg.Timeout},
		host:   cfg.Host,
		apiKey: cfg.APIKey,
	}, nil
}

// Upsert writes records into the namespace. Records with existing IDs
// are overwritten, which makes re-ingesting a document safe.
func (s *Store) Upsert(ctx context.Context, namespace string, records []driven.UpsertRecord) error {
	if len(records) == 0 {
		return nil
	}

	vectors := make([]upsertVector, len(records))
	for i, record := range records {
		v := upsertVector{
			ID:       record.ID,
			Values:   record.Values,
			Metadata: record.Metadata,
		}
		if len(record.Sparse.Indices) > 0 {
			v.SparseValues = &sparseValues{
				Indices: record.Sparse.Indices,
				Values:  record.Sparse.Values,
			}
		}
		vectors[i] = v
	}

	body := upsertRequest{Vectors: vectors, Namespace: namespace}
	if err := s.post(ctx, "/vectors/upsert", body, nil); err != nil {
		return fmt.Errorf("upsert %d vectors: %w", len(records), err)
	}
	return nil
}

// Query returns the topK nearest candidates by dense similarity within
// the namespace. An index with no matching content yields an empty
// slice and no error; a transport or API failure yields an error
// wrapping domain.ErrVectorStoreUnavailable.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]any) ([]driven.Candidate, error) {
	body := queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       namespace,
		Filter:          filter,
		IncludeMetadata: true,
	}

	var resp queryResponse
	if err := s.post(ctx, "/query", body, &resp); err != nil {
		return nil, fmt.Errorf("query top %d: %w", topK, err)
	}

	candidates := make([]driven.Candidate, len(resp.Matches))
	for i, match := range resp.Matches {
		candidates[i] = driven.Candidate{
			ID:       match.ID,
			Score:    match.Score,
			Metadata: match.Metadata,
		}
	}
	return candidates, nil
}

// Ping validates the index is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.post(ctx, "/describe_index_stats", struct{}{}, nil)
}

// post issues one JSON request to the data plane and decodes the
// response into out when out is non-nil.
func (s *Store) post(ctx context.Context, path string, payload any, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone: %v: %w", err, domain.ErrVectorStoreUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone: status %d: %s: %w", resp.StatusCode, string(body), domain.ErrVectorStoreUnavailable)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
