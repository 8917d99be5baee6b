package tei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
)

func newTestReranker(t *testing.T, handler http.HandlerFunc) *Reranker {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	reranker, err := NewReranker(Config{BaseURL: server.URL})
	require.NoError(t, err)
	return reranker
}

func TestNewReranker_RequiresBaseURL(t *testing.T) {
	_, err := NewReranker(Config{})
	assert.ErrorIs(t, err, domain.ErrMissingConfig)
}

func TestRerank_AlignsScoresByIndex(t *testing.T) {
	reranker := newTestReranker(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rerank", r.URL.Path)

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "why is the fridge warm", req.Query)
		require.Len(t, req.Texts, 3)

		// TEI returns items ranked best-first, not in input order.
		items := []rerankItem{
			{Index: 2, Score: 0.95},
			{Index: 0, Score: 0.41},
			{Index: 1, Score: 0.12},
		}
		require.NoError(t, json.NewEncoder(w).Encode(items))
	})

	scores, err := reranker.Rerank(context.Background(), "why is the fridge warm",
		[]string{"condenser coils", "door gasket", "evaporator fan"})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.41, 0.12, 0.95}, scores)
}

func TestRerank_EmptyPassages(t *testing.T) {
	reranker := newTestReranker(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for empty passages")
	})

	scores, err := reranker.Rerank(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestRerank_ServerError(t *testing.T) {
	reranker := newTestReranker(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := reranker.Rerank(context.Background(), "query", []string{"passage"})
	assert.ErrorIs(t, err, domain.ErrRerankerUnavailable)
}

func TestRerank_ScoreCountMismatch(t *testing.T) {
	reranker := newTestReranker(t, func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]rerankItem{{Index: 0, Score: 0.5}}))
	})

	_, err := reranker.Rerank(context.Background(), "query", []string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 passages")
}

func TestPing(t *testing.T) {
	reranker := newTestReranker(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, reranker.Ping(context.Background()))
}
