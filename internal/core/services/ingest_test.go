package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockSource implements driven.ManualSource for testing.
type mockSource struct {
	paths   []string
	listErr error
	events  chan string
}

func (m *mockSource) List(_ context.Context, _ string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.paths, nil
}

func (m *mockSource) Watch(_ context.Context, _ string) (<-chan string, error) {
	return m.events, nil
}

// mockParser implements driven.DocumentParser for testing.
type mockParser struct {
	pages      []domain.Page
	failPaths  map[string]bool
	images     []domain.ImageRef
	imagesErr  error
	parseCalls int
}

func (m *mockParser) Parse(_ context.Context, path string) ([]domain.Page, error) {
	m.parseCalls++
	if m.failPaths[path] {
		return nil, domain.ErrParseFailure
	}
	return m.pages, nil
}

func (m *mockParser) ExtractImages(_ context.Context, _, _ string) ([]domain.ImageRef, error) {
	return m.images, m.imagesErr
}

// wholeTextChunker returns each page's text as a single chunk.
type wholeTextChunker struct{}

func (wholeTextChunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []string{text}
}

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	queryVec   []float32
	batchErr   error
	embedErr   error
	batchCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.queryVec, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return 2 }
func (m *mockEmbedder) ModelName() string { return "mock-embedder" }

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockSparse implements driven.SparseEncoder for testing.
type mockSparse struct {
	fitCalls int
}

func (m *mockSparse) Fit(_ []string) { m.fitCalls++ }

func (m *mockSparse) Encode(_ string) domain.SparseVector {
	return domain.SparseVector{Indices: []uint32{7}, Values: []float32{1}}
}

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	upserts    [][]driven.UpsertRecord
	upsertErr  error
	candidates []driven.Candidate
	queryErr   error
	gotTopK    int
	gotFilter  map[string]any
}

func (m *mockVectorStore) Upsert(_ context.Context, _ string, records []driven.UpsertRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	batch := make([]driven.UpsertRecord, len(records))
	copy(batch, records)
	m.upserts = append(m.upserts, batch)
	return nil
}

func (m *mockVectorStore) Query(_ context.Context, _ string, _ []float32, topK int, filter map[string]any) ([]driven.Candidate, error) {
	m.gotTopK = topK
	m.gotFilter = filter
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.candidates, nil
}

func (m *mockVectorStore) Ping(_ context.Context) error { return nil }

// mockStateStore implements driven.IngestStateStore for testing.
type mockStateStore struct {
	entries map[string]domain.IngestStateEntry
	history []domain.IngestStatus
	setErr  error
}

func newMockStateStore() *mockStateStore {
	return &mockStateStore{entries: make(map[string]domain.IngestStateEntry)}
}

func (m *mockStateStore) Get(_ context.Context, documentID string) (*domain.IngestStateEntry, error) {
	entry, ok := m.entries[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (m *mockStateStore) Set(_ context.Context, documentID string, entry domain.IngestStateEntry) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[documentID] = entry
	m.history = append(m.history, entry.Status)
	return nil
}

func (m *mockStateStore) All(_ context.Context) (map[string]domain.IngestStateEntry, error) {
	out := make(map[string]domain.IngestStateEntry, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

// mockDocStore implements driven.DocumentStore for testing.
type mockDocStore struct {
	docs       map[string]*domain.Document
	chunks     map[string][]domain.Chunk
	saveDocErr error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{
		docs:   make(map[string]*domain.Document),
		chunks: make(map[string][]domain.Chunk),
	}
}

func (m *mockDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if m.saveDocErr != nil {
		return m.saveDocErr
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) > 0 {
		m.chunks[chunks[0].DocumentID] = chunks
	}
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	return m.chunks[documentID], nil
}

func (m *mockDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (m *mockDocStore) DeleteDocument(_ context.Context, id string) error {
	delete(m.docs, id)
	delete(m.chunks, id)
	return nil
}

func (m *mockDocStore) Close() error { return nil }

// --- Test fixtures ---

type ingestFixture struct {
	root     string
	source   *mockSource
	parser   *mockParser
	embedder *mockEmbedder
	sparse   *mockSparse
	vectors  *mockVectorStore
	states   *mockStateStore
	docs     *mockDocStore
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	return &ingestFixture{
		root: t.TempDir(),
		source: &mockSource{},
		parser: &mockParser{
			pages: []domain.Page{
				{Number: 1, Text: "Remove the drain pump filter. Part WR-60X10074 fits model WF45T6000AW."},
				{Number: 2, Text: "Reinstall the access panel and restore power."},
			},
		},
		embedder: &mockEmbedder{},
		sparse:   &mockSparse{},
		vectors:  &mockVectorStore{},
		states:   newMockStateStore(),
		docs:     newMockDocStore(),
	}
}

// addManual writes a fake manual under root and registers it with the
// source mock. Content determines the digest.
func (f *ingestFixture) addManual(t *testing.T, relPath, content string) string {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	f.source.paths = append(f.source.paths, path)
	return path
}

func (f *ingestFixture) orchestrator(batchSize int) *IngestOrchestrator {
	return NewIngestOrchestrator(
		f.source, f.parser, wholeTextChunker{}, f.embedder, f.sparse,
		f.vectors, f.states, f.docs,
		"manuals", "", batchSize,
	)
}

// --- Tests ---

func TestIngestSingleDocument(t *testing.T) {
	f := newIngestFixture(t)
	path := f.addManual(t, "Washer/Samsung/manual.pdf", "washer manual bytes")
	digest, err := domain.FileDigest(path)
	require.NoError(t, err)

	report, err := f.orchestrator(0).Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.RunID)

	// Checkpoint went processing then completed.
	assert.Equal(t, []domain.IngestStatus{domain.StatusProcessing, domain.StatusCompleted}, f.states.history)

	// One upsert batch with one record per page chunk.
	require.Len(t, f.vectors.upserts, 1)
	records := f.vectors.upserts[0]
	require.Len(t, records, 2)
	assert.Equal(t, digest+"-0", records[0].ID)
	assert.Equal(t, digest+"-1", records[1].ID)
	assert.Equal(t, "Washer", records[0].Metadata["appliance_type"])
	assert.Equal(t, "Samsung", records[0].Metadata["brand"])
	assert.Equal(t, "manual.pdf", records[0].Metadata["filename"])
	assert.Equal(t, 1, records[0].Metadata["page_number"])
	assert.Contains(t, records[0].Metadata["part_numbers"], "WR-60X10074")

	// Document metadata written.
	doc, err := f.docs.GetDocument(context.Background(), digest)
	require.NoError(t, err)
	assert.Equal(t, "manual.pdf", doc.Filename)
	assert.Equal(t, 2, doc.TotalPages)
	require.Len(t, f.docs.chunks[digest], 2)
}

func TestIngestSecondRunSkipsCompleted(t *testing.T) {
	f := newIngestFixture(t)
	f.addManual(t, "Washer/Samsung/manual.pdf", "washer manual bytes")
	orch := f.orchestrator(0)

	_, err := orch.Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)
	embedsAfterFirst := f.embedder.batchCalls

	report, err := orch.Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Completed)
	// No pipeline work on the second pass.
	assert.Equal(t, embedsAfterFirst, f.embedder.batchCalls)
	assert.Len(t, f.vectors.upserts, 1)
}

func TestIngestDuplicateContentProcessedOnce(t *testing.T) {
	f := newIngestFixture(t)
	f.addManual(t, "Washer/Samsung/a.pdf", "identical bytes")
	f.addManual(t, "Dryer/LG/b.pdf", "identical bytes")

	report, err := f.orchestrator(0).Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, f.embedder.batchCalls)
}

func TestIngestRetriesCrashedDocument(t *testing.T) {
	f := newIngestFixture(t)
	path := f.addManual(t, "Washer/Samsung/manual.pdf", "washer manual bytes")
	digest, err := domain.FileDigest(path)
	require.NoError(t, err)

	// Simulate a crash mid-ingest: entry stuck at processing.
	f.states.entries[digest] = domain.IngestStateEntry{
		Status:   domain.StatusProcessing,
		Filename: "manual.pdf",
	}

	report, err := f.orchestrator(0).Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, domain.StatusCompleted, f.states.entries[digest].Status)
}

func TestIngestFailureIsolated(t *testing.T) {
	f := newIngestFixture(t)
	bad := f.addManual(t, "Washer/Samsung/bad.pdf", "bad bytes")
	good := f.addManual(t, "Washer/Samsung/good.pdf", "good bytes")
	f.parser.failPaths = map[string]bool{bad: true}

	report, err := f.orchestrator(0).Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad, report.Failures[0].Path)

	badDigest, err := domain.FileDigest(bad)
	require.NoError(t, err)
	entry := f.states.entries[badDigest]
	assert.Equal(t, domain.StatusFailed, entry.Status)
	assert.NotEmpty(t, entry.Error)

	goodDigest, err := domain.FileDigest(good)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, f.states.entries[goodDigest].Status)
}

func TestIngestStrictHaltsOnFirstFailure(t *testing.T) {
	f := newIngestFixture(t)
	bad := f.addManual(t, "Washer/Samsung/a-bad.pdf", "bad bytes")
	f.addManual(t, "Washer/Samsung/b-good.pdf", "good bytes")
	f.parser.failPaths = map[string]bool{bad: true}

	report, err := f.orchestrator(0).Ingest(context.Background(), driving.IngestOptions{Root: f.root, Strict: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIngestHalted)

	// The second document was never reached.
	assert.Equal(t, 0, report.Completed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, f.parser.parseCalls)
}

func TestIngestUpsertBatching(t *testing.T) {
	f := newIngestFixture(t)
	f.addManual(t, "Washer/Samsung/manual.pdf", "washer manual bytes")

	// Five pages of one chunk each with a batch size of two gives
	// batches of 2, 2, 1.
	f.parser.pages = nil
	for i := 1; i <= 5; i++ {
		f.parser.pages = append(f.parser.pages, domain.Page{Number: i, Text: "page text"})
	}

	_, err := f.orchestrator(2).Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	require.Len(t, f.vectors.upserts, 3)
	assert.Len(t, f.vectors.upserts[0], 2)
	assert.Len(t, f.vectors.upserts[1], 2)
	assert.Len(t, f.vectors.upserts[2], 1)

	// Batches are contiguous and in chunk order.
	var ids []string
	for _, batch := range f.vectors.upserts {
		for _, record := range batch {
			ids = append(ids, record.ID)
		}
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
}

func TestIngestUpsertFailureMarksFailed(t *testing.T) {
	f := newIngestFixture(t)
	path := f.addManual(t, "Washer/Samsung/manual.pdf", "washer manual bytes")
	f.vectors.upsertErr = domain.ErrVectorStoreUnavailable

	report, err := f.orchestrator(0).Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	digest, err := domain.FileDigest(path)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, f.states.entries[digest].Status)

	// No document row without a complete upsert.
	_, err = f.docs.GetDocument(context.Background(), digest)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestMetadataTextCapped(t *testing.T) {
	f := newIngestFixture(t)
	f.addManual(t, "Washer/Samsung/manual.pdf", "washer manual bytes")
	long := strings.Repeat("x", domain.MetadataTextCap+500)
	f.parser.pages = []domain.Page{{Number: 1, Text: long}}

	_, err := f.orchestrator(0).Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	require.Len(t, f.vectors.upserts, 1)
	stored := f.vectors.upserts[0][0].Metadata["text"].(string)
	assert.Len(t, stored, domain.MetadataTextCap)

	// The persisted chunk keeps the full text.
	digest := f.vectors.upserts[0][0].Metadata["document_id"].(string)
	assert.Len(t, f.docs.chunks[digest][0].Text, len(long))
}

func TestIngestImageExportFailureDegrades(t *testing.T) {
	f := newIngestFixture(t)
	f.root = t.TempDir()
	path := f.addManual(t, "Washer/Samsung/manual.pdf", "washer manual bytes")
	f.parser.imagesErr = errors.New("pdfimages: exec format error")

	orch := NewIngestOrchestrator(
		f.source, f.parser, wholeTextChunker{}, f.embedder, f.sparse,
		f.vectors, f.states, f.docs,
		"manuals", t.TempDir(), 0,
	)
	report, err := orch.Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)

	digest, err := domain.FileDigest(path)
	require.NoError(t, err)
	doc, err := f.docs.GetDocument(context.Background(), digest)
	require.NoError(t, err)
	assert.Empty(t, doc.Images)
}

func TestIngestEmptyDocumentFails(t *testing.T) {
	f := newIngestFixture(t)
	f.addManual(t, "Washer/Samsung/scanned.pdf", "image-only manual")
	f.parser.pages = []domain.Page{{Number: 1, Text: "   "}}

	report, err := f.orchestrator(0).Ingest(context.Background(), driving.IngestOptions{Root: f.root})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Reason, "no chunks")
}
