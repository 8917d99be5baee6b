package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driving"
)

// --- Mock services shared by command tests ---

type mockRetrievalService struct {
	results []domain.RetrievalResult
	err     error
	gotOpts domain.SearchOptions
}

func (m *mockRetrievalService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.RetrievalResult, error) {
	m.gotOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockIngestOrchestrator struct {
	report  *driving.IngestReport
	err     error
	gotOpts driving.IngestOptions
}

func (m *mockIngestOrchestrator) Ingest(_ context.Context, opts driving.IngestOptions) (*driving.IngestReport, error) {
	m.gotOpts = opts
	return m.report, m.err
}

func (m *mockIngestOrchestrator) Watch(_ context.Context, opts driving.IngestOptions) error {
	m.gotOpts = opts
	return m.err
}

type mockStateReader struct {
	entries map[string]domain.IngestStateEntry
}

func (m *mockStateReader) Get(_ context.Context, documentID string) (*domain.IngestStateEntry, error) {
	entry, ok := m.entries[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

func (m *mockStateReader) Set(_ context.Context, documentID string, entry domain.IngestStateEntry) error {
	m.entries[documentID] = entry
	return nil
}

func (m *mockStateReader) All(_ context.Context) (map[string]domain.IngestStateEntry, error) {
	return m.entries, nil
}

type mockConfigStore struct {
	values map[string]any
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	value, ok := m.values[key]
	return value, ok
}

func (m *mockConfigStore) GetString(key string) string {
	value, _ := m.values[key].(string)
	return value
}

func (m *mockConfigStore) GetInt(key string) int {
	value, _ := m.values[key].(int)
	return value
}

func (m *mockConfigStore) GetBool(key string) bool {
	value, _ := m.values[key].(bool)
	return value
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	value, _ := m.values[key].([]string)
	return value
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error { return nil }
func (m *mockConfigStore) Load() error { return nil }
func (m *mockConfigStore) Path() string {
	return "/tmp/fixit/config.toml"
}

// setupTestServices wires mock services into the package-level command
// dependencies and returns a cleanup restoring the previous wiring.
func setupTestServices() func() {
	oldRetrieval := retrievalService
	oldIngest := ingestOrchestrator
	oldStates := stateStore

	retrievalService = &mockRetrievalService{
		results: []domain.RetrievalResult{
			{
				DocumentID:    "abc123",
				Source:        "washer-manual.pdf",
				PageNumber:    12,
				ApplianceType: "Washer",
				Summary:       "Remove the drain pump cover",
				PartNumbers:   []string{"WR-60X10074"},
				Score:         0.91,
				Text:          "Remove the drain pump cover",
			},
		},
	}
	ingestOrchestrator = &mockIngestOrchestrator{
		report: &driving.IngestReport{
			RunID:     "run-1",
			Scanned:   3,
			Completed: 2,
			Skipped:   1,
			Duration:  1500 * time.Millisecond,
		},
	}
	stateStore = &mockStateReader{entries: map[string]domain.IngestStateEntry{
		"abc123": {Status: domain.StatusCompleted, Filename: "washer-manual.pdf"},
		"def456": {Status: domain.StatusFailed, Filename: "broken.pdf", Error: "parse failure"},
	}}

	return func() {
		retrievalService = oldRetrieval
		ingestOrchestrator = oldIngest
		stateStore = oldStates
	}
}
