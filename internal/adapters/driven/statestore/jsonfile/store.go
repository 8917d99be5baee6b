// Package jsonfile provides an ingest state store backed by a single
// JSON file.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IngestStateStore = (*Store)(nil)

// Store keeps the full checkpoint map in memory and rewrites the whole
// file on every mutation. Simple rather than scalable; fine at manual
// corpus sizes because ingestion is infrequent.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]domain.IngestStateEntry
}

// NewStore creates a store persisted at path, loading any existing
// checkpoint file. A missing file starts an empty map; an unreadable
// or corrupt file is an error rather than a silent reset, since
// resetting would re-ingest the entire corpus.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]domain.IngestStateEntry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}
	// A status outside the closed set means the file was edited or
	// written by something else; treat it like any other corruption.
	for digest, entry := range s.entries {
		if _, err := domain.ParseIngestStatus(string(entry.Status)); err != nil {
			return nil, fmt.Errorf("state file %s: entry %s: %w", path, digest, err)
		}
	}
	return s, nil
}

// Path returns the checkpoint file path.
func (s *Store) Path() string {
	return s.path
}

// Get retrieves the entry for a document digest.
func (s *Store) Get(_ context.Context, documentID string) (*domain.IngestStateEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[documentID]
	if !ok {
		return nil, fmt.Errorf("state for %s: %w", documentID, domain.ErrNotFound)
	}
	return &entry, nil
}

// Set stores or replaces the entry for a document digest. The entry is
// durable on disk before Set returns; on a persist failure the
// in-memory map is left unchanged.
func (s *Store) Set(_ context.Context, documentID string, entry domain.IngestStateEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.entries[documentID]
	s.entries[documentID] = entry

	if err := s.persist(); err != nil {
		if existed {
			s.entries[documentID] = previous
		} else {
			delete(s.entries, documentID)
		}
		return err
	}
	return nil
}

// All returns a copy of every recorded entry keyed by document digest.
func (s *Store) All(_ context.Context) (map[string]domain.IngestStateEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.IngestStateEntry, len(s.entries))
	for id, entry := range s.entries {
		out[id] = entry
	}
	return out, nil
}

// persist rewrites the whole checkpoint file atomically: write to a
// temp file in the same directory, sync, then rename over the old one.
// A crash can therefore never leave a half-written checkpoint.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close state: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
