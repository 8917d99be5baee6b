// Package filesystem provides a manual source backed by the local
// filesystem.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
)

// ManualPattern matches manual files relative to the corpus root.
const ManualPattern = "**/*.pdf"

// Ensure Source implements the interface.
var _ driven.ManualSource = (*Source)(nil)

// Source enumerates and watches manual files under a corpus root.
type Source struct{}

// New creates a new filesystem source.
func New() *Source {
	return &Source{}
}

// List walks root and returns the paths of all manuals, sorted
// lexicographically so repeated runs visit files in the same order.
// Hidden directories are skipped.
func (s *Source) List(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isManual(root, path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Watch emits the path of each manual created or written under root.
// New subdirectories are added to the watch as they appear. The channel
// is closed when ctx is cancelled.
func (s *Source) Watch(ctx context.Context, root string) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// fsnotify watches are not recursive; register every directory.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	events := make(chan string)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Create) {
					if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
						_ = watcher.Add(ev.Name)
						continue
					}
				}
				if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
					continue
				}
				if !isManual(root, ev.Name) {
					continue
				}
				select {
				case events <- ev.Name:
				case <-ctx.Done():
					return
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return events, nil
}

// isManual reports whether path matches the manual pattern relative to
// root. Matching is case-insensitive on the extension.
func isManual(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	match, err := doublestar.Match(ManualPattern, strings.ToLower(filepath.ToSlash(rel)))
	if err != nil {
		return false
	}
	return match
}
