// Package chunker provides boundary-preferential text chunking.
package chunker

import (
	"strings"

	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
)

// DefaultTargetSize is the default number of characters per chunk.
const DefaultTargetSize = 1200

// DefaultOverlap is the default number of overlapping characters
// between neighbouring chunks.
const DefaultOverlap = 200

// Splitter splits text into bounded-length chunks, cutting at the best
// boundary it can find near the target size: paragraph break first,
// then line break, then sentence end, then a hard cut.
// It implements the Chunker interface.
type Splitter struct {
	target  int
	overlap int
	window  int
}

var _ driven.Chunker = (*Splitter)(nil)

// Option configures the splitter.
type Option func(*Splitter)

// WithTargetSize sets the target chunk size in characters.
func WithTargetSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.target = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		target:  DefaultTargetSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.target {
		s.overlap = s.target / 4
	}

	// Boundaries are only considered in the final third of a chunk so a
	// stray early newline cannot produce a tiny chunk.
	s.window = s.target / 3

	return s
}

// Split divides text into chunks. Whitespace-only input yields no
// chunks; any other input yields at least one. Chunks are emitted in
// source order and each chunk after the first re-includes the tail of
// its predecessor.
func (s *Splitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= s.target {
		return []string{trimmed}
	}

	estimated := (len(runes) / (s.target - s.overlap)) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < len(runes) {
		end := start + s.target
		if end >= len(runes) {
			if piece := strings.TrimSpace(string(runes[start:])); piece != "" {
				chunks = append(chunks, piece)
			}
			break
		}

		cut := s.findCut(runes, end)
		if piece := strings.TrimSpace(string(runes[start:cut])); piece != "" {
			chunks = append(chunks, piece)
		}

		next := cut - s.overlap
		if next <= start {
			// Overlap would stall the scan; drop it for this step.
			next = cut
		}
		start = next
	}

	return chunks
}

// findCut returns the index to cut at for a chunk ending no later than
// end. It prefers the last paragraph break within the search window,
// then the last line break, then the last sentence end, and finally
// falls back to end itself.
func (s *Splitter) findCut(runes []rune, end int) int {
	from := end - s.window
	if from < 0 {
		from = 0
	}

	for i := end - 1; i > from; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i >= from; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i >= from; i-- {
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			return i + 1
		}
	}

	return end
}
