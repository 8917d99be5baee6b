// Package tfidf provides a per-document TF-IDF sparse encoder with
// CRC32 token hashing for vector store compatibility.
package tfidf

import (
	"hash/crc32"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
)

// MaxVocabulary caps the fitted vocabulary at the most frequent terms.
const MaxVocabulary = 20000

// Ensure Encoder implements the interface.
var _ driven.SparseEncoder = (*Encoder)(nil)

// Encoder weights terms by TF-IDF over one document's chunk set.
//
// The vocabulary is refit per document, so weights express term
// importance within that document only. Sparse weights are therefore
// not comparable across documents; acceptable for within-document term
// importance, a known limitation for cross-document sparse similarity.
type Encoder struct {
	idf  map[string]float64
	docs int
}

// New creates a new unfitted encoder. Encode before Fit yields empty
// vectors.
func New() *Encoder {
	return &Encoder{}
}

// Fit computes term statistics over the given chunk texts. Each text
// counts as one unit for document-frequency purposes. Any previous fit
// is discarded.
func (e *Encoder) Fit(texts []string) {
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range tokenize(text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	if len(df) > MaxVocabulary {
		df = truncateVocabulary(df, MaxVocabulary)
	}

	e.docs = len(texts)
	e.idf = make(map[string]float64, len(df))
	for term, n := range df {
		// Smoothed IDF, always positive.
		e.idf[term] = math.Log(float64(1+e.docs)/float64(1+n)) + 1
	}
}

// Encode converts text into an L2-normalised sparse vector over the
// fitted vocabulary. Terms outside the vocabulary are ignored; text
// with no known terms yields an empty vector. Indices are sorted
// ascending and weights on colliding indices are summed.
func (e *Encoder) Encode(text string) domain.SparseVector {
	if len(e.idf) == 0 {
		return domain.SparseVector{}
	}

	counts := make(map[string]int)
	for _, term := range tokenize(text) {
		if _, ok := e.idf[term]; ok {
			counts[term]++
		}
	}
	if len(counts) == 0 {
		return domain.SparseVector{}
	}

	weights := make(map[uint32]float64, len(counts))
	var norm float64
	for term, tf := range counts {
		w := float64(tf) * e.idf[term]
		norm += w * w
		weights[Hash(term)] += w
	}
	norm = math.Sqrt(norm)

	indices := make([]uint32, 0, len(weights))
	for index := range weights {
		indices = append(indices, index)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, index := range indices {
		values[i] = float32(weights[index] / norm)
	}

	return domain.SparseVector{Indices: indices, Values: values}
}

// Hash maps a term to its fixed-width vector index. The same function
// is used on ingest and query so indices line up; collisions are
// accepted as negligible at vocabulary scale.
func Hash(term string) uint32 {
	return crc32.ChecksumIEEE([]byte(term))
}

// tokenize lowercases text and splits it into alphanumeric terms of at
// least two characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

// truncateVocabulary keeps the limit most frequent terms, breaking ties
// alphabetically so fits are deterministic.
func truncateVocabulary(df map[string]int, limit int) map[string]int {
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})

	kept := make(map[string]int, limit)
	for _, term := range terms[:limit] {
		kept[term] = df[term]
	}
	return kept
}
