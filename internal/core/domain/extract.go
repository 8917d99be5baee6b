package domain

import (
	"regexp"
	"sort"
)

// Part and model number extraction is a best-effort annotation pass over
// chunk text. The patterns are tuned to common appliance conventions and
// will produce false positives (e.g. all-caps headings); that is an
// accepted limitation and matches are never filtered beyond dedup+sort.
var (
	// partNumberRe matches tokens like "WR-60X10074" or "AP4345814":
	// a short alphanumeric prefix, optional hyphen, then the numeric
	// body. Prefixes as short as two characters ("WR", "DA") are
	// common across appliance brands.
	partNumberRe = regexp.MustCompile(`\b[A-Z0-9]{2,5}-?[0-9A-Z]{3,9}\b`)

	// modelNumberRe matches longer hyphen/slash-joined groups like
	// "ABC-123/DEF" or "RF28R7551-SR".
	modelNumberRe = regexp.MustCompile(`\b[A-Z0-9]{3,}-[A-Z0-9/]{3,}\b`)
)

// ExtractPartNumbers returns the deduplicated, sorted part-number
// candidates found in text.
func ExtractPartNumbers(text string) []string {
	return dedupSorted(partNumberRe.FindAllString(text, -1))
}

// ExtractModelNumbers returns the deduplicated, sorted model-number
// candidates found in text.
func ExtractModelNumbers(text string) []string {
	return dedupSorted(modelNumberRe.FindAllString(text, -1))
}

func dedupSorted(matches []string) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
