package domain

import (
	"path/filepath"
	"strings"
)

// UnknownCategory is used when a document's path is too shallow to
// carry category information.
const UnknownCategory = "unknown"

// CategoryFromPath derives appliance-type and brand labels from a file's
// position relative to the ingestion root, which is expected to be laid
// out as root/<appliance-type>/<brand>/<file>.
//
// This is a structural convention, not content-derived metadata: the
// labels say where the file was filed, not what the parser found inside
// it. The filename counts as a segment, so a file one directory below
// the root takes its directory as the appliance type and its own name
// as the brand; only paths with fewer than two segments yield "unknown"
// for both labels.
func CategoryFromPath(root, path string) (applianceType, brand string) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return UnknownCategory, UnknownCategory
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return UnknownCategory, UnknownCategory
	}
	return parts[0], parts[1]
}
