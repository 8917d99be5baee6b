package driven

import (
	"context"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
)

// DocumentParser extracts text and images from a manual file.
//
// Implementations may include:
//   - Poppler (pdftotext, pdfinfo, pdfimages) for PDF manuals
type DocumentParser interface {
	// Parse extracts per-page text from the file at path. Pages are
	// returned in page order with 1-based numbering. A file from which
	// no text can be extracted is a parse failure.
	Parse(ctx context.Context, path string) ([]domain.Page, error)

	// ExtractImages exports embedded images to destDir and returns a
	// reference per exported image. Image extraction is best-effort;
	// implementations return what they could export alongside any error.
	ExtractImages(ctx context.Context, path, destDir string) ([]domain.ImageRef, error)
}
