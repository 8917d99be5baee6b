// Package pdf extracts page text and embedded images from PDF manuals
// using the Poppler command line tools.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
)

// ErrPDFToolNotFound indicates the Poppler tools are not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// CommandRunner abstracts external command execution for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Parser extracts pages from PDF files by shelling out to Poppler.
type Parser struct {
	runner CommandRunner
}

// New creates a new PDF parser using the system Poppler tools.
func New() *Parser {
	return &Parser{runner: execRunner{}}
}

// NewWithRunner creates a parser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Parser {
	return &Parser{runner: runner}
}

// CheckAvailable verifies the Poppler tools are installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific installation help.
func InstallInstructions() string {
	return `PDF parsing requires pdftotext from Poppler:

  macOS:         brew install poppler
  Debian/Ubuntu: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils`
}

// Parse extracts per-page text from the PDF at path. Pages carry
// 1-based numbers in page order. A PDF with no extractable text on any
// page is a parse failure.
func (p *Parser) Parse(ctx context.Context, path string) ([]domain.Page, error) {
	total, err := p.pageCount(ctx, path)
	if err != nil {
		return nil, err
	}

	pages := make([]domain.Page, 0, total)
	hasText := false
	for number := 1; number <= total; number++ {
		n := strconv.Itoa(number)
		out, err := p.runner.Run(ctx, "pdftotext", "-f", n, "-l", n, "-layout", path, "-")
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed on page %d of %s: %w", number, path, err)
		}

		text := strings.TrimSpace(string(out))
		if text != "" {
			hasText = true
		}
		pages = append(pages, domain.Page{Number: number, Text: text})
	}

	if !hasText {
		return nil, fmt.Errorf("no extractable text in %s: %w", path, domain.ErrParseFailure)
	}
	return pages, nil
}

// ExtractImages exports embedded images as PNG files into destDir and
// returns a reference per exported image. References carry the 1-based
// page number encoded in pdfimages' output filenames; the caller fills
// in the owning document ID.
func (p *Parser) ExtractImages(ctx context.Context, path, destDir string) ([]domain.ImageRef, error) {
	prefix := filepath.Join(destDir, "img")
	_, runErr := p.runner.Run(ctx, "pdfimages", "-png", "-p", path, prefix)

	// Collect whatever was exported before any failure.
	exported, globErr := filepath.Glob(prefix + "-*")
	if globErr != nil {
		exported = nil
	}
	sort.Strings(exported)

	refs := make([]domain.ImageRef, 0, len(exported))
	for _, file := range exported {
		refs = append(refs, domain.ImageRef{
			PageNumber: pageFromImageName(prefix, file),
			Path:       file,
		})
	}

	if runErr != nil {
		return refs, fmt.Errorf("pdfimages failed for %s: %w", path, runErr)
	}
	return refs, nil
}

// pageFromImageName recovers the page number from a pdfimages output
// filename of the form <prefix>-<page>-<index>.<ext>. Returns 0 when
// the name does not follow that form.
func pageFromImageName(prefix, file string) int {
	rest := strings.TrimPrefix(file, prefix+"-")
	parts := strings.SplitN(rest, "-", 2)
	page, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	return page
}

// pageCount reads the page count from pdfinfo output.
func (p *Parser) pageCount(ctx context.Context, path string) (int, error) {
	out, err := p.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, fmt.Errorf("pdfinfo failed for %s: %w", path, err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			break
		}
		return count, nil
	}
	return 0, fmt.Errorf("could not read page count for %s: %w", path, domain.ErrParseFailure)
}
