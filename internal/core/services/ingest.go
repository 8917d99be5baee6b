package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/fixit-cli/internal/core/domain"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixit-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fixit-cli/internal/logger"
)

// DefaultUpsertBatchSize is how many embedding records are sent per
// vector store upsert call.
const DefaultUpsertBatchSize = 100

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestOrchestrator = (*IngestOrchestrator)(nil)

// IngestOrchestrator runs the resumable ingestion pipeline: digest,
// checkpoint check, parse, chunk, embed, upsert, checkpoint update.
type IngestOrchestrator struct {
	source     driven.ManualSource
	parser     driven.DocumentParser
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	sparse     driven.SparseEncoder
	vectors    driven.VectorStore
	stateStore driven.IngestStateStore
	docStore   driven.DocumentStore

	namespace string
	imageDir  string
	batchSize int
}

// NewIngestOrchestrator creates a new ingest orchestrator. Images
// extracted from manuals are exported under imageDir; batchSize <= 0
// falls back to DefaultUpsertBatchSize.
func NewIngestOrchestrator(
	source driven.ManualSource,
	parser driven.DocumentParser,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	sparse driven.SparseEncoder,
	vectors driven.VectorStore,
	stateStore driven.IngestStateStore,
	docStore driven.DocumentStore,
	namespace string,
	imageDir string,
	batchSize int,
) *IngestOrchestrator {
	if batchSize <= 0 {
		batchSize = DefaultUpsertBatchSize
	}
	return &IngestOrchestrator{
		source:     source,
		parser:     parser,
		chunker:    chunker,
		embedder:   embedder,
		sparse:     sparse,
		vectors:    vectors,
		stateStore: stateStore,
		docStore:   docStore,
		namespace:  namespace,
		imageDir:   imageDir,
		batchSize:  batchSize,
	}
}

// Ingest processes every manual under opts.Root in lexicographic path
// order. Documents whose digest is already recorded as completed are
// skipped, so reruns after a crash or partial failure only do the
// remaining work. One document failing does not stop the run unless
// opts.Strict is set.
func (o *IngestOrchestrator) Ingest(ctx context.Context, opts driving.IngestOptions) (*driving.IngestReport, error) {
	start := time.Now()

	paths, err := o.source.List(ctx, opts.Root)
	if err != nil {
		return nil, fmt.Errorf("enumerate manuals: %w", err)
	}

	report := &driving.IngestReport{
		RunID:   uuid.New().String(),
		Scanned: len(paths),
	}

	logger.Section("Ingest")
	logger.Info("Run %s: %d manuals under %s", report.RunID, len(paths), opts.Root)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := o.ingestOne(ctx, opts.Root, path, report); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, driving.IngestFailure{
				Path:   path,
				Reason: err.Error(),
			})
			logger.Warn("Failed %s: %v", path, err)

			if opts.Strict {
				report.Duration = time.Since(start)
				return report, fmt.Errorf("%w: %s: %v", domain.ErrIngestHalted, path, err)
			}
		}
	}

	report.Duration = time.Since(start)
	logger.Info("Run %s done: %d completed, %d skipped, %d failed",
		report.RunID, report.Completed, report.Skipped, report.Failed)
	return report, nil
}

// Watch runs an initial ingest and then re-ingests whenever a manual
// appears or changes under the root. Each event triggers a full scan;
// the checkpoint log keeps that cheap because completed documents are
// skipped by digest.
func (o *IngestOrchestrator) Watch(ctx context.Context, opts driving.IngestOptions) error {
	if _, err := o.Ingest(ctx, opts); err != nil {
		return err
	}

	events, err := o.source.Watch(ctx, opts.Root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", opts.Root, err)
	}

	logger.Info("Watching %s for new manuals", opts.Root)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			logger.Info("Change detected: %s", path)
			if _, err := o.Ingest(ctx, opts); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				logger.Warn("Re-ingest after change failed: %v", err)
			}
		}
	}
}

// ingestOne handles a single manual file. Checkpoint bookkeeping lives
// here; processDocument does the pipeline work.
func (o *IngestOrchestrator) ingestOne(ctx context.Context, root, path string, report *driving.IngestReport) error {
	// 1. CONTENT DIGEST
	digest, err := domain.FileDigest(path)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}

	// 2. CHECKPOINT CHECK
	// Completed documents are skipped. A document left processing by a
	// crash, or recorded failed, is retried from scratch.
	entry, err := o.stateStore.Get(ctx, digest)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("read checkpoint: %w", err)
	}
	if entry != nil && entry.Status == domain.StatusCompleted {
		report.Skipped++
		logger.Debug("Skipping %s: already ingested as %s", path, digest)
		return nil
	}

	// 3. MARK PROCESSING
	// The write is durable before any pipeline work starts.
	filename := filepath.Base(path)
	if err := o.stateStore.Set(ctx, digest, domain.IngestStateEntry{
		Status:   domain.StatusProcessing,
		Filename: filename,
	}); err != nil {
		return fmt.Errorf("checkpoint processing: %w", err)
	}

	// 4. PARSE, CHUNK, EMBED, UPSERT
	if err := o.processDocument(ctx, root, path, digest, filename); err != nil {
		if stateErr := o.stateStore.Set(ctx, digest, domain.IngestStateEntry{
			Status:   domain.StatusFailed,
			Filename: filename,
			Error:    err.Error(),
		}); stateErr != nil {
			logger.Warn("Could not checkpoint failure for %s: %v", digest, stateErr)
		}
		return err
	}

	// 5. MARK COMPLETED
	// Only reached after the upsert and the document metadata write
	// both succeeded.
	if err := o.stateStore.Set(ctx, digest, domain.IngestStateEntry{
		Status:   domain.StatusCompleted,
		Filename: filename,
	}); err != nil {
		return fmt.Errorf("checkpoint completed: %w", err)
	}

	report.Completed++
	logger.Debug("Completed %s (%s)", path, digest)
	return nil
}

// processDocument runs the pipeline for one manual.
//
//nolint:gocognit // Pipeline orchestration with sequential steps
func (o *IngestOrchestrator) processDocument(ctx context.Context, root, path, digest, filename string) error {
	applianceType, brand := domain.CategoryFromPath(root, path)

	// 1. EXTRACT PAGE TEXT
	pages, err := o.parser.Parse(ctx, path)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	// 2. EXPORT IMAGES (best-effort; failures degrade to no images)
	var images []domain.ImageRef
	if o.imageDir != "" {
		destDir := filepath.Join(o.imageDir, digest)
		if err := os.MkdirAll(destDir, 0755); err != nil {
			logger.Warn("Could not create image dir for %s: %v", digest, err)
		} else {
			refs, imgErr := o.parser.ExtractImages(ctx, path, destDir)
			if imgErr != nil {
				logger.Warn("Image export incomplete for %s: %v", path, imgErr)
			}
			for i := range refs {
				refs[i].DocumentID = digest
			}
			images = refs
		}
	}

	// 3. CHUNK IN PAGE ORDER
	// Chunk indices are assigned across pages in a single sequence so
	// {digest}-{index} identities are stable across reruns.
	var chunks []domain.Chunk
	for _, page := range pages {
		for _, text := range o.chunker.Split(page.Text) {
			chunks = append(chunks, domain.Chunk{
				DocumentID:   digest,
				Index:        len(chunks),
				PageNumber:   page.Number,
				Text:         text,
				PartNumbers:  domain.ExtractPartNumbers(text),
				ModelNumbers: domain.ExtractModelNumbers(text),
			})
		}
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks produced: %w", domain.ErrParseFailure)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	// 4. EMBED (dense and sparse paths are independent; run the remote
	// dense call while fitting the sparse model locally)
	var dense [][]float32
	var denseErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		dense, denseErr = o.embedder.EmbedBatch(ctx, texts)
	}()

	o.sparse.Fit(texts)
	sparseVecs := make([]domain.SparseVector, len(texts))
	for i, text := range texts {
		sparseVecs[i] = o.sparse.Encode(text)
	}

	<-done
	if denseErr != nil {
		return fmt.Errorf("embed %d chunks: %w", len(texts), denseErr)
	}
	if len(dense) != len(chunks) {
		return fmt.Errorf("embed %d chunks: got %d vectors", len(chunks), len(dense))
	}

	embedded := make([]domain.EmbeddingRecord, len(chunks))
	for i, chunk := range chunks {
		embedded[i] = domain.EmbeddingRecord{
			Chunk:  chunk,
			Dense:  dense[i],
			Sparse: sparseVecs[i],
		}
	}

	// 5. BATCHED UPSERT
	records := buildUpsertRecords(embedded, applianceType, brand, filename)
	for start := 0; start < len(records); start += o.batchSize {
		end := start + o.batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := o.vectors.Upsert(ctx, o.namespace, records[start:end]); err != nil {
			// Partial upserts are not rolled back; the document is
			// retried wholesale next run and deterministic vector IDs
			// make re-upserting overwrite rather than duplicate.
			return fmt.Errorf("upsert batch %d-%d: %w", start, end-1, err)
		}
	}
	logger.Debug("Upserted %d records for %s", len(records), digest)

	// 6. DOCUMENT METADATA
	doc := &domain.Document{
		ID:            digest,
		Filename:      filename,
		ApplianceType: applianceType,
		Brand:         brand,
		TotalPages:    len(pages),
		Images:        images,
		IngestedAt:    time.Now().UTC(),
	}
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := o.docStore.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	return nil
}

// buildUpsertRecords flattens embedding records into the vector store's
// wire shape, attaching the metadata retrieval reads back from matches.
func buildUpsertRecords(embedded []domain.EmbeddingRecord, applianceType, brand, filename string) []driven.UpsertRecord {
	records := make([]driven.UpsertRecord, len(embedded))
	for i, record := range embedded {
		chunk := record.Chunk
		records[i] = driven.UpsertRecord{
			ID:     chunk.VectorID(),
			Values: record.Dense,
			Sparse: record.Sparse,
			Metadata: map[string]any{
				"document_id":      chunk.DocumentID,
				"chunk_index":      chunk.Index,
				"page_number":      chunk.PageNumber,
				"filename":         filename,
				"text":             capText(chunk.Text),
				"appliance_type":   applianceType,
				"brand":            brand,
				"part_numbers":     chunk.PartNumbers,
				"appliance_models": chunk.ModelNumbers,
			},
		}
	}
	return records
}

// capText truncates chunk text to the metadata storage cap without
// splitting a multi-byte rune.
func capText(text string) string {
	runes := []rune(text)
	if len(runes) <= domain.MetadataTextCap {
		return text
	}
	return string(runes[:domain.MetadataTextCap])
}
