package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corpora-dev/corpora/internal/chunker"
	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
	"github.com/corpora-dev/corpora/internal/core/ports/driving"
	"github.com/corpora-dev/corpora/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestService = (*IngestOrchestrator)(nil)

// IngestOrchestrator drives the per-document pipeline:
// chunk -> embed -> index -> status update.
//
// Invariant: the vector index holds chunks for a document if and only
// if that document's final status is completed. Chunks inserted before
// a later step fails are rolled back before the failure is reported.
type IngestOrchestrator struct {
	docStore  driven.DocumentStore
	index     driven.VectorIndex
	chunks    *chunker.Chunker
	embedding driven.EmbeddingService
	extractor driven.TextExtractor
}

// NewIngestOrchestrator creates a new ingestion orchestrator.
// The extractor is only needed for Upload and may be nil when
// documents arrive with their content already extracted.
func NewIngestOrchestrator(
	docStore driven.DocumentStore,
	index driven.VectorIndex,
	chunks *chunker.Chunker,
	embedding driven.EmbeddingService,
	extractor driven.TextExtractor,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		docStore:  docStore,
		index:     index,
		chunks:    chunks,
		embedding: embedding,
		extractor: extractor,
	}
}

// Upload extracts text from the file at path and ingests it as a new
// document. Unsupported document types are rejected before any work.
func (o *IngestOrchestrator) Upload(
	ctx context.Context, path string, docType domain.DocumentType, filename string,
) (*domain.Document, error) {
	if !docType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, docType)
	}

	content, err := o.extractor.Extract(ctx, path, docType)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	doc := &domain.Document{
		ID:        uuid.New().String(),
		Filename:  filename,
		Type:      docType,
		Content:   content,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	return o.Ingest(ctx, doc)
}

// Ingest runs the pipeline for a prepared document. Re-ingesting an
// existing document id overwrites the stored record and replaces its
// indexed chunks rather than appending to them.
func (o *IngestOrchestrator) Ingest(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	logger.Section("Ingestion")
	logger.Info("Ingesting document %s (%s)", doc.ID, doc.Filename)

	// 1. Mark processing and persist.
	doc.Status = domain.StatusProcessing
	if err := o.docStore.Save(ctx, doc); err != nil {
		return doc, o.fail(ctx, doc, "persist status", err)
	}

	// 2. Chunk.
	chunks := o.chunks.Split(doc.Content, doc.ID)
	logger.Debug("Split into %d chunks", len(chunks))

	// 3. Embed, preserving per-chunk correspondence.
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}

		embeddings, err := o.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return doc, o.fail(ctx, doc, "embed chunks", err)
		}
		if len(embeddings) != len(chunks) {
			err := fmt.Errorf("embedding count %d does not match chunk count %d", len(embeddings), len(chunks))
			return doc, o.fail(ctx, doc, "embed chunks", err)
		}

		dims := o.embedding.Dimensions()
		for i := range chunks {
			if len(embeddings[i]) != dims {
				err := fmt.Errorf("embedding dimension %d does not match declared dimension %d", len(embeddings[i]), dims)
				return doc, o.fail(ctx, doc, "embed chunks", err)
			}
			chunks[i].Embedding = embeddings[i]
		}
	}

	// 4. Replace previously indexed chunks, then add the new batch.
	if err := o.index.DeleteByDocument(ctx, doc.ID); err != nil {
		return doc, o.fail(ctx, doc, "index chunks", err)
	}
	if len(chunks) > 0 {
		if err := o.index.Add(ctx, chunks); err != nil {
			return doc, o.fail(ctx, doc, "index chunks", err)
		}
	}

	// 5. Mark completed and persist.
	doc.Status = domain.StatusCompleted
	doc.Stats.ChunksCount = len(chunks)
	doc.Stats.Error = ""
	if err := o.docStore.Save(ctx, doc); err != nil {
		return doc, o.fail(ctx, doc, "finalise", err)
	}

	logger.Info("Document %s ingested: %d chunks", doc.ID, len(chunks))
	return doc, nil
}

// fail records the failure on the document and wraps the cause in a
// PipelineError. Any indexed chunks for the document are removed
// first - including a prior generation being replaced - so the index
// never holds chunks for a document whose final status is failed.
func (o *IngestOrchestrator) fail(
	ctx context.Context, doc *domain.Document, step string, cause error,
) error {
	logger.Warn("Ingestion of %s failed at %s: %v", doc.ID, step, cause)

	if err := o.index.DeleteByDocument(ctx, doc.ID); err != nil {
		logger.Warn("Rollback of indexed chunks for %s failed: %v", doc.ID, err)
	}

	doc.Status = domain.StatusFailed
	doc.Stats.Error = cause.Error()
	if err := o.docStore.Save(ctx, doc); err != nil {
		logger.Warn("Recording failure for %s failed: %v", doc.ID, err)
	}

	return &domain.PipelineError{Step: step, DocumentID: doc.ID, Err: cause}
}

// Get retrieves a document by id.
func (o *IngestOrchestrator) Get(ctx context.Context, id string) (*domain.Document, error) {
	return o.docStore.Get(ctx, id)
}

// List returns documents with pagination.
func (o *IngestOrchestrator) List(ctx context.Context, skip, limit int) ([]domain.Document, error) {
	return o.docStore.List(ctx, skip, limit)
}

// Remove deletes a document and issues the explicit index delete for
// its chunks. The index delete is idempotent.
func (o *IngestOrchestrator) Remove(ctx context.Context, id string) error {
	if _, err := o.docStore.Get(ctx, id); err != nil {
		return err
	}

	if err := o.index.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", id, err)
	}

	if err := o.docStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	logger.Info("Deleted document %s", id)
	return nil
}
