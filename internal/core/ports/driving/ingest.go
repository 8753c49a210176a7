package driving

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// IngestService drives the per-document ingestion pipeline.
type IngestService interface {
	// Ingest runs the pipeline for a prepared document: chunk, embed,
	// index, update status. On failure the document is marked failed
	// and a *domain.PipelineError is returned. Chunks for a document
	// exist in the vector index if and only if its final status is
	// completed.
	Ingest(ctx context.Context, doc *domain.Document) (*domain.Document, error)

	// Upload extracts text from the file at path and ingests it as a
	// new document.
	Upload(ctx context.Context, path string, docType domain.DocumentType, filename string) (*domain.Document, error)

	// Get retrieves a document by id.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns documents with pagination.
	List(ctx context.Context, skip, limit int) ([]domain.Document, error)

	// Remove deletes a document and its indexed chunks.
	Remove(ctx context.Context, id string) error
}
