package driving

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// StatusService exposes read-only aggregations over the document store
// and the vector index.
type StatusService interface {
	// Status aggregates document counts by status and the average
	// number of chunks per document.
	Status(ctx context.Context) (*domain.CorpusStatus, error)

	// Projection recomputes a 2-D projection of all current
	// embeddings. Nothing is cached between calls. An empty corpus
	// fails with domain.ErrInvalidInput.
	Projection(ctx context.Context) ([]domain.ProjectionPoint, error)
}
