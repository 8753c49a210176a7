package services

import (
	"context"
	"fmt"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
	"github.com/corpora-dev/corpora/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// listPageSize is the page size used when walking the document store.
const listPageSize = 200

// StatusService aggregates read-only views over the corpus.
type StatusService struct {
	docStore  driven.DocumentStore
	index     driven.VectorIndex
	clusterer driven.Clusterer
}

// NewStatusService creates a new status service.
func NewStatusService(
	docStore driven.DocumentStore, index driven.VectorIndex, clusterer driven.Clusterer,
) *StatusService {
	return &StatusService{
		docStore:  docStore,
		index:     index,
		clusterer: clusterer,
	}
}

// Status counts documents per processing status and averages indexed
// chunks over all documents.
func (s *StatusService) Status(ctx context.Context) (*domain.CorpusStatus, error) {
	status := &domain.CorpusStatus{
		ByStatus: make(map[domain.ProcessingStatus]int),
	}

	for skip := 0; ; skip += listPageSize {
		page, err := s.docStore.List(ctx, skip, listPageSize)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, doc := range page {
			status.TotalDocuments++
			status.ByStatus[doc.Status]++
		}
		if len(page) < listPageSize {
			break
		}
	}

	chunks, err := s.index.Chunks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	status.TotalChunks = len(chunks)

	if status.TotalDocuments > 0 {
		status.AvgChunksPerDocument = float64(status.TotalChunks) / float64(status.TotalDocuments)
	}

	return status, nil
}

// Projection recomputes a 2-D projection of all current embeddings.
// Nothing is cached between calls; the points always reflect the
// index at the time of the request.
func (s *StatusService) Projection(ctx context.Context) ([]domain.ProjectionPoint, error) {
	chunks, err := s.index.Chunks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks available for visualization", domain.ErrInvalidInput)
	}

	embeddings := make([][]float32, len(chunks))
	for i, c := range chunks {
		if !c.Embedded() {
			return nil, fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		embeddings[i] = c.Embedding
	}

	coords, err := s.clusterer.Reduce(ctx, embeddings, 2)
	if err != nil {
		return nil, fmt.Errorf("reduce embeddings: %w", err)
	}
	if len(coords) != len(chunks) {
		return nil, fmt.Errorf("reducer returned %d points for %d chunks", len(coords), len(chunks))
	}

	points := make([]domain.ProjectionPoint, len(chunks))
	for i, c := range chunks {
		points[i] = domain.ProjectionPoint{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			X:          coords[i][0],
			Y:          coords[i][1],
			ClusterID:  c.ClusterID,
			Preview:    preview(c.Content),
		}
	}

	return points, nil
}
