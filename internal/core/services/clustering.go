package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
	"github.com/corpora-dev/corpora/internal/core/ports/driving"
	"github.com/corpora-dev/corpora/internal/logger"
)

// Ensure ClusteringService implements the interface.
var _ driving.ClusteringService = (*ClusteringService)(nil)

// ClusteringService runs the clustering use case over the whole
// corpus. Trains are serialised per service instance; last trained
// wins.
type ClusteringService struct {
	index     driven.VectorIndex
	clusterer driven.Clusterer
	models    driven.ModelStore

	mu sync.Mutex
}

// NewClusteringService creates a new clustering service.
func NewClusteringService(
	index driven.VectorIndex, clusterer driven.Clusterer, models driven.ModelStore,
) *ClusteringService {
	return &ClusteringService{
		index:     index,
		clusterer: clusterer,
		models:    models,
	}
}

// Cluster fits the clustering model on all corpus embeddings, writes
// the assignments back onto the indexed chunks, persists the fitted
// model and returns per-cluster summaries.
func (s *ClusteringService) Cluster(ctx context.Context, k int) ([]domain.ClusterInfo, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: cluster count must be positive, got %d", domain.ErrInvalidInput, k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Clustering")

	chunks, err := s.index.Chunks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks available for clustering", domain.ErrInvalidInput)
	}

	embeddings := make([][]float32, len(chunks))
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		if !c.Embedded() {
			return nil, fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		embeddings[i] = c.Embedding
		texts[i] = c.Content
	}

	labels, info, err := s.clusterer.FitPredict(ctx, embeddings, texts, k)
	if err != nil {
		return nil, fmt.Errorf("fit clustering model: %w", err)
	}
	if len(labels) != len(chunks) {
		return nil, fmt.Errorf("clusterer returned %d labels for %d chunks", len(labels), len(chunks))
	}

	assignments := make(map[string]int, len(chunks))
	for i, c := range chunks {
		assignments[c.ID] = labels[i]
	}
	if err := s.index.SetClusterIDs(ctx, assignments); err != nil {
		return nil, fmt.Errorf("persist cluster assignments: %w", err)
	}

	if err := s.clusterer.Save(ctx, s.models); err != nil {
		return nil, fmt.Errorf("persist clustering model: %w", err)
	}

	logger.Info("Clustering complete: %d chunks in %d clusters", len(chunks), k)
	return info, nil
}
