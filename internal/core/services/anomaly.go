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

// Ensure AnomalyService implements the interface.
var _ driving.AnomalyService = (*AnomalyService)(nil)

// previewLength caps the content excerpt attached to results.
const previewLength = 100

// AnomalyService runs corpus-wide anomaly detection.
type AnomalyService struct {
	index    driven.VectorIndex
	detector driven.AnomalyDetector
	models   driven.ModelStore

	mu sync.Mutex
}

// NewAnomalyService creates a new anomaly detection service.
func NewAnomalyService(
	index driven.VectorIndex, detector driven.AnomalyDetector, models driven.ModelStore,
) *AnomalyService {
	return &AnomalyService{
		index:    index,
		detector: detector,
		models:   models,
	}
}

// Detect fits the anomaly model on all corpus embeddings and returns
// a flag and score per chunk. Contamination is the expected anomalous
// fraction and must lie in (0, 0.5].
func (s *AnomalyService) Detect(ctx context.Context, contamination float64) ([]domain.AnomalyResult, error) {
	if contamination <= 0 || contamination > 0.5 {
		return nil, fmt.Errorf("%w: contamination must be in (0, 0.5], got %g", domain.ErrInvalidInput, contamination)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Anomaly Detection")

	chunks, err := s.index.Chunks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks available for anomaly detection", domain.ErrInvalidInput)
	}

	embeddings := make([][]float32, len(chunks))
	for i, c := range chunks {
		if !c.Embedded() {
			return nil, fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		embeddings[i] = c.Embedding
	}

	flags, scores, err := s.detector.FitPredict(ctx, embeddings, contamination)
	if err != nil {
		return nil, fmt.Errorf("fit anomaly model: %w", err)
	}
	if len(flags) != len(chunks) || len(scores) != len(chunks) {
		return nil, fmt.Errorf("detector returned %d flags and %d scores for %d chunks", len(flags), len(scores), len(chunks))
	}

	results := make([]domain.AnomalyResult, len(chunks))
	flagged := 0
	for i, c := range chunks {
		if flags[i] {
			flagged++
		}
		results[i] = domain.AnomalyResult{
			ChunkID:   c.ID,
			IsAnomaly: flags[i],
			Score:     scores[i],
			Preview:   preview(c.Content),
		}
	}

	if err := s.detector.Save(ctx, s.models); err != nil {
		return nil, fmt.Errorf("persist anomaly model: %w", err)
	}

	logger.Info("Anomaly detection complete: %d of %d chunks flagged", flagged, len(chunks))
	return results, nil
}

// preview returns the first previewLength runes of the content.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength])
}
