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

// Ensure QualityService implements the interface.
var _ driving.QualityService = (*QualityService)(nil)

// minTrainingSamples is the smallest corpus the classifier accepts.
const minTrainingSamples = 2

// QualityService classifies chunk quality with a supervised model.
//
// Trains are serialised by trainMu. Predict takes only a read lock on
// the model state, so a predict racing a train may observe either
// model generation - an accepted weak-consistency trade-off.
type QualityService struct {
	index      driven.VectorIndex
	classifier driven.QualityClassifier
	models     driven.ModelStore

	trainMu sync.Mutex
	stateMu sync.RWMutex
}

// NewQualityService creates a new quality classification service.
func NewQualityService(
	index driven.VectorIndex, classifier driven.QualityClassifier, models driven.ModelStore,
) *QualityService {
	return &QualityService{
		index:      index,
		classifier: classifier,
		models:     models,
	}
}

// Train fits the classifier on labelled chunks and persists the
// artifact. Each sample references a chunk that must already exist in
// the index and carry an embedding.
func (s *QualityService) Train(ctx context.Context, samples []domain.QualitySample) (domain.TrainingMetrics, error) {
	var zero domain.TrainingMetrics

	if len(samples) < minTrainingSamples {
		return zero, fmt.Errorf("%w: need at least %d training samples, got %d",
			domain.ErrInvalidInput, minTrainingSamples, len(samples))
	}

	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	logger.Section("Quality Training")

	chunks, err := s.index.Chunks(ctx, "")
	if err != nil {
		return zero, fmt.Errorf("fetch chunks: %w", err)
	}
	byID := make(map[string]*domain.Chunk, len(chunks))
	for i := range chunks {
		byID[chunks[i].ID] = &chunks[i]
	}

	embeddings := make([][]float32, len(samples))
	labels := make([]string, len(samples))
	for i, sample := range samples {
		chunk, ok := byID[sample.ChunkID]
		if !ok {
			return zero, fmt.Errorf("%w: chunk %s", domain.ErrNotFound, sample.ChunkID)
		}
		if !chunk.Embedded() {
			return zero, fmt.Errorf("%w: chunk %s has no embedding", domain.ErrNotFound, sample.ChunkID)
		}
		embeddings[i] = chunk.Embedding
		labels[i] = sample.Label
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	metrics, err := s.classifier.Train(ctx, embeddings, labels)
	if err != nil {
		return zero, fmt.Errorf("train classifier: %w", err)
	}

	if err := s.classifier.Save(ctx, s.models); err != nil {
		return zero, fmt.Errorf("persist classifier: %w", err)
	}

	logger.Info("Classifier trained on %d samples: accuracy %.3f, f1 %.3f",
		metrics.Samples, metrics.Accuracy, metrics.F1)
	return metrics, nil
}

// Predict assesses the given chunks, or the whole corpus when
// chunkIDs is empty. When no model is held in memory it lazily loads
// the persisted artifact; with no artifact either it fails with
// domain.ErrModelNotTrained.
func (s *QualityService) Predict(ctx context.Context, chunkIDs []string) ([]domain.QualityAssessment, error) {
	if err := s.ensureModel(ctx); err != nil {
		return nil, err
	}

	logger.Section("Quality Prediction")

	chunks, err := s.index.Chunks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("fetch chunks: %w", err)
	}

	if len(chunkIDs) > 0 {
		wanted := make(map[string]bool, len(chunkIDs))
		for _, id := range chunkIDs {
			wanted[id] = true
		}
		filtered := chunks[:0]
		for _, c := range chunks {
			if wanted[c.ID] {
				filtered = append(filtered, c)
			}
		}
		chunks = filtered
	}

	if len(chunks) == 0 {
		return []domain.QualityAssessment{}, nil
	}

	embeddings := make([][]float32, len(chunks))
	for i, c := range chunks {
		if !c.Embedded() {
			return nil, fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		embeddings[i] = c.Embedding
	}

	s.stateMu.RLock()
	labels, confidences, err := s.classifier.Predict(ctx, embeddings)
	s.stateMu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("predict quality: %w", err)
	}

	results := make([]domain.QualityAssessment, len(chunks))
	for i, c := range chunks {
		results[i] = domain.QualityAssessment{
			ChunkID:       c.ID,
			Label:         labels[i],
			Confidence:    confidences[i],
			ContentLength: len(c.Content),
		}
	}

	logger.Info("Quality assessed for %d chunks", len(results))
	return results, nil
}

// ensureModel lazily restores the persisted artifact when no model is
// held in memory.
func (s *QualityService) ensureModel(ctx context.Context) error {
	s.stateMu.RLock()
	trained := s.classifier.Trained()
	s.stateMu.RUnlock()
	if trained {
		return nil
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.classifier.Trained() {
		return nil
	}

	loaded, err := s.classifier.Load(ctx, s.models)
	if err != nil {
		return fmt.Errorf("load classifier: %w", err)
	}
	if !loaded {
		return domain.ErrModelNotTrained
	}

	logger.Debug("Loaded persisted quality classifier")
	return nil
}
