package services

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// It derives a deterministic vector from the text length so distinct
// texts get distinct embeddings.
type mockEmbeddingService struct {
	dims     int
	embedErr error

	batchCalls int
}

func (m *mockEmbeddingService) dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 4
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	v := make([]float32, m.dimensions())
	v[0] = float32(len(text))
	for i := 1; i < len(v); i++ {
		v[i] = 1
	}
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vector(text)
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return m.dimensions()
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	content    string
	extractErr error
}

func (m *mockExtractor) Extract(_ context.Context, _ string, _ domain.DocumentType) (string, error) {
	if m.extractErr != nil {
		return "", m.extractErr
	}
	return m.content, nil
}

// mockClusterer implements driven.Clusterer for testing.
type mockClusterer struct {
	labels    []int
	info      []domain.ClusterInfo
	coords    [][]float64
	fitErr    error
	reduceErr error
	saveErr   error

	saved  bool
	loadOK bool
}

func (m *mockClusterer) FitPredict(
	_ context.Context, embeddings [][]float32, _ []string, _ int,
) ([]int, []domain.ClusterInfo, error) {
	if m.fitErr != nil {
		return nil, nil, m.fitErr
	}
	labels := m.labels
	if labels == nil {
		labels = make([]int, len(embeddings))
	}
	return labels, m.info, nil
}

func (m *mockClusterer) Reduce(_ context.Context, embeddings [][]float32, components int) ([][]float64, error) {
	if m.reduceErr != nil {
		return nil, m.reduceErr
	}
	if m.coords != nil {
		return m.coords, nil
	}
	coords := make([][]float64, len(embeddings))
	for i := range coords {
		coords[i] = make([]float64, components)
		coords[i][0] = float64(i)
	}
	return coords, nil
}

func (m *mockClusterer) Save(_ context.Context, _ driven.ModelStore) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = true
	return nil
}

func (m *mockClusterer) Load(_ context.Context, _ driven.ModelStore) (bool, error) {
	return m.loadOK, nil
}

// mockAnomalyDetector implements driven.AnomalyDetector for testing.
// It flags the first floor(contamination*n) rows.
type mockAnomalyDetector struct {
	fitErr error
	saved  bool
}

func (m *mockAnomalyDetector) FitPredict(
	_ context.Context, embeddings [][]float32, contamination float64,
) ([]bool, []float64, error) {
	if m.fitErr != nil {
		return nil, nil, m.fitErr
	}
	n := len(embeddings)
	flagged := int(contamination * float64(n))
	flags := make([]bool, n)
	scores := make([]float64, n)
	for i := range flags {
		flags[i] = i < flagged
		scores[i] = float64(i)
	}
	return flags, scores, nil
}

func (m *mockAnomalyDetector) Save(_ context.Context, _ driven.ModelStore) error {
	m.saved = true
	return nil
}

func (m *mockAnomalyDetector) Load(_ context.Context, _ driven.ModelStore) (bool, error) {
	return false, nil
}

// mockQualityClassifier implements driven.QualityClassifier for
// testing. Predictions alternate on the first embedding component.
type mockQualityClassifier struct {
	metrics  domain.TrainingMetrics
	trainErr error
	loadOK   bool

	trained bool
	saved   bool
	loads   int
}

func (m *mockQualityClassifier) Train(
	_ context.Context, embeddings [][]float32, _ []string,
) (domain.TrainingMetrics, error) {
	if m.trainErr != nil {
		return domain.TrainingMetrics{}, m.trainErr
	}
	m.trained = true
	metrics := m.metrics
	metrics.Samples = len(embeddings)
	return metrics, nil
}

func (m *mockQualityClassifier) Predict(
	_ context.Context, embeddings [][]float32,
) ([]domain.QualityLabel, []float64, error) {
	if !m.trained {
		return nil, nil, domain.ErrModelNotTrained
	}
	labels := make([]domain.QualityLabel, len(embeddings))
	confidences := make([]float64, len(embeddings))
	for i := range embeddings {
		labels[i] = domain.QualityHigh
		confidences[i] = 0.9
	}
	return labels, confidences, nil
}

func (m *mockQualityClassifier) Trained() bool {
	return m.trained
}

func (m *mockQualityClassifier) Save(_ context.Context, _ driven.ModelStore) error {
	m.saved = true
	return nil
}

func (m *mockQualityClassifier) Load(_ context.Context, _ driven.ModelStore) (bool, error) {
	m.loads++
	if m.loadOK {
		m.trained = true
	}
	return m.loadOK, nil
}
