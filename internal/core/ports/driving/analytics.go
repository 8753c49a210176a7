package driving

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// ClusteringService groups the corpus embeddings into k clusters.
type ClusteringService interface {
	// Cluster fits the clustering model, persists it, writes cluster
	// assignments back onto the indexed chunks and returns cluster
	// summaries. An empty corpus fails with domain.ErrInvalidInput.
	Cluster(ctx context.Context, k int) ([]domain.ClusterInfo, error)
}

// AnomalyService flags anomalous chunks across the corpus.
type AnomalyService interface {
	// Detect fits the anomaly model with the given contamination
	// (expected anomalous fraction, in (0, 0.5]), persists it and
	// returns per-chunk results.
	Detect(ctx context.Context, contamination float64) ([]domain.AnomalyResult, error)
}

// QualityService classifies chunk quality with a supervised model.
type QualityService interface {
	// Train fits the classifier on labelled chunks, persists the
	// artifact and returns validation metrics. Requires at least two
	// samples; every referenced chunk must exist and carry an
	// embedding.
	Train(ctx context.Context, samples []domain.QualitySample) (domain.TrainingMetrics, error)

	// Predict assesses the given chunks, or the whole corpus when
	// chunkIDs is empty. When no model is in memory it lazily loads
	// the persisted artifact; if none exists it fails with
	// domain.ErrModelNotTrained.
	Predict(ctx context.Context, chunkIDs []string) ([]domain.QualityAssessment, error)
}
