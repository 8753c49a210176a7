package driven

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// Clusterer is an opaque clustering strategy. The core hands it the
// corpus embeddings and texts and translates its output into domain
// results; it never looks at the algorithm.
type Clusterer interface {
	// FitPredict clusters the embeddings into k groups. It returns
	// one label per input row plus summaries of each non-empty
	// cluster.
	FitPredict(ctx context.Context, embeddings [][]float32, texts []string, k int) ([]int, []domain.ClusterInfo, error)

	// Reduce projects the embeddings down to the given number of
	// dimensions for visualisation.
	Reduce(ctx context.Context, embeddings [][]float32, components int) ([][]float64, error)

	// Save persists the fitted state to the model store.
	Save(ctx context.Context, store ModelStore) error

	// Load restores previously persisted state. Returns false when no
	// artifact exists.
	Load(ctx context.Context, store ModelStore) (bool, error)
}

// AnomalyDetector is an opaque anomaly detection strategy.
type AnomalyDetector interface {
	// FitPredict fits on the embeddings and returns a per-row anomaly
	// flag and a continuous score. Contamination controls the expected
	// flagged fraction: for a fixed dataset, a smaller contamination
	// never flags more rows than a larger one.
	FitPredict(ctx context.Context, embeddings [][]float32, contamination float64) ([]bool, []float64, error)

	Save(ctx context.Context, store ModelStore) error
	Load(ctx context.Context, store ModelStore) (bool, error)
}

// QualityClassifier is an opaque supervised quality model with a
// train/persist/load/predict lifecycle. Per model name the state
// machine is UNTRAINED -> TRAINED (in memory) -> PERSISTED; a fresh
// process starts UNTRAINED and must Load before predicting.
type QualityClassifier interface {
	// Train fits the classifier on labelled embeddings, performing an
	// internal train/validation split, and reports validation metrics.
	Train(ctx context.Context, embeddings [][]float32, labels []string) (domain.TrainingMetrics, error)

	// Predict returns a quality label and the top class probability
	// for each embedding. Fails with domain.ErrModelNotTrained when
	// the classifier has not been trained or loaded.
	Predict(ctx context.Context, embeddings [][]float32) ([]domain.QualityLabel, []float64, error)

	// Trained reports whether a fitted model is held in memory.
	Trained() bool

	Save(ctx context.Context, store ModelStore) error
	Load(ctx context.Context, store ModelStore) (bool, error)
}
