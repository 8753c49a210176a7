package driven

import "context"

// Fixed logical names under which fitted models are persisted.
const (
	ModelClustering = "kmeans_clustering"
	ModelReduction  = "pca_reduction"
	ModelAnomaly    = "isolation_forest_anomaly"
	ModelQuality    = "quality_classifier"
)

// ModelStore persists fitted model artifacts across process restarts.
// The storage encoding is opaque to the core.
type ModelStore interface {
	// Save persists an artifact under a logical name, replacing any
	// previous generation.
	Save(ctx context.Context, name string, artifact any) error

	// Load decodes the artifact stored under name into out. Returns
	// domain.ErrNotFound when no artifact exists.
	Load(ctx context.Context, name string, out any) error

	// Exists reports whether an artifact is stored under name.
	Exists(ctx context.Context, name string) (bool, error)
}
