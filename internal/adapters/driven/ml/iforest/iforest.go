// Package iforest provides anomaly detection over chunk embeddings
// with an isolation forest. Points that isolate in few random splits
// score as anomalous; the contamination parameter sets the flagged
// fraction through a score quantile, so a smaller contamination never
// flags more points than a larger one on the same data.
package iforest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.AnomalyDetector = (*Detector)(nil)

const (
	defaultTrees     = 100
	defaultSubsample = 256
	defaultSeed      = 42
)

// tree is one isolation tree. Leaves carry the number of samples that
// ended there so truncated paths can be extended with the expected
// remaining depth.
type tree struct {
	Feature   int
	Threshold float64
	Left      *tree
	Right     *tree
	Size      int
}

// artifact is the gob-encoded persisted state.
type artifact struct {
	Trees         []*tree
	SubsampleSize int
	Threshold     float64
	Contamination float64
}

// Detector fits an isolation forest. Randomness is seeded so repeated
// fits on the same corpus give the same scores.
type Detector struct {
	seed  int64
	trees int

	mu     sync.Mutex
	fitted *artifact
}

// New creates a new detector with default parameters.
func New() *Detector {
	return &Detector{seed: defaultSeed, trees: defaultTrees}
}

// NewWithSeed creates a new detector with an explicit seed.
func NewWithSeed(seed int64) *Detector {
	return &Detector{seed: seed, trees: defaultTrees}
}

// FitPredict fits the forest on the embeddings and returns a per-row
// anomaly flag and score. The score is the negated isolation score, so
// lower means more anomalous. Rows scoring above the
// (1-contamination) quantile are flagged.
func (d *Detector) FitPredict(
	ctx context.Context, embeddings [][]float32, contamination float64,
) ([]bool, []float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if contamination <= 0 || contamination > 0.5 {
		return nil, nil, fmt.Errorf("%w: contamination must be in (0, 0.5], got %g", domain.ErrInvalidInput, contamination)
	}
	n := len(embeddings)
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: no embeddings", domain.ErrInvalidInput)
	}

	data := toFloat64(embeddings)
	rng := rand.New(rand.NewSource(d.seed))

	subsample := defaultSubsample
	if subsample > n {
		subsample = n
	}
	maxDepth := int(math.Ceil(math.Log2(float64(subsample)))) + 1

	trees := make([]*tree, d.trees)
	for t := range trees {
		sample := make([][]float64, subsample)
		for i := range sample {
			sample[i] = data[rng.Intn(n)]
		}
		trees[t] = buildTree(sample, 0, maxDepth, rng)
	}

	// Isolation score in [0,1]; anomalies approach 1.
	isolation := make([]float64, n)
	norm := avgPathLength(subsample)
	for i, row := range data {
		sum := 0.0
		for _, t := range trees {
			sum += pathLength(t, row, 0)
		}
		isolation[i] = math.Pow(2, -(sum/float64(len(trees)))/norm)
	}

	sorted := append([]float64(nil), isolation...)
	sort.Float64s(sorted)
	threshold := stat.Quantile(1-contamination, stat.Empirical, sorted, nil)

	flags := make([]bool, n)
	scores := make([]float64, n)
	for i, s := range isolation {
		flags[i] = s > threshold
		scores[i] = -s
	}

	d.mu.Lock()
	d.fitted = &artifact{
		Trees:         trees,
		SubsampleSize: subsample,
		Threshold:     threshold,
		Contamination: contamination,
	}
	d.mu.Unlock()

	return flags, scores, nil
}

// Save persists the fitted state to the model store.
func (d *Detector) Save(ctx context.Context, store driven.ModelStore) error {
	d.mu.Lock()
	fitted := d.fitted
	d.mu.Unlock()

	if fitted == nil {
		return domain.ErrModelNotTrained
	}
	if err := store.Save(ctx, driven.ModelAnomaly, fitted); err != nil {
		return fmt.Errorf("save anomaly model: %w", err)
	}
	return nil
}

// Load restores previously persisted state. Returns false when no
// artifact exists.
func (d *Detector) Load(ctx context.Context, store driven.ModelStore) (bool, error) {
	var fitted artifact
	if err := store.Load(ctx, driven.ModelAnomaly, &fitted); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("load anomaly model: %w", err)
	}

	d.mu.Lock()
	d.fitted = &fitted
	d.mu.Unlock()
	return true, nil
}

// buildTree grows one isolation tree by random axis-aligned splits.
func buildTree(sample [][]float64, depth, maxDepth int, rng *rand.Rand) *tree {
	if len(sample) <= 1 || depth >= maxDepth {
		return &tree{Size: len(sample)}
	}

	dims := len(sample[0])
	feature := rng.Intn(dims)

	lo, hi := sample[0][feature], sample[0][feature]
	for _, row := range sample {
		if row[feature] < lo {
			lo = row[feature]
		}
		if row[feature] > hi {
			hi = row[feature]
		}
	}
	if lo == hi {
		return &tree{Size: len(sample)}
	}

	threshold := lo + rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, row := range sample {
		if row[feature] < threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &tree{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(left, depth+1, maxDepth, rng),
		Right:     buildTree(right, depth+1, maxDepth, rng),
		Size:      len(sample),
	}
}

// pathLength walks a point down the tree; leaves with multiple
// samples extend the path by the expected depth of an unbuilt
// subtree.
func pathLength(t *tree, row []float64, depth int) float64 {
	if t.Left == nil && t.Right == nil {
		return float64(depth) + avgPathLength(t.Size)
	}
	if row[t.Feature] < t.Threshold {
		return pathLength(t.Left, row, depth+1)
	}
	return pathLength(t.Right, row, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST
// search over n points.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649 // Euler-Mascheroni
	return 2*h - 2*float64(n-1)/float64(n)
}

func toFloat64(embeddings [][]float32) [][]float64 {
	data := make([][]float64, len(embeddings))
	for i, row := range embeddings {
		data[i] = make([]float64, len(row))
		for j, v := range row {
			data[i][j] = float64(v)
		}
	}
	return data
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
