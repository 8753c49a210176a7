// Package kmeans provides clustering and dimensionality reduction over
// chunk embeddings. It implements k-means with k-means++ seeding and
// PCA projection on top of gonum.
package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// Ensure Clusterer implements the interface.
var _ driven.Clusterer = (*Clusterer)(nil)

const (
	maxIterations   = 100
	convergenceTol  = 1e-6
	defaultSeed     = 42
	topTermCount    = 5
	representatives = 3
)

// artifact is the gob-encoded persisted state.
type artifact struct {
	K         int
	Centroids [][]float64
}

// reductionArtifact persists the last fitted PCA projection.
type reductionArtifact struct {
	Mean       []float64
	Components [][]float64
}

// Clusterer fits k-means over embeddings and projects them with PCA.
// All randomness is seeded so repeated fits over the same corpus give
// the same assignment.
type Clusterer struct {
	seed int64

	mu        sync.Mutex
	fitted    *artifact
	reduction *reductionArtifact
}

// New creates a new clusterer with the default seed.
func New() *Clusterer {
	return &Clusterer{seed: defaultSeed}
}

// NewWithSeed creates a new clusterer with an explicit seed.
func NewWithSeed(seed int64) *Clusterer {
	return &Clusterer{seed: seed}
}

// FitPredict clusters the embeddings into k groups and returns one
// label per row plus a summary of each non-empty cluster.
func (c *Clusterer) FitPredict(
	ctx context.Context, embeddings [][]float32, texts []string, k int,
) ([]int, []domain.ClusterInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	n := len(embeddings)
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: no embeddings", domain.ErrInvalidInput)
	}
	if len(texts) != n {
		return nil, nil, fmt.Errorf("%w: %d texts for %d embeddings", domain.ErrInvalidInput, len(texts), n)
	}
	if k > n {
		k = n
	}

	data := toFloat64(embeddings)
	rng := rand.New(rand.NewSource(c.seed))

	centroids := seedCentroids(data, k, rng)
	labels := make([]int, n)

	for iter := 0; iter < maxIterations; iter++ {
		for i, row := range data {
			labels[i] = nearest(row, centroids)
		}

		moved := 0.0
		next := recomputeCentroids(data, labels, centroids, rng)
		for j := range centroids {
			moved += floats.Distance(centroids[j], next[j], 2)
		}
		centroids = next

		if moved < convergenceTol {
			break
		}
	}
	for i, row := range data {
		labels[i] = nearest(row, centroids)
	}

	info := summarize(labels, centroids, texts, k)

	c.mu.Lock()
	c.fitted = &artifact{K: k, Centroids: centroids}
	c.mu.Unlock()

	return labels, info, nil
}

// Reduce projects the embeddings down to the given number of
// dimensions using PCA. Degenerate inputs (fewer rows than two, or
// fewer source dimensions than requested) are zero-padded instead of
// failing, so tiny corpora still visualize.
func (c *Clusterer) Reduce(ctx context.Context, embeddings [][]float32, components int) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if components <= 0 {
		return nil, fmt.Errorf("%w: components must be positive, got %d", domain.ErrInvalidInput, components)
	}
	n := len(embeddings)
	if n == 0 {
		return [][]float64{}, nil
	}
	dims := len(embeddings[0])

	if n < 2 || dims < components {
		return padProjection(embeddings, components), nil
	}

	data := toFloat64(embeddings)
	flat := make([]float64, 0, n*dims)
	for _, row := range data {
		flat = append(flat, row...)
	}
	x := mat.NewDense(n, dims, flat)

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, fmt.Errorf("principal components failed to converge")
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)

	mean := make([]float64, dims)
	for j := 0; j < dims; j++ {
		col := mat.Col(nil, j, x)
		mean[j] = stat.Mean(col, nil)
	}

	// Project the centered data onto the leading components.
	result := make([][]float64, n)
	basis := make([][]float64, components)
	for j := 0; j < components; j++ {
		basis[j] = mat.Col(nil, j, &vectors)
	}
	centered := make([]float64, dims)
	for i, row := range data {
		floats.SubTo(centered, row, mean)
		point := make([]float64, components)
		for j := 0; j < components; j++ {
			point[j] = floats.Dot(centered, basis[j])
		}
		result[i] = point
	}

	c.mu.Lock()
	c.reduction = &reductionArtifact{Mean: mean, Components: basis}
	c.mu.Unlock()

	return result, nil
}

// Save persists the fitted state to the model store.
func (c *Clusterer) Save(ctx context.Context, store driven.ModelStore) error {
	c.mu.Lock()
	fitted := c.fitted
	reduction := c.reduction
	c.mu.Unlock()

	if fitted == nil {
		return domain.ErrModelNotTrained
	}
	if err := store.Save(ctx, driven.ModelClustering, fitted); err != nil {
		return fmt.Errorf("save clustering model: %w", err)
	}
	if reduction != nil {
		if err := store.Save(ctx, driven.ModelReduction, reduction); err != nil {
			return fmt.Errorf("save reduction model: %w", err)
		}
	}
	return nil
}

// Load restores previously persisted state. Returns false when no
// artifact exists.
func (c *Clusterer) Load(ctx context.Context, store driven.ModelStore) (bool, error) {
	var fitted artifact
	if err := store.Load(ctx, driven.ModelClustering, &fitted); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("load clustering model: %w", err)
	}

	var reduction reductionArtifact
	hasReduction := true
	if err := store.Load(ctx, driven.ModelReduction, &reduction); err != nil {
		if !isNotFound(err) {
			return false, fmt.Errorf("load reduction model: %w", err)
		}
		hasReduction = false
	}

	c.mu.Lock()
	c.fitted = &fitted
	if hasReduction {
		c.reduction = &reduction
	}
	c.mu.Unlock()
	return true, nil
}

// seedCentroids picks initial centroids with k-means++ weighting.
func seedCentroids(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := data[rng.Intn(len(data))]
	centroids = append(centroids, append([]float64(nil), first...))

	dist := make([]float64, len(data))
	for len(centroids) < k {
		total := 0.0
		for i, row := range data {
			d := floats.Distance(row, centroids[nearest(row, centroids)], 2)
			dist[i] = d * d
			total += dist[i]
		}

		if total == 0 {
			// All points coincide with a centroid; pick uniformly.
			next := data[rng.Intn(len(data))]
			centroids = append(centroids, append([]float64(nil), next...))
			continue
		}

		target := rng.Float64() * total
		cum := 0.0
		chosen := len(data) - 1
		for i, d := range dist {
			cum += d
			if cum >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), data[chosen]...))
	}
	return centroids
}

// nearest returns the index of the closest centroid.
func nearest(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := floats.Distance(row, centroids[0], 2)
	for j := 1; j < len(centroids); j++ {
		if d := floats.Distance(row, centroids[j], 2); d < bestDist {
			best = j
			bestDist = d
		}
	}
	return best
}

// recomputeCentroids averages members per cluster. An emptied cluster
// is reseeded from a random point so k survives the iteration.
func recomputeCentroids(data [][]float64, labels []int, centroids [][]float64, rng *rand.Rand) [][]float64 {
	k := len(centroids)
	dims := len(data[0])
	next := make([][]float64, k)
	counts := make([]int, k)
	for j := range next {
		next[j] = make([]float64, dims)
	}

	for i, row := range data {
		floats.Add(next[labels[i]], row)
		counts[labels[i]]++
	}

	for j := range next {
		if counts[j] == 0 {
			copy(next[j], data[rng.Intn(len(data))])
			continue
		}
		floats.Scale(1/float64(counts[j]), next[j])
	}
	return next
}

// summarize builds per-cluster info: size, centroid, frequent terms
// and representative member texts.
func summarize(labels []int, centroids [][]float64, texts []string, k int) []domain.ClusterInfo {
	members := make([][]string, k)
	sizes := make([]int, k)
	for i, label := range labels {
		sizes[label]++
		if len(members[label]) < representatives {
			members[label] = append(members[label], texts[i])
		}
	}

	termCounts := make([]map[string]int, k)
	for j := range termCounts {
		termCounts[j] = make(map[string]int)
	}
	for i, label := range labels {
		for _, term := range tokenize(texts[i]) {
			termCounts[label][term]++
		}
	}

	info := make([]domain.ClusterInfo, 0, k)
	for j := 0; j < k; j++ {
		if sizes[j] == 0 {
			continue
		}
		entry := domain.ClusterInfo{
			ID:             j,
			Size:           sizes[j],
			Centroid:       toFloat32(centroids[j]),
			Representative: members[j],
		}
		if sizes[j] > 1 {
			entry.TopTerms = topTerms(termCounts[j], topTermCount)
		}
		info = append(info, entry)
	}
	return info
}

// tokenize lowercases and splits text, keeping terms of three or more
// letters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	terms := fields[:0]
	for _, f := range fields {
		if len(f) >= 3 {
			terms = append(terms, f)
		}
	}
	return terms
}

// topTerms returns the n most frequent terms, ties broken
// alphabetically for determinism.
func topTerms(counts map[string]int, n int) []string {
	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// padProjection copies up to components dimensions straight from the
// embeddings, filling the rest with zeros.
func padProjection(embeddings [][]float32, components int) [][]float64 {
	result := make([][]float64, len(embeddings))
	for i, row := range embeddings {
		point := make([]float64, components)
		for j := 0; j < components && j < len(row); j++ {
			point[j] = float64(row[j])
		}
		result[i] = point
	}
	return result
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

func toFloat32(row []float64) []float32 {
	out := make([]float32, len(row))
	for i, v := range row {
		out[i] = float32(v)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
