// Package centroid provides a supervised quality classifier over chunk
// embeddings. It fits one centroid per label class and predicts by
// nearest centroid, with a softmax over negated distances as the
// confidence.
package centroid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.QualityClassifier = (*Classifier)(nil)

const defaultSeed = 42

// classCount covers the fixed label encoding.
const classCount = 4

// artifact is the gob-encoded persisted state.
type artifact struct {
	// Centroids holds one centroid per label code; a nil entry means
	// the class was absent from training.
	Centroids [][]float64
}

// Classifier is a nearest-centroid quality classifier with a
// train/persist/load/predict lifecycle.
type Classifier struct {
	seed int64

	mu     sync.RWMutex
	fitted *artifact
}

// New creates a new classifier with the default seed.
func New() *Classifier {
	return &Classifier{seed: defaultSeed}
}

// NewWithSeed creates a new classifier with an explicit seed.
func NewWithSeed(seed int64) *Classifier {
	return &Classifier{seed: seed}
}

// Train fits the classifier on labelled embeddings. A held-out
// validation split (a fifth of the samples, at least one) provides the
// reported metrics; the final centroids are then refit on all samples.
func (c *Classifier) Train(
	ctx context.Context, embeddings [][]float32, labels []string,
) (domain.TrainingMetrics, error) {
	var zero domain.TrainingMetrics
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	n := len(embeddings)
	if n < 2 {
		return zero, fmt.Errorf("%w: need at least 2 samples, got %d", domain.ErrInvalidInput, n)
	}
	if len(labels) != n {
		return zero, fmt.Errorf("%w: %d labels for %d embeddings", domain.ErrInvalidInput, len(labels), n)
	}

	data := toFloat64(embeddings)
	codes := make([]int, n)
	for i, label := range labels {
		codes[i] = domain.EncodeQualityLabel(label)
	}

	// Shuffled hold-out split for validation metrics.
	order := rand.New(rand.NewSource(c.seed)).Perm(n)
	valSize := n / 5
	if valSize < 1 {
		valSize = 1
	}
	valIdx := order[:valSize]
	trainIdx := order[valSize:]

	trainCentroids := fitCentroids(data, codes, trainIdx)
	metrics := validate(data, codes, valIdx, trainCentroids)
	metrics.Samples = n

	c.mu.Lock()
	c.fitted = &artifact{Centroids: fitCentroids(data, codes, order)}
	c.mu.Unlock()

	return metrics, nil
}

// Predict returns a quality label and confidence per embedding.
func (c *Classifier) Predict(
	ctx context.Context, embeddings [][]float32,
) ([]domain.QualityLabel, []float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	c.mu.RLock()
	fitted := c.fitted
	c.mu.RUnlock()
	if fitted == nil {
		return nil, nil, domain.ErrModelNotTrained
	}

	labels := make([]domain.QualityLabel, len(embeddings))
	confidences := make([]float64, len(embeddings))
	for i, embedding := range embeddings {
		code, confidence := classify(toRow(embedding), fitted.Centroids)
		labels[i] = domain.DecodeQualityLabel(code)
		confidences[i] = confidence
	}
	return labels, confidences, nil
}

// Trained reports whether a fitted model is held in memory.
func (c *Classifier) Trained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fitted != nil
}

// Save persists the fitted state to the model store.
func (c *Classifier) Save(ctx context.Context, store driven.ModelStore) error {
	c.mu.RLock()
	fitted := c.fitted
	c.mu.RUnlock()

	if fitted == nil {
		return domain.ErrModelNotTrained
	}
	if err := store.Save(ctx, driven.ModelQuality, fitted); err != nil {
		return fmt.Errorf("save quality model: %w", err)
	}
	return nil
}

// Load restores previously persisted state. Returns false when no
// artifact exists.
func (c *Classifier) Load(ctx context.Context, store driven.ModelStore) (bool, error) {
	var fitted artifact
	if err := store.Load(ctx, driven.ModelQuality, &fitted); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("load quality model: %w", err)
	}

	c.mu.Lock()
	c.fitted = &fitted
	c.mu.Unlock()
	return true, nil
}

// fitCentroids averages the embeddings of each class over the given
// sample indices.
func fitCentroids(data [][]float64, codes, idx []int) [][]float64 {
	dims := len(data[0])
	centroids := make([][]float64, classCount)
	counts := make([]int, classCount)

	for _, i := range idx {
		code := codes[i]
		if centroids[code] == nil {
			centroids[code] = make([]float64, dims)
		}
		floats.Add(centroids[code], data[i])
		counts[code]++
	}
	for code, centroid := range centroids {
		if centroid != nil {
			floats.Scale(1/float64(counts[code]), centroid)
		}
	}
	return centroids
}

// classify returns the nearest class code and a softmax confidence
// over the negated distances.
func classify(row []float64, centroids [][]float64) (int, float64) {
	best := -1
	var bestDist float64
	var exps []float64
	var bestExp float64

	for code, centroid := range centroids {
		if centroid == nil {
			continue
		}
		d := floats.Distance(row, centroid, 2)
		e := math.Exp(-d)
		exps = append(exps, e)
		if best == -1 || d < bestDist {
			best = code
			bestDist = d
			bestExp = e
		}
	}

	total := 0.0
	for _, e := range exps {
		total += e
	}
	confidence := 1.0
	if total > 0 {
		confidence = bestExp / total
	}
	return best, confidence
}

// validate computes accuracy and support-weighted precision/recall/F1
// on the hold-out indices. Each class contributes in proportion to its
// true-label count in the validation split; a class with undefined
// precision or recall contributes zero. A class missing from the
// training split falls to whatever centroid is nearest.
func validate(data [][]float64, codes, valIdx []int, centroids [][]float64) domain.TrainingMetrics {
	var metrics domain.TrainingMetrics
	if len(valIdx) == 0 {
		return metrics
	}

	var truePos, falsePos, falseNeg [classCount]float64
	correct := 0
	for _, i := range valIdx {
		predicted, _ := classify(data[i], centroids)
		actual := codes[i]
		if predicted == actual {
			correct++
			truePos[actual]++
		} else {
			falseNeg[actual]++
			if predicted >= 0 {
				falsePos[predicted]++
			}
		}
	}
	total := float64(len(valIdx))
	metrics.Accuracy = float64(correct) / total

	for code := 0; code < classCount; code++ {
		support := truePos[code] + falseNeg[code]
		if support == 0 {
			continue
		}
		var precision float64
		if truePos[code]+falsePos[code] > 0 {
			precision = truePos[code] / (truePos[code] + falsePos[code])
		}
		recall := truePos[code] / support
		var f1 float64
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		weight := support / total
		metrics.Precision += weight * precision
		metrics.Recall += weight * recall
		metrics.F1 += weight * f1
	}
	return metrics
}

func toFloat64(embeddings [][]float32) [][]float64 {
	data := make([][]float64, len(embeddings))
	for i := range embeddings {
		data[i] = toRow(embeddings[i])
	}
	return data
}

func toRow(embedding []float32) []float64 {
	row := make([]float64, len(embedding))
	for j, v := range embedding {
		row[j] = float64(v)
	}
	return row
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
