package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Chunks are kept in insertion order, which also serves as the stable
// tiebreak for equal search scores.
type VectorIndex struct {
	mu     sync.RWMutex
	dims   int
	chunks []domain.Chunk
}

// NewVectorIndex creates a new in-memory vector index. Dims fixes the
// accepted embedding dimension; 0 adopts the dimension of the first
// inserted chunk.
func NewVectorIndex(dims int) *VectorIndex {
	return &VectorIndex{dims: dims}
}

// Add inserts a batch of chunks. The batch is all-or-nothing: a chunk
// without an embedding of the accepted dimension rejects the whole
// batch.
func (x *VectorIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dims := x.dims
	if dims == 0 {
		dims = len(chunks[0].Embedding)
	}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s", domain.ErrMissingEmbedding, c.ID)
		}
		if len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has dimension %d, want %d",
				domain.ErrMissingEmbedding, c.ID, len(c.Embedding), dims)
		}
	}

	x.dims = dims
	x.chunks = append(x.chunks, chunks...)
	return nil
}

// Search returns at most opts.TopK results ordered by non-increasing
// cosine similarity. Equal scores keep insertion order.
func (x *VectorIndex) Search(
	_ context.Context, embedding []float32, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]domain.SearchResult, 0, len(x.chunks))
	for _, c := range x.chunks {
		if opts.DocumentID != "" && c.DocumentID != opts.DocumentID {
			continue
		}
		results = append(results, domain.SearchResult{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Score:      CosineSimilarity(embedding, c.Embedding),
			Index:      c.Index,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.TopK > 0 && opts.TopK < len(results) {
		results = results[:opts.TopK]
	}
	return results, nil
}

// Chunks returns the chunks for a document, or all chunks when
// documentID is empty, in insertion order.
func (x *VectorIndex) Chunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	result := make([]domain.Chunk, 0, len(x.chunks))
	for _, c := range x.chunks {
		if documentID != "" && c.DocumentID != documentID {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

// Embeddings returns all embeddings in the same order as Chunks("").
func (x *VectorIndex) Embeddings(_ context.Context) ([][]float32, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	result := make([][]float32, len(x.chunks))
	for i, c := range x.chunks {
		result[i] = c.Embedding
	}
	return result, nil
}

// DeleteByDocument removes all chunks for a document. Idempotent.
func (x *VectorIndex) DeleteByDocument(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.chunks[:0]
	for _, c := range x.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	x.chunks = kept
	return nil
}

// SetClusterIDs writes cluster assignments onto stored chunks.
// Unknown chunk ids are ignored.
func (x *VectorIndex) SetClusterIDs(_ context.Context, assignments map[string]int) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for i := range x.chunks {
		if id, ok := assignments[x.chunks[i].ID]; ok {
			x.chunks[i].ClusterID = id
		}
	}
	return nil
}

// CosineSimilarity computes 1 - cosine distance between two vectors.
// A zero vector on either side yields 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
