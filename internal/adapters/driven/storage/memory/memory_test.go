package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

func TestDocumentStoreRoundTrip(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:        "doc-1",
		Filename:  "notes.txt",
		Type:      domain.DocumentTypeTXT,
		Content:   "hello",
		Status:    domain.StatusCompleted,
		CreatedAt: time.Now().UTC(),
		Stats:     domain.DocumentStats{ChunksCount: 3},
	}
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStoreListPagination(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, &domain.Document{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := store.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)

	page, err = store.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestDocumentStoreDeleteUnknown(t *testing.T) {
	store := NewDocumentStore()
	err := store.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func chunk(id, docID string, index int, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		DocumentID: docID,
		Content:    "content of " + id,
		Index:      index,
		Embedding:  embedding,
		ClusterID:  domain.ClusterUnassigned,
	}
}

func TestVectorIndexAddRejectsPartialBatch(t *testing.T) {
	index := NewVectorIndex(2)
	ctx := context.Background()

	err := index.Add(ctx, []domain.Chunk{
		chunk("c1", "d1", 0, []float32{1, 0}),
		chunk("c2", "d1", 1, nil),
	})
	require.ErrorIs(t, err, domain.ErrMissingEmbedding)

	chunks, err := index.Chunks(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, chunks, "failed batch must not insert anything")

	err = index.Add(ctx, []domain.Chunk{chunk("c3", "d1", 0, []float32{1, 0, 0})})
	assert.ErrorIs(t, err, domain.ErrMissingEmbedding)
}

func TestVectorIndexSearchOrdering(t *testing.T) {
	index := NewVectorIndex(2)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, []domain.Chunk{
		chunk("far", "d1", 0, []float32{0, 1}),
		chunk("near", "d1", 1, []float32{1, 0}),
		chunk("mid", "d2", 0, []float32{1, 1}),
	}))

	results, err := index.Search(ctx, []float32{1, 0}, domain.SearchOptions{TopK: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "near", results[0].ChunkID)
	assert.Equal(t, "mid", results[1].ChunkID)
	assert.Equal(t, "far", results[2].ChunkID)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}

	scoped, err := index.Search(ctx, []float32{1, 0}, domain.SearchOptions{TopK: 10, DocumentID: "d2"})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "mid", scoped[0].ChunkID)
}

func TestVectorIndexDeleteByDocument(t *testing.T) {
	index := NewVectorIndex(1)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, []domain.Chunk{
		chunk("c1", "d1", 0, []float32{1}),
		chunk("c2", "d2", 0, []float32{2}),
	}))

	require.NoError(t, index.DeleteByDocument(ctx, "d1"))
	require.NoError(t, index.DeleteByDocument(ctx, "d1"), "idempotent")

	chunks, err := index.Chunks(ctx, "")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c2", chunks[0].ID)
}

func TestVectorIndexSetClusterIDs(t *testing.T) {
	index := NewVectorIndex(1)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, []domain.Chunk{
		chunk("c1", "d1", 0, []float32{1}),
		chunk("c2", "d1", 1, []float32{2}),
	}))

	require.NoError(t, index.SetClusterIDs(ctx, map[string]int{"c1": 4, "ghost": 9}))

	chunks, err := index.Chunks(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 4, chunks[0].ClusterID)
	assert.Equal(t, domain.ClusterUnassigned, chunks[1].ClusterID)
}

func TestVectorIndexEmbeddingsOrder(t *testing.T) {
	index := NewVectorIndex(1)
	ctx := context.Background()

	require.NoError(t, index.Add(ctx, []domain.Chunk{
		chunk("c1", "d1", 0, []float32{1}),
		chunk("c2", "d2", 0, []float32{2}),
	}))

	chunks, err := index.Chunks(ctx, "")
	require.NoError(t, err)
	embeddings, err := index.Embeddings(ctx)
	require.NoError(t, err)
	require.Len(t, embeddings, len(chunks))
	for i := range chunks {
		assert.Equal(t, chunks[i].Embedding, embeddings[i])
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
}

type artifact struct {
	Centers [][]float64
	K       int
}

func TestModelStoreRoundTrip(t *testing.T) {
	store := NewModelStore()
	ctx := context.Background()

	in := artifact{Centers: [][]float64{{1, 2}, {3, 4}}, K: 2}
	require.NoError(t, store.Save(ctx, "kmeans_clustering", in))

	ok, err := store.Exists(ctx, "kmeans_clustering")
	require.NoError(t, err)
	assert.True(t, ok)

	var out artifact
	require.NoError(t, store.Load(ctx, "kmeans_clustering", &out))
	assert.Equal(t, in, out)

	err = store.Load(ctx, "missing", &out)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
