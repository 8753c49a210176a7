package driven

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// VectorIndex stores chunks with their embeddings and provides
// similarity search over them. The index owns the chunks; documents
// merely reference them by id.
type VectorIndex interface {
	// Add inserts a batch of chunks. Every chunk must carry an
	// embedding of the configured dimension; if any is missing or
	// mis-sized the whole batch fails with domain.ErrMissingEmbedding
	// rather than inserting a partial batch silently.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Search returns at most opts.TopK results ordered by
	// non-increasing similarity score (1 - cosine distance). Fewer
	// matches than TopK returns all of them. Ties break in a stable
	// order within one index instance.
	Search(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Chunks returns all chunks, including embeddings, for the given
	// document id, or the whole corpus when documentID is empty.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Embeddings returns the full embedding matrix for bulk
	// analytics, in the same relative order as Chunks("").
	Embeddings(ctx context.Context) ([][]float32, error)

	// DeleteByDocument removes all chunks for a document. Idempotent:
	// deleting when no chunks exist is not an error.
	DeleteByDocument(ctx context.Context, documentID string) error

	// SetClusterIDs writes cluster assignments back onto persisted
	// chunks so later reads observe them. Unknown chunk ids are
	// ignored.
	SetClusterIDs(ctx context.Context, assignments map[string]int) error
}
