package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex. Similarity scoring runs
// in process over the stored embeddings; rowid order serves as the
// stable tiebreak for equal scores and as the canonical chunk order.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Add inserts a batch of chunks inside one transaction. Validation
// runs up front so a bad chunk rejects the whole batch before any row
// is written. The first stored row fixes the accepted embedding
// dimension for the lifetime of the index.
func (x *vectorIndex) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dims, err := x.storedDimension(ctx)
	if err != nil {
		return err
	}
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

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, position, embedding, span_start, span_end, cluster_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			content = excluded.content,
			position = excluded.position,
			embedding = excluded.embedding,
			span_start = excluded.span_start,
			span_end = excluded.span_end,
			cluster_id = excluded.cluster_id
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		embeddingBlob := float32SliceToBytes(c.Embedding)
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Content,
			c.Index, embeddingBlob, c.Span.Start, c.Span.End, c.ClusterID); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// storedDimension returns the embedding dimension of the earliest
// stored chunk, or 0 when the index is empty.
func (x *vectorIndex) storedDimension(ctx context.Context) (int, error) {
	var blobLen int
	err := x.store.db.QueryRowContext(ctx,
		"SELECT length(embedding) FROM chunks ORDER BY rowid LIMIT 1",
	).Scan(&blobLen)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying embedding dimension: %w", err)
	}
	return blobLen / 4, nil
}

// Search scores every stored chunk against the query embedding and
// returns the top opts.TopK by cosine similarity.
func (x *vectorIndex) Search(
	ctx context.Context, embedding []float32, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	chunks, err := x.Chunks(ctx, opts.DocumentID)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, domain.SearchResult{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Score:      cosineSimilarity(embedding, c.Embedding),
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
// documentID is empty, in rowid order.
func (x *vectorIndex) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	query := `
		SELECT id, document_id, content, position, embedding, span_start, span_end, cluster_id
		FROM chunks
	`
	var args []any
	if documentID != "" {
		query += " WHERE document_id = ?"
		args = append(args, documentID)
	}
	query += " ORDER BY rowid"

	rows, err := x.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	chunks := []domain.Chunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// Embeddings returns all embeddings in the same order as Chunks("").
func (x *vectorIndex) Embeddings(ctx context.Context) ([][]float32, error) {
	rows, err := x.store.db.QueryContext(ctx, `
		SELECT embedding FROM chunks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	embeddings := [][]float32{}
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		embeddings = append(embeddings, bytesToFloat32Slice(blob))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return embeddings, nil
}

// DeleteByDocument removes all chunks for a document. Idempotent.
func (x *vectorIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := x.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// SetClusterIDs writes cluster assignments onto stored chunks inside
// one transaction. Unknown chunk ids are ignored.
func (x *vectorIndex) SetClusterIDs(ctx context.Context, assignments map[string]int) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "UPDATE chunks SET cluster_id = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for id, clusterID := range assignments {
		if _, err := stmt.ExecContext(ctx, clusterID, id); err != nil {
			return fmt.Errorf("updating chunk %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// scanChunk scans a chunk from the canonical column order.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var blob []byte
	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.Index,
		&blob, &chunk.Span.Start, &chunk.Span.End, &chunk.ClusterID); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(blob)
	return &chunk, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineSimilarity computes 1 - cosine distance. A zero vector on
// either side yields 0.
func cosineSimilarity(a, b []float32) float64 {
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
