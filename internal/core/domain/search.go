package domain

// SearchResult is one similarity search hit. Results are ephemeral;
// they are never persisted.
type SearchResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's source document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Score is the similarity, derived as 1 - cosine distance.
	// Higher is better; results come back in non-increasing order.
	Score float64

	// Index is the chunk's position within its document.
	Index int
}

// SearchOptions controls a similarity search.
type SearchOptions struct {
	// TopK caps the number of results. Defaults to 10 when <= 0.
	TopK int

	// DocumentID restricts results to one document when non-empty.
	DocumentID string
}
