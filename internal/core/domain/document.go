package domain

import "time"

// DocumentType identifies the source file format of a document.
type DocumentType string

// Supported document types. Anything else is rejected before it
// reaches the ingestion pipeline.
const (
	DocumentTypePDF DocumentType = "pdf"
	DocumentTypeTXT DocumentType = "txt"
)

// Valid reports whether the document type is one the system accepts.
func (t DocumentType) Valid() bool {
	return t == DocumentTypePDF || t == DocumentTypeTXT
}

// ProcessingStatus tracks a document through the ingestion pipeline.
// Transitions are monotone: pending -> processing -> completed|failed.
// A document never leaves a terminal state; re-ingestion under a new
// id is the only way to try again.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DocumentStats is the typed extension record attached to a document.
// Keeping the keys enumerated (rather than an open metadata map) keeps
// invariants over them checkable.
type DocumentStats struct {
	// ChunksCount is the number of indexed chunks, set on completion.
	ChunksCount int

	// Error holds the failure message when Status is failed.
	Error string
}

// Document represents an uploaded text document owned by the document
// store. Its chunks live in the vector index and reference it by ID;
// deleting a document does not cascade - callers must issue an explicit
// index delete.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original upload name.
	Filename string

	// Type is the source file format (pdf or txt).
	Type DocumentType

	// Content is the full extracted text.
	Content string

	// Status is the current pipeline state.
	Status ProcessingStatus

	// CreatedAt is when the document was first uploaded.
	CreatedAt time.Time

	// Stats holds ingestion outcome details.
	Stats DocumentStats
}

// ClusterUnassigned marks a chunk that has never been clustered.
const ClusterUnassigned = -1

// Span records the rune offsets a chunk was cut from.
type Span struct {
	// Start is the offset of the first rune in the cleaned text.
	Start int

	// End is the offset just past the last rune, clamped to text length.
	End int
}

// Chunk represents an overlapping fragment of a document. It is the
// atomic unit of embedding, retrieval and analytics, and is owned by
// the vector index.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links back to the source document. This is a
	// reference, not an ownership edge.
	DocumentID string

	// Content is the fragment text.
	Content string

	// Index is the 0-based position among the kept fragments of one
	// document. Values are contiguous; dropped windows leave no gap.
	Index int

	// Embedding is the semantic vector, present only after the chunk
	// has passed the embedding step.
	Embedding []float32

	// Span records where the fragment came from in the cleaned text.
	Span Span

	// ClusterID is the last cluster assignment written back by the
	// clustering use case, or ClusterUnassigned.
	ClusterID int
}

// Embedded reports whether the chunk carries an embedding.
func (c *Chunk) Embedded() bool {
	return len(c.Embedding) > 0
}
