package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document, chunk or model
	// artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input: bad
	// parameters, an empty corpus, or too few training samples.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelNotTrained indicates predict was called before any
	// train or load succeeded. Deliberately distinct from ErrNotFound
	// so callers can tell "train first" from "unknown chunk".
	ErrModelNotTrained = errors.New("model not trained")

	// ErrUnsupportedType indicates an unknown document type.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrMissingEmbedding indicates a chunk reached the vector index
	// without an embedding of the configured dimension.
	ErrMissingEmbedding = errors.New("chunk missing embedding")
)

// PipelineError reports a failure during document ingestion. The
// failure is also recorded on the document itself (status failed,
// Stats.Error) before the error is returned to the caller.
type PipelineError struct {
	// Step names the pipeline stage that failed.
	Step string

	// DocumentID identifies the document being ingested.
	DocumentID string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("ingest %s: %s: %v", e.DocumentID, e.Step, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}
