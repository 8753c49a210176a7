package driven

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// DocumentStore persists documents. Backed by SQLite; an in-memory
// implementation exists for tests.
//
// Round-trip fidelity is required: Get after Save returns an equal
// document.
type DocumentStore interface {
	// Save stores or updates a document, keyed by ID.
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID. Returns domain.ErrNotFound when
	// it does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns documents with pagination, in stable order.
	List(ctx context.Context, skip, limit int) ([]domain.Document, error)

	// Delete removes a document. Deleting an unknown id returns
	// domain.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
