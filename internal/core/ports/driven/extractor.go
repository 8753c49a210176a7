package driven

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// TextExtractor pulls raw text out of an uploaded file. One extractor
// exists per supported document type; anything else is rejected with
// domain.ErrUnsupportedType before reaching the core.
type TextExtractor interface {
	// Extract reads the file at path and returns its text content.
	Extract(ctx context.Context, path string, docType domain.DocumentType) (string, error)
}
