// Package extract pulls raw text out of uploaded files. One extractor
// exists per supported document type; the factory routes by type and
// rejects anything else before the ingestion pipeline starts.
package extract

import (
	"context"
	"fmt"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.TextExtractor = (*Factory)(nil)

// Factory routes extraction requests to the extractor for the
// document type.
type Factory struct {
	plain *PlainTextExtractor
	pdf   *PDFExtractor
}

// NewFactory creates a factory covering all supported document types.
func NewFactory() *Factory {
	return &Factory{
		plain: NewPlainTextExtractor(),
		pdf:   NewPDFExtractor(),
	}
}

// Extract reads the file at path and returns its text content.
func (f *Factory) Extract(ctx context.Context, path string, docType domain.DocumentType) (string, error) {
	switch docType {
	case domain.DocumentTypeTXT:
		return f.plain.Extract(ctx, path, docType)
	case domain.DocumentTypePDF:
		return f.pdf.Extract(ctx, path, docType)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, docType)
	}
}
