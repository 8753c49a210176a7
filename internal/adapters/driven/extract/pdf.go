package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
	"github.com/corpora-dev/corpora/internal/logger"
)

// Ensure PDFExtractor implements the interface.
var _ driven.TextExtractor = (*PDFExtractor)(nil)

// maxPDFFileSize caps PDF uploads held in memory during extraction.
const maxPDFFileSize = 200 << 20

// PDFExtractor extracts text from PDF files. Pages that fail to
// decode are skipped; the document only fails when no page yields any
// text.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract reads the PDF at path and returns the concatenated text of
// all readable pages.
func (e *PDFExtractor) Extract(ctx context.Context, path string, _ domain.DocumentType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.Size() > maxPDFFileSize {
		return "", fmt.Errorf("%w: file %s exceeds %d bytes", domain.ErrInvalidInput, path, maxPDFFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			logger.Warn("Skipping page %d of %s: %v", i, path, err)
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}

	result := b.String()
	if strings.TrimSpace(result) == "" {
		return "", fmt.Errorf("no text extracted from %s", path)
	}
	return result, nil
}
