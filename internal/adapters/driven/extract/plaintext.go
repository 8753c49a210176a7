package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
	"github.com/corpora-dev/corpora/internal/logger"
)

// Ensure PlainTextExtractor implements the interface.
var _ driven.TextExtractor = (*PlainTextExtractor)(nil)

// maxTextFileSize caps plain text files to avoid loading runaway
// uploads into memory.
const maxTextFileSize = 50 << 20

// PlainTextExtractor reads text files. Content that is not valid
// UTF-8 is reinterpreted as Latin-1 rather than rejected, so legacy
// exports still ingest.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a new plain text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extract reads the file at path and returns its text content.
func (e *PlainTextExtractor) Extract(ctx context.Context, path string, _ domain.DocumentType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.Size() > maxTextFileSize {
		return "", fmt.Errorf("%w: file %s exceeds %d bytes", domain.ErrInvalidInput, path, maxTextFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	logger.Debug("File %s is not valid UTF-8, decoding as Latin-1", path)
	return decodeLatin1(data), nil
}

// decodeLatin1 maps each byte to the Unicode code point of the same
// value, which is exactly the Latin-1 decoding.
func decodeLatin1(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}
