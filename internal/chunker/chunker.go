// Package chunker splits cleaned document text into overlapping
// fixed-size fragments.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// DefaultWindowSize is the default number of characters per chunk.
const DefaultWindowSize = 512

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 50

// Chunker produces overlapping fragments from document text. Splitting
// is deterministic: identical input and configuration always yield
// identical chunk boundaries. Only the chunk ids come from a fresh
// unique generator.
type Chunker struct {
	windowSize int
	overlap    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithWindowSize sets the window size in characters.
func WithWindowSize(size int) Option {
	return func(c *Chunker) {
		c.windowSize = size
	}
}

// WithOverlap sets the overlap between windows in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. A non-positive window size, a negative
// overlap, or an overlap that is not strictly smaller than the window
// size is a configuration error, reported before any work happens.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		windowSize: DefaultWindowSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive, got %d", domain.ErrInvalidInput, c.windowSize)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidInput, c.overlap)
	}
	if c.overlap >= c.windowSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than window size %d", domain.ErrInvalidInput, c.overlap, c.windowSize)
	}

	return c, nil
}

// WindowSize returns the configured window size.
func (c *Chunker) WindowSize() int {
	return c.windowSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Split cuts the text into overlapping windows. Whitespace runs are
// collapsed and NUL bytes stripped first; the window then slides
// forward by windowSize-overlap runes until its start passes the end
// of the cleaned text. Windows that are blank after trimming are
// dropped; indices stay contiguous over the kept windows. Empty input
// yields an empty slice, not an error.
func (c *Chunker) Split(text, documentID string) []domain.Chunk {
	cleaned := Clean(text)
	if cleaned == "" {
		return nil
	}

	runes := []rune(cleaned)
	step := c.windowSize - c.overlap

	var chunks []domain.Chunk
	index := 0

	for start := 0; start < len(runes); start += step {
		end := start + c.windowSize
		if end > len(runes) {
			end = len(runes)
		}

		content := strings.TrimSpace(string(runes[start:end]))
		if content == "" {
			continue
		}

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    content,
			Index:      index,
			Span:       domain.Span{Start: start, End: end},
			ClusterID:  domain.ClusterUnassigned,
		})
		index++
	}

	return chunks
}

// Clean collapses whitespace runs into single spaces and strips NUL
// bytes.
func Clean(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	return strings.ReplaceAll(cleaned, "\x00", "")
}
