package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/corpora-dev/corpora/internal/core/domain"
	"github.com/corpora-dev/corpora/internal/core/ports/driven"
	"github.com/corpora-dev/corpora/internal/core/ports/driving"
	"github.com/corpora-dev/corpora/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers similarity queries over the indexed corpus.
type SearchService struct {
	index     driven.VectorIndex
	embedding driven.EmbeddingService
}

// NewSearchService creates a new search service.
func NewSearchService(index driven.VectorIndex, embedding driven.EmbeddingService) *SearchService {
	return &SearchService{
		index:     index,
		embedding: embedding,
	}
}

// Search embeds the query and runs a similarity search. An empty
// query returns no results.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	if opts.TopK <= 0 {
		opts.TopK = 10
	}

	embedding, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.index.Search(ctx, embedding, opts)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	logger.Info("Search returned %d results", len(results))
	return results, nil
}
