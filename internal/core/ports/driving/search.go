package driving

import (
	"context"

	"github.com/corpora-dev/corpora/internal/core/domain"
)

// SearchService provides similarity search to external actors.
type SearchService interface {
	// Search embeds the query and returns ranked results.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
