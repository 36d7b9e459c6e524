package search

import (
	"context"

	"github.com/pders01/bulletin/internal/storage"
)

// Searcher produces the result list for a trimmed, non-empty term. list is the
// current full article list; implementations must not modify it.
type Searcher interface {
	Search(ctx context.Context, term string, list []*storage.Article) ([]*storage.Article, error)
}

// SuggestionSource produces at most limit titles for a trimmed prefix.
type SuggestionSource interface {
	Suggest(ctx context.Context, prefix string, list []*storage.Article, limit int) ([]string, error)
}

// SearchClient is the remote search endpoint.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]*storage.Article, error)
}

// SuggestClient is the remote suggestion endpoint.
type SuggestClient interface {
	Suggest(ctx context.Context, prefix string) ([]string, error)
}
