package newsfeed

import (
	"strings"

	"github.com/pders01/bulletin/internal/storage"
)

// Select picks the list to render: the full search results while a query is
// active, otherwise the paginated prefix.
func Select(query string, searchResults, paginated []*storage.Article) []*storage.Article {
	if strings.TrimSpace(query) != "" {
		return searchResults
	}
	return paginated
}
