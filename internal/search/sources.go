package search

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pders01/bulletin/internal/storage"
)

// LocalSearcher filters the shared list in memory.
type LocalSearcher struct{}

func (LocalSearcher) Search(ctx context.Context, term string, list []*storage.Article) ([]*storage.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Filter(list, term), nil
}

// RemoteSearcher delegates to the search endpoint and keeps the server's order.
type RemoteSearcher struct {
	client SearchClient
}

func NewRemoteSearcher(client SearchClient) *RemoteSearcher {
	return &RemoteSearcher{client: client}
}

func (r *RemoteSearcher) Search(ctx context.Context, term string, _ []*storage.Article) ([]*storage.Article, error) {
	results, err := r.client.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []*storage.Article{}
	}
	return results, nil
}

// LocalSuggestions offers titles from the shared list.
type LocalSuggestions struct{}

func (LocalSuggestions) Suggest(ctx context.Context, prefix string, list []*storage.Article, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Titles(list, prefix, limit), nil
}

// RemoteSuggestions asks the suggestion endpoint and memoizes answers per
// lowercased prefix.
type RemoteSuggestions struct {
	client SuggestClient
	cache  *cache.Cache
}

func NewRemoteSuggestions(client SuggestClient, ttl time.Duration) *RemoteSuggestions {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RemoteSuggestions{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (r *RemoteSuggestions) Suggest(ctx context.Context, prefix string, _ []*storage.Article, limit int) ([]string, error) {
	key := strings.ToLower(prefix)
	if cached, ok := r.cache.Get(key); ok {
		return capTitles(cached.([]string), limit), nil
	}

	titles, err := r.client.Suggest(ctx, prefix)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, titles, cache.DefaultExpiration)
	return capTitles(titles, limit), nil
}

func capTitles(titles []string, limit int) []string {
	if limit > 0 && len(titles) > limit {
		titles = titles[:limit]
	}
	return append([]string(nil), titles...)
}
