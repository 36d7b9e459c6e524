package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/debuglog"
	"github.com/pders01/bulletin/internal/storage"
)

// Source supplies the full article list.
type Source interface {
	Fetch(ctx context.Context) ([]*storage.Article, error)
}

// HTTPSource reads articles from the configured list and detail endpoints.
type HTTPSource struct {
	fetcher    *Fetcher
	parser     *Parser
	listURL    string
	detailURL  string
	searchURL  string
	suggestURL string
}

func NewHTTPSource(cfg *config.Config, fetcher *Fetcher, parser *Parser) *HTTPSource {
	return &HTTPSource{
		fetcher:    fetcher,
		parser:     parser,
		listURL:    cfg.API.Endpoint(cfg.API.Articles),
		detailURL:  cfg.API.Endpoint(cfg.API.ArticleDetail),
		searchURL:  cfg.API.Endpoint(cfg.API.Search),
		suggestURL: cfg.API.Endpoint(cfg.API.Suggestions),
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]*storage.Article, error) {
	resp, err := s.fetcher.Get(ctx, s.listURL)
	if err != nil {
		return nil, fmt.Errorf("fetching articles: %w", err)
	}

	articles, err := s.parser.Decode(resp.Body, resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decoding articles: %w", err)
	}

	debuglog.WithFields(map[string]interface{}{
		"url":   s.listURL,
		"count": len(articles),
	}).Debugf("fetched article list")

	return articles, nil
}

// FetchArticle loads one article from the detail endpoint.
func (s *HTTPSource) FetchArticle(ctx context.Context, id string) (*storage.Article, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("article id is required")
	}

	endpoint := strings.TrimSuffix(s.detailURL, "/") + "/" + url.PathEscape(id)
	resp, err := s.fetcher.Get(ctx, endpoint)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("article not found: %w", err)
		}
		return nil, fmt.Errorf("fetching article %s: %w", id, err)
	}

	article, err := s.parser.DecodeOne(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding article %s: %w", id, err)
	}
	return article, nil
}

// Search runs a server-side query against the search endpoint.
func (s *HTTPSource) Search(ctx context.Context, query string) ([]*storage.Article, error) {
	endpoint := s.searchURL + "?q=" + url.QueryEscape(query)
	resp, err := s.fetcher.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}
	articles, err := s.parser.Decode(resp.Body, resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}
	return articles, nil
}

// Suggest asks the suggestion endpoint for titles matching prefix. The
// endpoint answers with a JSON array of strings, or an object wrapping one in
// data or suggestions.
func (s *HTTPSource) Suggest(ctx context.Context, prefix string) ([]string, error) {
	endpoint := s.suggestURL + "?q=" + url.QueryEscape(prefix)
	resp, err := s.fetcher.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetching suggestions: %w", err)
	}

	var titles []string
	if err := json.Unmarshal(resp.Body, &titles); err == nil {
		return titles, nil
	}

	var envelope struct {
		Data        []string `json:"data"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: suggestions: %w", ErrMalformedPayload, err)
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	if envelope.Suggestions != nil {
		return envelope.Suggestions, nil
	}
	return nil, fmt.Errorf("%w: suggestions: no string array", ErrMalformedPayload)
}
