package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/pders01/bulletin/internal/config"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 10 << 20

// Response is a successful body together with its declared content type.
type Response struct {
	Body        []byte
	ContentType string
}

// Fetcher performs rate-limited HTTP requests against the news API.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter

	mu    sync.RWMutex
	token func() string
}

func NewFetcher(cfg *config.Config) *Fetcher {
	limit := rate.Inf
	if cfg.Feed.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Feed.RequestsPerSecond)
	}
	burst := cfg.Feed.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Feed.HTTPTimeout,
		},
		userAgent: cfg.Feed.UserAgent,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// SetTokenSource installs the bearer token provider. A nil source or an empty
// token sends no Authorization header.
func (f *Fetcher) SetTokenSource(token func() string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *Fetcher) bearer() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.token == nil {
		return ""
	}
	return f.token()
}

// Get fetches url and returns the body of a 2xx response.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/rss+xml, application/atom+xml, application/xml, text/xml")
	return f.do(req)
}

// PostJSON sends payload as a JSON body and returns the 2xx response.
func (f *Fetcher) PostJSON(ctx context.Context, url string, payload any) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return f.do(req)
}

func (f *Fetcher) do(req *http.Request) (*Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if token := f.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrFetchFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return &Response{Body: body, ContentType: resp.Header.Get("Content-Type")}, nil
}

// errorMessage pulls "message" or "error" out of a JSON error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return strings.TrimSpace(payload.Message)
	}
	return strings.TrimSpace(payload.Error)
}
