package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pders01/bulletin/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.Handler) *HTTPSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL + "/api"
	return NewHTTPSource(cfg, NewFetcher(cfg), NewParser())
}

func TestHTTPSource_Fetch(t *testing.T) {
	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scrape/history", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"1","title":"One"},{"id":"2","title":"Two"}]}`))
	}))

	articles, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "One", articles[0].Title)
	assert.True(t, articles[0].Featured)
}

func TestHTTPSource_FetchErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		_, err := source.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrFetchFailure)
	})

	t.Run("malformed payload", func(t *testing.T) {
		source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"ok"}`))
		}))
		_, err := source.Fetch(context.Background())
		assert.ErrorIs(t, err, ErrMalformedPayload)
		assert.NotErrorIs(t, err, ErrFetchFailure)
	})
}

func TestHTTPSource_FetchArticle(t *testing.T) {
	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/scrape/history/42":
			w.Write([]byte(`{"id":42,"title":"Detail","content":"<p>Body</p>"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	article, err := source.FetchArticle(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", article.ID)
	assert.Equal(t, "Body", article.Content)

	_, err = source.FetchArticle(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, strings.HasPrefix(err.Error(), "article not found"))

	_, err = source.FetchArticle(context.Background(), "  ")
	assert.Error(t, err)
}

func TestHTTPSource_Search(t *testing.T) {
	source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scrape/search", r.URL.Path)
		assert.Equal(t, "giá vàng", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"id":"g1","title":"Giá vàng tăng"}]`))
	}))

	articles, err := source.Search(context.Background(), "giá vàng")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "g1", articles[0].ID)
}

func TestHTTPSource_Suggest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
		err  bool
	}{
		{"bare array", `["Giá vàng tăng","Giá xăng giảm"]`, []string{"Giá vàng tăng", "Giá xăng giảm"}, false},
		{"data envelope", `{"data":["Giá vàng tăng"]}`, []string{"Giá vàng tăng"}, false},
		{"suggestions envelope", `{"suggestions":[]}`, []string{}, false},
		{"wrong shape", `{"ok":true}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/scrape/suggestions", r.URL.Path)
				assert.Equal(t, "gi", r.URL.Query().Get("q"))
				w.Write([]byte(tt.body))
			}))

			got, err := source.Suggest(context.Background(), "gi")
			if tt.err {
				assert.ErrorIs(t, err, ErrMalformedPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
