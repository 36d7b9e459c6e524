package articles

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/bulletin/internal/feed"
	"github.com/pders01/bulletin/internal/storage"
)

func numbered(n int) []*storage.Article {
	list := make([]*storage.Article, n)
	for i := range list {
		list[i] = &storage.Article{
			ID:    fmt.Sprintf("a%d", i+1),
			Title: fmt.Sprintf("Article %d", i+1),
		}
	}
	return list
}

type staticSource struct {
	articles []*storage.Article
	err      error
	calls    int
}

func (s *staticSource) Fetch(ctx context.Context) ([]*storage.Article, error) {
	s.calls++
	return s.articles, s.err
}

type result struct {
	articles []*storage.Article
	err      error
}

func TestWindow_Defaults(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, DefaultPageSize, w.PageSize())
	assert.Equal(t, 1, w.Page())

	w = NewWindow(-3)
	assert.Equal(t, DefaultPageSize, w.PageSize())
}

func TestWindow_Monotonicity(t *testing.T) {
	for _, tc := range []struct {
		n, p int
	}{
		{0, 10}, {1, 10}, {10, 10}, {12, 10}, {25, 7}, {100, 10},
	} {
		t.Run(fmt.Sprintf("n=%d,p=%d", tc.n, tc.p), func(t *testing.T) {
			list := numbered(tc.n)
			w := NewWindow(tc.p)
			k := 0
			for {
				want := (k + 1) * tc.p
				if want > tc.n {
					want = tc.n
				}
				require.Len(t, w.Displayed(list), want)
				if !w.HasMore(len(list)) {
					break
				}
				require.True(t, w.LoadMore(len(list)))
				k++
			}
			assert.Equal(t, k+1, w.Page())
		})
	}
}

func TestWindow_OverflowIsNoop(t *testing.T) {
	list := numbered(12)
	w := NewWindow(10)

	require.True(t, w.LoadMore(len(list)))
	before := w.Displayed(list)

	for i := 0; i < 3; i++ {
		assert.False(t, w.LoadMore(len(list)))
	}
	assert.Equal(t, before, w.Displayed(list))
	assert.Equal(t, 2, w.Page())
}

func TestWindow_Scenario(t *testing.T) {
	list := numbered(12)
	w := NewWindow(10)

	assert.Len(t, w.Displayed(list), 10)
	assert.True(t, w.HasMore(len(list)))

	w.LoadMore(len(list))
	assert.Len(t, w.Displayed(list), 12)
	assert.False(t, w.HasMore(len(list)))
}

func TestWindow_ResetAndSync(t *testing.T) {
	list := numbered(30)
	w := NewWindow(10)

	assert.True(t, w.Sync(1))
	w.LoadMore(len(list))
	w.LoadMore(len(list))
	assert.Equal(t, 3, w.Page())

	assert.False(t, w.Sync(1), "same version keeps the page")
	assert.Equal(t, 3, w.Page())

	assert.True(t, w.Sync(2))
	assert.Equal(t, 1, w.Page())

	w.LoadMore(len(list))
	w.Reset()
	assert.Equal(t, 1, w.Page())
}

func TestWindow_DisplayedDoesNotAliasAppend(t *testing.T) {
	list := numbered(12)
	w := NewWindow(10)

	shown := w.Displayed(list)
	shown = append(shown, &storage.Article{ID: "extra"})
	assert.Equal(t, "a11", list[10].ID)
	assert.Len(t, shown, 11)
}

func TestStore_LoadSuccess(t *testing.T) {
	src := &staticSource{articles: numbered(3)}
	s := NewStore(src)

	var seen []Snapshot
	s.OnChange(func(snap Snapshot) { seen = append(seen, snap) })

	s.Load(context.Background())

	snap := s.Snapshot()
	assert.Len(t, snap.Articles, 3)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
	assert.Equal(t, uint64(1), snap.Version)

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading, "first notification marks the fetch in flight")
	assert.False(t, seen[1].Loading)
}

func TestStore_LoadFailureIsState(t *testing.T) {
	src := &staticSource{articles: numbered(3)}
	s := NewStore(src)
	s.Load(context.Background())

	src.articles = nil
	src.err = fmt.Errorf("fetching articles: %w", feed.ErrFetchFailure)
	s.Load(context.Background())

	snap := s.Snapshot()
	assert.Empty(t, snap.Articles)
	assert.False(t, snap.Loading)
	assert.Contains(t, snap.Err, "fetch failed")
	assert.Equal(t, uint64(2), snap.Version)

	src.err = nil
	src.articles = numbered(2)
	s.Load(context.Background())

	snap = s.Snapshot()
	assert.Len(t, snap.Articles, 2)
	assert.Empty(t, snap.Err, "a successful load clears the error")
}

func TestStore_MalformedPayloadSurfacesAsErr(t *testing.T) {
	s := NewStore(&staticSource{err: fmt.Errorf("decoding articles: %w", feed.ErrMalformedPayload)})
	s.Load(context.Background())

	snap := s.Snapshot()
	assert.NotEmpty(t, snap.Err)
	assert.Empty(t, snap.Articles)
}

func TestStore_EmptyListIsNotAnError(t *testing.T) {
	s := NewStore(&staticSource{articles: []*storage.Article{}})
	s.Load(context.Background())

	snap := s.Snapshot()
	assert.Empty(t, snap.Err)
	assert.Empty(t, snap.Articles)
	assert.Equal(t, uint64(1), snap.Version)
}

// blockingSource hands out one response channel per Fetch call.
type blockingSource struct {
	calls chan chan result
}

func (b *blockingSource) Fetch(ctx context.Context) ([]*storage.Article, error) {
	reply := make(chan result)
	b.calls <- reply
	r := <-reply
	return r.articles, r.err
}

func TestStore_SupersededLoadIsDiscarded(t *testing.T) {
	src := &blockingSource{calls: make(chan chan result)}
	s := NewStore(src)

	firstDone := make(chan struct{})
	go func() {
		s.Load(context.Background())
		close(firstDone)
	}()
	first := <-src.calls

	secondDone := make(chan struct{})
	go func() {
		s.Load(context.Background())
		close(secondDone)
	}()
	second := <-src.calls

	second <- result{articles: numbered(2)}
	<-secondDone
	assert.Len(t, s.Snapshot().Articles, 2)

	first <- result{err: errors.New("late failure")}
	<-firstDone

	snap := s.Snapshot()
	assert.Len(t, snap.Articles, 2, "older load must not replace the newer list")
	assert.Empty(t, snap.Err)
	assert.False(t, snap.Loading)
	assert.Equal(t, uint64(1), snap.Version)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(&staticSource{articles: numbered(4)})
	s.Load(context.Background())
	before := s.Snapshot().Version

	s.Clear()

	snap := s.Snapshot()
	assert.Empty(t, snap.Articles)
	assert.False(t, snap.Loading)
	assert.Greater(t, snap.Version, before)
}

func TestStore_ClearAbandonsInFlightLoad(t *testing.T) {
	src := &blockingSource{calls: make(chan chan result)}
	s := NewStore(src)

	done := make(chan struct{})
	go func() {
		s.Load(context.Background())
		close(done)
	}()
	reply := <-src.calls

	s.Clear()
	reply <- result{articles: numbered(5)}
	<-done

	assert.Empty(t, s.Snapshot().Articles)
}
