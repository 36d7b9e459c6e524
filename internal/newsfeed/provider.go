package newsfeed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pders01/bulletin/internal/articles"
	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/debuglog"
	"github.com/pders01/bulletin/internal/feed"
	"github.com/pders01/bulletin/internal/search"
	"github.com/pders01/bulletin/internal/storage"
)

const DefaultLoadMoreSettle = 300 * time.Millisecond

// FeedState is what the home view renders when no search is active.
type FeedState struct {
	Displayed   []*storage.Article
	All         []*storage.Article
	Loading     bool
	LoadingMore bool
	Err         string
	HasMore     bool
	Page        int
}

type Options struct {
	PageSize       int
	LoadMoreSettle time.Duration
	Scheduler      search.Scheduler
	Search         search.Options
}

// Provider ties the article store, its pagination window, and the search
// overlay together. Create one per app run and Close it on exit.
type Provider struct {
	store     *articles.Store
	window    *articles.Window
	overlay   *search.Overlay
	scheduler search.Scheduler
	settle    time.Duration

	mu          sync.Mutex
	loadingMore bool
	settleTask  search.Handle
	lastInput   string
	refreshed   uint64
	onChange    func()
}

func NewProvider(source feed.Source, opts Options) *Provider {
	if opts.Scheduler == nil {
		opts.Scheduler = search.TimerScheduler{}
	}
	if opts.LoadMoreSettle <= 0 {
		opts.LoadMoreSettle = DefaultLoadMoreSettle
	}
	if opts.Search.Scheduler == nil {
		opts.Search.Scheduler = opts.Scheduler
	}

	p := &Provider{
		store:     articles.NewStore(source),
		window:    articles.NewWindow(opts.PageSize),
		scheduler: opts.Scheduler,
		settle:    opts.LoadMoreSettle,
	}
	p.overlay = search.NewOverlay(p.allArticles, opts.Search)

	p.store.OnChange(p.onStoreChange)
	p.overlay.OnChange(func(search.State) { p.notify() })

	return p
}

// NewFromConfig builds a Provider over the HTTP source, choosing local or
// remote search and suggestions from cfg.
func NewFromConfig(cfg *config.Config, source *feed.HTTPSource) *Provider {
	searchOpts := search.Options{
		Debounce:       cfg.Search.Debounce,
		MinPrefix:      cfg.Search.MinPrefix,
		MaxSuggestions: cfg.Search.MaxSuggestions,
	}
	if cfg.Search.RemoteSearch {
		searchOpts.Searcher = search.NewRemoteSearcher(source)
	}
	if cfg.Search.RemoteSuggestions {
		searchOpts.Suggestions = search.NewRemoteSuggestions(source, cfg.Search.SuggestionCacheTTL)
	}

	return NewProvider(source, Options{
		PageSize:       cfg.Feed.PageSize,
		LoadMoreSettle: cfg.Feed.LoadMoreSettle,
		Search:         searchOpts,
	})
}

// OnChange registers fn to be called after any state change. It may be called
// from timer or fetch goroutines.
func (p *Provider) OnChange(fn func()) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

func (p *Provider) notify() {
	p.mu.Lock()
	fn := p.onChange
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *Provider) allArticles() []*storage.Article {
	return p.store.Snapshot().Articles
}

// onStoreChange resets pagination and recomputes the active search whenever
// the list is replaced.
// Readers may already have synced the window to this version, so the search
// refresh tracks its own version.
func (p *Provider) onStoreChange(snap articles.Snapshot) {
	p.window.Sync(snap.Version)

	p.mu.Lock()
	replaced := snap.Version != p.refreshed
	p.refreshed = snap.Version
	p.mu.Unlock()

	if replaced {
		debuglog.Debugf("article list replaced (version=%d), window reset", snap.Version)
		p.overlay.Refresh(context.Background())
	}
	p.notify()
}

// Load fetches the article list. Errors are reported through FeedState.
func (p *Provider) Load(ctx context.Context) {
	p.store.Load(ctx)
}

func (p *Provider) FeedState() FeedState {
	snap := p.store.Snapshot()
	p.window.Sync(snap.Version)

	p.mu.Lock()
	loadingMore := p.loadingMore
	p.mu.Unlock()

	return FeedState{
		Displayed:   p.window.Displayed(snap.Articles),
		All:         snap.Articles,
		Loading:     snap.Loading,
		LoadingMore: loadingMore,
		Err:         snap.Err,
		HasMore:     p.window.HasMore(len(snap.Articles)),
		Page:        p.window.Page(),
	}
}

// LoadMore shows the next page and reports whether there was one.
func (p *Provider) LoadMore() bool {
	snap := p.store.Snapshot()
	p.window.Sync(snap.Version)
	if !p.window.LoadMore(len(snap.Articles)) {
		return false
	}

	p.mu.Lock()
	p.loadingMore = true
	if p.settleTask != nil {
		p.settleTask.Cancel()
	}
	p.settleTask = p.scheduler.Schedule(p.settle, p.settleLoadMore)
	p.mu.Unlock()

	p.notify()
	return true
}

func (p *Provider) settleLoadMore() {
	p.mu.Lock()
	p.loadingMore = false
	p.settleTask = nil
	p.mu.Unlock()
	p.notify()
}

func (p *Provider) SearchState() search.State {
	return p.overlay.State()
}

// HandleSearchTermChange records a keystroke. Clearing a non-empty input
// leaves search mode and returns to the first page.
func (p *Provider) HandleSearchTermChange(text string) {
	p.mu.Lock()
	wasEmpty := strings.TrimSpace(p.lastInput) == ""
	p.lastInput = text
	p.mu.Unlock()

	p.overlay.SetQuery(text)
	if strings.TrimSpace(text) == "" && !wasEmpty {
		p.ExecuteSearch(context.Background(), "")
	}
	p.overlay.RequestSuggestions(text)
}

func (p *Provider) ExecuteSearch(ctx context.Context, term string) {
	if strings.TrimSpace(term) == "" {
		p.window.Reset()
	}
	p.overlay.ExecuteSearch(ctx, term)
}

func (p *Provider) HandleSelectSuggestion(ctx context.Context, title string) {
	p.mu.Lock()
	p.lastInput = title
	p.mu.Unlock()
	p.overlay.SelectSuggestion(ctx, title)
}

// ResetSearchState leaves search mode entirely, as when navigating home.
func (p *Provider) ResetSearchState() {
	p.mu.Lock()
	p.lastInput = ""
	p.mu.Unlock()
	p.window.Reset()
	p.overlay.Reset()
}

// Visible is the list the home view should render right now.
func (p *Provider) Visible() []*storage.Article {
	state := p.overlay.State()
	feedState := p.FeedState()
	return Select(state.ActiveQuery, state.Results, feedState.Displayed)
}

// Close cancels pending timers and empties the store.
func (p *Provider) Close() {
	p.overlay.Close()

	p.mu.Lock()
	if p.settleTask != nil {
		p.settleTask.Cancel()
		p.settleTask = nil
	}
	p.loadingMore = false
	p.onChange = nil
	p.mu.Unlock()

	p.store.Clear()
}
