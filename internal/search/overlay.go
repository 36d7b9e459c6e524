package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pders01/bulletin/internal/debuglog"
	"github.com/pders01/bulletin/internal/storage"
)

const (
	DefaultMinPrefix      = 2
	DefaultMaxSuggestions = 5
	DefaultDebounce       = 300 * time.Millisecond
)

// State is a copy of the overlay's observable fields. Computed is false until
// a non-empty search has completed; Results is meaningless before that.
type State struct {
	Query               string
	ActiveQuery         string
	Results             []*storage.Article
	Computed            bool
	Searching           bool
	Err                 string
	Suggestions         []string
	FetchingSuggestions bool
}

type Options struct {
	Searcher       Searcher
	Suggestions    SuggestionSource
	Scheduler      Scheduler
	Debounce       time.Duration
	MinPrefix      int
	MaxSuggestions int
}

// Overlay owns the search input, its results, and debounced title
// suggestions. list supplies the current full article list on demand.
type Overlay struct {
	searcher       Searcher
	suggestions    SuggestionSource
	debouncer      *Debouncer
	minPrefix      int
	maxSuggestions int
	list           func() []*storage.Article

	mu            sync.Mutex
	state         State
	searchGen     uint64
	suggestGen    uint64
	appliedGen    uint64
	cancelSuggest context.CancelFunc
	closed        bool
	onChange      func(State)
}

func NewOverlay(list func() []*storage.Article, opts Options) *Overlay {
	if opts.Searcher == nil {
		opts.Searcher = LocalSearcher{}
	}
	if opts.Suggestions == nil {
		opts.Suggestions = LocalSuggestions{}
	}
	if opts.MinPrefix <= 0 {
		opts.MinPrefix = DefaultMinPrefix
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = DefaultMaxSuggestions
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if list == nil {
		list = func() []*storage.Article { return nil }
	}

	return &Overlay{
		searcher:       opts.Searcher,
		suggestions:    opts.Suggestions,
		debouncer:      NewDebouncer(opts.Scheduler, opts.Debounce),
		minPrefix:      opts.MinPrefix,
		maxSuggestions: opts.MaxSuggestions,
		list:           list,
	}
}

// OnChange registers fn to receive the state after every transition. fn is
// called without the overlay lock held, possibly from a timer goroutine.
func (o *Overlay) OnChange(fn func(State)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

func (o *Overlay) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.copyLocked()
}

func (o *Overlay) copyLocked() State {
	s := o.state
	s.Suggestions = append([]string(nil), o.state.Suggestions...)
	return s
}

// SetQuery records the raw input verbatim.
func (o *Overlay) SetQuery(text string) {
	o.mu.Lock()
	o.state.Query = text
	o.mu.Unlock()
	o.notify()
}

// ExecuteSearch runs term against the current list. An empty term leaves
// search mode. Failures become state; only the newest search publishes.
func (o *Overlay) ExecuteSearch(ctx context.Context, term string) {
	term = strings.TrimSpace(term)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.searchGen++
	g := o.searchGen
	if term == "" {
		o.state.ActiveQuery = ""
		o.state.Results = nil
		o.state.Computed = false
		o.state.Searching = false
		o.state.Err = ""
		o.mu.Unlock()
		o.notify()
		return
	}
	o.state.ActiveQuery = term
	o.state.Searching = true
	o.state.Err = ""
	o.mu.Unlock()
	o.notify()

	results, err := o.searcher.Search(ctx, term, o.list())

	o.mu.Lock()
	if g != o.searchGen {
		o.mu.Unlock()
		debuglog.Debugf("discarding superseded search %q (gen=%d)", term, g)
		return
	}
	o.state.Searching = false
	o.state.Computed = true
	if err != nil {
		o.state.Err = err.Error()
		o.state.Results = []*storage.Article{}
		debuglog.Warnf("search %q failed: %v", term, err)
	} else {
		o.state.Results = results
	}
	o.mu.Unlock()
	o.notify()
}

// Refresh re-runs the active search, if any, against the current list.
func (o *Overlay) Refresh(ctx context.Context) {
	o.mu.Lock()
	active := o.state.ActiveQuery
	o.mu.Unlock()
	if active != "" {
		o.ExecuteSearch(ctx, active)
	}
}

// RequestSuggestions debounces a suggestion lookup for prefix. Prefixes
// shorter than the minimum clear the suggestions instead.
func (o *Overlay) RequestSuggestions(prefix string) {
	prefix = strings.TrimSpace(prefix)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.suggestGen++
	g := o.suggestGen
	o.cancelInFlightLocked()

	if utf8.RuneCountInString(prefix) < o.minPrefix {
		o.state.Suggestions = nil
		o.state.FetchingSuggestions = false
		o.mu.Unlock()
		o.debouncer.Stop()
		o.notify()
		return
	}
	o.mu.Unlock()

	o.debouncer.Schedule(func() {
		o.fetchSuggestions(g, prefix)
	})
}

func (o *Overlay) fetchSuggestions(g uint64, prefix string) {
	o.mu.Lock()
	if o.closed || g != o.suggestGen {
		o.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	o.cancelSuggest = cancel
	o.state.FetchingSuggestions = true
	o.mu.Unlock()
	o.notify()

	titles, err := o.suggestions.Suggest(ctx, prefix, o.list(), o.maxSuggestions)
	cancel()

	o.mu.Lock()
	if o.closed || g != o.suggestGen || g < o.appliedGen {
		o.mu.Unlock()
		debuglog.Debugf("discarding stale suggestions for %q (gen=%d)", prefix, g)
		return
	}
	o.appliedGen = g
	o.cancelSuggest = nil
	o.state.FetchingSuggestions = false
	if err != nil {
		o.state.Suggestions = nil
		debuglog.Warnf("suggestions for %q failed: %v", prefix, err)
	} else {
		if len(titles) > o.maxSuggestions {
			titles = titles[:o.maxSuggestions]
		}
		o.state.Suggestions = titles
	}
	o.mu.Unlock()
	o.notify()
}

// SelectSuggestion puts title in the input, searches for it, and clears the
// suggestion list.
func (o *Overlay) SelectSuggestion(ctx context.Context, title string) {
	o.debouncer.Stop()

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.suggestGen++
	o.cancelInFlightLocked()
	o.state.Query = title
	o.mu.Unlock()

	o.ExecuteSearch(ctx, title)

	o.mu.Lock()
	o.state.Suggestions = nil
	o.state.FetchingSuggestions = false
	o.mu.Unlock()
	o.notify()
}

// Reset clears all search state and abandons pending work.
func (o *Overlay) Reset() {
	o.debouncer.Stop()

	o.mu.Lock()
	o.searchGen++
	o.suggestGen++
	o.cancelInFlightLocked()
	o.state = State{}
	o.mu.Unlock()
	o.notify()
}

// Close cancels pending work and stops all further notifications.
func (o *Overlay) Close() {
	o.debouncer.Stop()

	o.mu.Lock()
	o.closed = true
	o.searchGen++
	o.suggestGen++
	o.cancelInFlightLocked()
	o.onChange = nil
	o.mu.Unlock()
}

func (o *Overlay) cancelInFlightLocked() {
	if o.cancelSuggest != nil {
		o.cancelSuggest()
		o.cancelSuggest = nil
	}
}

func (o *Overlay) notify() {
	o.mu.Lock()
	fn := o.onChange
	s := o.copyLocked()
	o.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
