package articles

import (
	"context"
	"sync"

	"github.com/pders01/bulletin/internal/debuglog"
	"github.com/pders01/bulletin/internal/feed"
	"github.com/pders01/bulletin/internal/storage"
)

// Snapshot is a consistent view of the store. Articles is shared and must not
// be modified by readers.
type Snapshot struct {
	Articles []*storage.Article
	Version  uint64
	Loading  bool
	Err      string
}

// Store holds the authoritative article list. The list is replaced wholesale
// by Load and never mutated in place.
type Store struct {
	source feed.Source

	mu       sync.RWMutex
	articles []*storage.Article
	version  uint64
	gen      uint64
	loading  bool
	err      string
	onChange func(Snapshot)
}

func NewStore(source feed.Source) *Store {
	return &Store{source: source}
}

// OnChange registers fn to be called after every state transition. fn runs on
// the goroutine that caused the change, outside the store lock.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Articles: s.articles,
		Version:  s.version,
		Loading:  s.loading,
		Err:      s.err,
	}
}

// Load fetches the list from the source. Failures are recorded in the
// snapshot's Err and leave the list empty. When loads overlap only the most
// recently started one publishes its result.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	g := s.gen
	s.loading = true
	s.err = ""
	s.mu.Unlock()
	s.notify()

	articles, err := s.source.Fetch(ctx)

	s.mu.Lock()
	if g != s.gen {
		s.mu.Unlock()
		debuglog.Debugf("discarding superseded article load (gen=%d)", g)
		return
	}
	s.loading = false
	s.version++
	if err != nil {
		s.articles = nil
		s.err = err.Error()
		debuglog.Warnf("article load failed: %v", err)
	} else {
		s.articles = articles
		s.err = ""
		debuglog.Infof("loaded %d articles", len(articles))
	}
	s.mu.Unlock()
	s.notify()
}

// Clear empties the store and abandons any in-flight load.
func (s *Store) Clear() {
	s.mu.Lock()
	s.gen++
	s.version++
	s.articles = nil
	s.loading = false
	s.err = ""
	s.mu.Unlock()
	s.notify()
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	snap := s.snapshotLocked()
	s.mu.RUnlock()
	if fn != nil {
		fn(snap)
	}
}
