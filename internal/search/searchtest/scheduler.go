// Package searchtest provides a deterministic Scheduler for tests.
package searchtest

import (
	"sort"
	"sync"
	"time"

	"github.com/pders01/bulletin/internal/search"
)

// Scheduler is a manual clock. Tasks run synchronously from Advance once their
// deadline is reached, in deadline order.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*task
}

type task struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
	done      bool
}

func (t *task) Cancel() bool {
	if t.done || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

var _ search.Scheduler = (*Scheduler)(nil)

func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Schedule(delay time.Duration, fn func()) search.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &task{at: s.now + delay, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return &lockedHandle{s: s, t: t}
}

type lockedHandle struct {
	s *Scheduler
	t *task
}

func (h *lockedHandle) Cancel() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.t.Cancel()
}

// Advance moves the clock forward by d and runs every task that became due.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()

	for {
		t := s.nextDue()
		if t == nil {
			return
		}
		t.fn()
	}
}

func (s *Scheduler) nextDue() *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].at != s.tasks[j].at {
			return s.tasks[i].at < s.tasks[j].at
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
	for _, t := range s.tasks {
		if t.cancelled || t.done {
			continue
		}
		if t.at > s.now {
			return nil
		}
		t.done = true
		return t
	}
	return nil
}

// Pending returns the number of tasks neither run nor cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled && !t.done {
			n++
		}
	}
	return n
}
