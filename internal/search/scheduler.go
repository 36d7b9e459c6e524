package search

import (
	"sync"
	"time"
)

// Handle is a scheduled task that can still be cancelled.
type Handle interface {
	// Cancel stops the task if it has not started and reports whether it did.
	Cancel() bool
}

// Scheduler runs task once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, task func()) Handle
}

// TimerScheduler runs tasks on their own goroutine via time.AfterFunc.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(delay time.Duration, task func()) Handle {
	return timerHandle{time.AfterFunc(delay, task)}
}

type timerHandle struct {
	timer *time.Timer
}

func (h timerHandle) Cancel() bool {
	return h.timer.Stop()
}

// Debouncer keeps at most one pending task. Scheduling a new one cancels the
// previous handle first.
type Debouncer struct {
	scheduler Scheduler
	delay     time.Duration

	mu      sync.Mutex
	current Handle
}

func NewDebouncer(scheduler Scheduler, delay time.Duration) *Debouncer {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	return &Debouncer{scheduler: scheduler, delay: delay}
}

func (d *Debouncer) Schedule(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		d.current.Cancel()
	}
	d.current = d.scheduler.Schedule(d.delay, task)
}

// Stop cancels the pending task, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		d.current.Cancel()
		d.current = nil
	}
}
