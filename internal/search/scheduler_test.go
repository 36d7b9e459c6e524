package search_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pders01/bulletin/internal/search"
	"github.com/pders01/bulletin/internal/search/searchtest"
)

func TestDebouncer_OnlyLastTaskRuns(t *testing.T) {
	sched := searchtest.New()
	d := search.NewDebouncer(sched, 300*time.Millisecond)

	var ran []string
	d.Schedule(func() { ran = append(ran, "first") })
	sched.Advance(100 * time.Millisecond)
	d.Schedule(func() { ran = append(ran, "second") })
	sched.Advance(250 * time.Millisecond)
	assert.Empty(t, ran, "quiet window restarts on every schedule")

	sched.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"second"}, ran)
	assert.Equal(t, 0, sched.Pending())
}

func TestDebouncer_Stop(t *testing.T) {
	sched := searchtest.New()
	d := search.NewDebouncer(sched, time.Second)

	ran := false
	d.Schedule(func() { ran = true })
	d.Stop()
	sched.Advance(2 * time.Second)

	assert.False(t, ran)
	d.Stop()
}

func TestTimerScheduler(t *testing.T) {
	var count atomic.Int32
	done := make(chan struct{})

	h := search.TimerScheduler{}.Schedule(time.Hour, func() { count.Add(1) })
	assert.True(t, h.Cancel())

	search.TimerScheduler{}.Schedule(time.Millisecond, func() {
		count.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timer task did not run")
	}
	assert.Equal(t, int32(1), count.Load())
}
