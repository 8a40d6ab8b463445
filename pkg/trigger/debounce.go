package trigger

import (
	"sync"
	"time"
)

// ScheduledTask is a cancellable handle to a function scheduled to run once.
type ScheduledTask struct {
	timer *time.Timer
}

// Cancel stops the task. It reports whether the task was stopped before it
// started running.
func (t *ScheduledTask) Cancel() bool {
	if t == nil || t.timer == nil {
		return false
	}
	return t.timer.Stop()
}

// Debouncer keeps at most one scheduled task: scheduling a new one cancels
// the previous one.
type Debouncer struct {
	mu      sync.Mutex
	pending *ScheduledTask
}

// Schedule cancels any pending task and runs fn after delay. The second
// result reports whether a pending task was superseded.
func (d *Debouncer) Schedule(delay time.Duration, fn func()) (*ScheduledTask, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	superseded := d.pending.Cancel()
	task := &ScheduledTask{}
	task.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.pending == task {
			d.pending = nil
		}
		d.mu.Unlock()
		fn()
	})
	d.pending = task
	return task, superseded
}

// Cancel cancels the pending task, if any.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	stopped := d.pending.Cancel()
	d.pending = nil
	return stopped
}
