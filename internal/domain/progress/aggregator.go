package progress

import (
	"sync"

	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

// Notifier receives aggregated progress for display. Implementations
// own their delivery; a nil notifier on the aggregator is valid and
// means a headless session.
type Notifier interface {
	// Update reports batch movement: done and failed counts against
	// the running total of grouped tasks.
	Update(done, failed, total int)
	// Finished fires exactly once per batch, when the last grouped
	// task resolved or canceled. failed carries how many did not
	// succeed.
	Finished(failed int)
}

// Aggregator is the per-session slot for the current progress batch.
// A batch exists only while at least one task is outstanding; the next
// acquisition after it drains creates a fresh one.
type Aggregator struct {
	mu       sync.Mutex
	notifier Notifier
	current  *batch
	started  int
}

type batch struct {
	total  int
	done   int
	failed int
}

// Task is one unit of grouped work. Done and Cancel are idempotent;
// whichever lands first is the task's terminal state.
type Task struct {
	ID id.TaskID

	agg      *Aggregator
	terminal bool
}

// NewAggregator creates an aggregator reporting to notifier, which may
// be nil.
func NewAggregator(notifier Notifier) *Aggregator {
	return &Aggregator{notifier: notifier}
}

// SetNotifier rebinds the display target. The current batch, if any,
// reports to the new notifier from the next movement on.
func (a *Aggregator) SetNotifier(notifier Notifier) {
	a.mu.Lock()
	a.notifier = notifier
	a.mu.Unlock()
}

// Acquire joins the current batch, creating one when none is
// outstanding, and returns the task handle.
func (a *Aggregator) Acquire() *Task {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		a.current = &batch{}
		a.started++
	}
	a.current.total++

	t := &Task{
		ID:  id.NewTaskID(),
		agg: a,
	}
	a.update()
	return t
}

// Outstanding returns the number of unresolved tasks in the current
// batch.
func (a *Aggregator) Outstanding() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return 0
	}
	return a.current.total - a.current.done - a.current.failed
}

// Started returns how many batches this aggregator has created.
func (a *Aggregator) Started() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.started
}

// update reports movement while holding the lock.
func (a *Aggregator) update() {
	if a.notifier == nil || a.current == nil {
		return
	}
	a.notifier.Update(a.current.done, a.current.failed, a.current.total)
}

// resolve moves a task to its terminal state and tears the batch down
// when it was the last one out.
func (a *Aggregator) resolve(failed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b := a.current
	if b == nil {
		return
	}
	if failed {
		b.failed++
	} else {
		b.done++
	}
	a.update()

	if b.done+b.failed >= b.total {
		a.current = nil
		if a.notifier != nil {
			a.notifier.Finished(b.failed)
		}
	}
}

// Done resolves the task successfully. Safe on a nil task, which is
// what suppressed-notification requests carry.
func (t *Task) Done() {
	if t == nil || t.terminal {
		return
	}
	t.terminal = true
	t.agg.resolve(false)
}

// Cancel resolves the task as failed. Idempotent, nil-safe.
func (t *Task) Cancel() {
	if t == nil || t.terminal {
		return
	}
	t.terminal = true
	t.agg.resolve(true)
}
