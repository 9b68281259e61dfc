package sched

import (
	"errors"
	"sync"
)

// ErrStopped indicates the loop is no longer accepting tasks
var ErrStopped = errors.New("scheduler loop is stopped")

// Loop is a single-goroutine FIFO task executor
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	stopped bool
	started bool

	tickers map[string][]*ticker

	done chan struct{}
}

// New creates a loop; Start must be called before tasks run
func New() *Loop {
	l := &Loop{
		tickers: make(map[string][]*ticker),
		done:    make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Start launches the runner goroutine. Idempotent.
func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started || l.stopped {
		return
	}
	l.started = true
	go l.run()
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if l.stopped {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		task()
	}
}

// Post enqueues a task for a later turn. A task posted from within a running
// task executes after the current task returns, never inside it. Returns
// false once the loop is stopped.
func (l *Loop) Post(task func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return false
	}
	l.queue = append(l.queue, task)
	l.cond.Signal()
	return true
}

// Call posts a task and blocks until it ran. Intended for external
// goroutines bridging into the loop; calling it from a loop task deadlocks.
// Returns ErrStopped if the loop stops before the task runs.
func (l *Loop) Call(task func()) error {
	ran := make(chan struct{})
	if !l.Post(func() {
		task()
		close(ran)
	}) {
		return ErrStopped
	}

	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Stop terminates the loop after the current task, dropping pending tasks
// and all tickers. Blocks until the runner goroutine exits. Idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		started := l.started
		l.mu.Unlock()
		if started {
			<-l.done
		}
		return
	}
	l.stopped = true
	started := l.started
	for owner, ts := range l.tickers {
		for _, t := range ts {
			t.stop()
		}
		delete(l.tickers, owner)
	}
	l.cond.Broadcast()
	l.mu.Unlock()

	if started {
		<-l.done
	} else {
		close(l.done)
	}
}

// Done exposes loop termination to selects
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending returns the number of queued tasks
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Stats returns loop statistics
func (l *Loop) Stats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	owners := 0
	ticks := 0
	for _, ts := range l.tickers {
		owners++
		ticks += len(ts)
	}

	return map[string]interface{}{
		"pending": len(l.queue),
		"owners":  owners,
		"tickers": ticks,
		"stopped": l.stopped,
	}
}
