package sched

import (
	"sync/atomic"
	"time"
)

// ticker drives one recurring task. The tick goroutine only posts; the task
// body always executes on the loop.
type ticker struct {
	interval time.Duration
	task     func()
	halt     chan struct{}
	halted   atomic.Bool
}

func (t *ticker) stop() {
	if t.halted.CompareAndSwap(false, true) {
		close(t.halt)
	}
}

// Every registers a recurring task under an owner token. Ticks begin one
// interval after registration. The task stops firing once DropOwner is
// called for the token or the loop stops; ticks already posted at that point
// are skipped, not run.
func (l *Loop) Every(owner string, interval time.Duration, task func()) {
	if interval <= 0 || task == nil {
		return
	}

	t := &ticker{
		interval: interval,
		task:     task,
		halt:     make(chan struct{}),
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.tickers[owner] = append(l.tickers[owner], t)
	l.mu.Unlock()

	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()

		for {
			select {
			case <-t.halt:
				return
			case <-l.done:
				return
			case <-tick.C:
				l.Post(func() {
					if t.halted.Load() {
						return
					}
					task()
				})
			}
		}
	}()
}

// DropOwner stops every recurring task registered under the owner token.
// Safe to call for an unknown owner.
func (l *Loop) DropOwner(owner string) {
	l.mu.Lock()
	ts := l.tickers[owner]
	delete(l.tickers, owner)
	l.mu.Unlock()

	for _, t := range ts {
		t.stop()
	}
}
