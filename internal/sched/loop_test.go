package sched

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPostRunsInOrder(t *testing.T) {
	loop := New()
	loop.Start()
	defer loop.Stop()

	var got []int
	done := make(chan struct{})

	for i := 1; i <= 5; i++ {
		n := i
		loop.Post(func() {
			got = append(got, n)
			if n == 5 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not run")
	}

	for i, n := range got {
		if n != i+1 {
			t.Fatalf("tasks ran out of order: %v", got)
		}
	}
}

func TestPostFromTaskRunsInLaterTurn(t *testing.T) {
	loop := New()
	loop.Start()
	defer loop.Stop()

	var firstTurnFinished bool
	result := make(chan bool, 1)

	loop.Post(func() {
		loop.Post(func() {
			// Must observe the posting turn fully completed.
			result <- firstTurnFinished
		})
		firstTurnFinished = true
	})

	select {
	case sawFinished := <-result:
		if !sawFinished {
			t.Error("nested task ran inside the posting task's turn")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("nested task never ran")
	}
}

func TestCallBlocksUntilRun(t *testing.T) {
	loop := New()
	loop.Start()
	defer loop.Stop()

	value := 0
	if err := loop.Call(func() { value = 42 }); err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	if value != 42 {
		t.Errorf("expected 42, got %d", value)
	}
}

func TestCallAfterStopReturnsErr(t *testing.T) {
	loop := New()
	loop.Start()
	loop.Stop()

	if err := loop.Call(func() {}); err != ErrStopped {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestPostAfterStopIsDropped(t *testing.T) {
	loop := New()
	loop.Start()
	loop.Stop()

	if loop.Post(func() { t.Error("task ran after stop") }) {
		t.Error("Post should report false after stop")
	}
}

func TestEveryFiresAndDropOwnerStops(t *testing.T) {
	loop := New()
	loop.Start()
	defer loop.Stop()

	var ticks atomic.Int32
	loop.Every("frm_test", 10*time.Millisecond, func() {
		ticks.Add(1)
	})

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ticks.Load() < 3 {
		t.Fatal("ticker never fired")
	}

	loop.DropOwner("frm_test")
	// Drain any tick already posted before the drop.
	loop.Call(func() {})
	settled := ticks.Load()

	time.Sleep(50 * time.Millisecond)
	if ticks.Load() != settled {
		t.Errorf("ticker fired after DropOwner: %d -> %d", settled, ticks.Load())
	}
}

func TestDropUnknownOwnerIsNoop(t *testing.T) {
	loop := New()
	loop.Start()
	defer loop.Stop()

	loop.DropOwner("frm_missing")
}

func TestStopIsIdempotent(t *testing.T) {
	loop := New()
	loop.Start()
	loop.Stop()
	loop.Stop()
}

func TestStatsShape(t *testing.T) {
	loop := New()
	loop.Start()
	defer loop.Stop()

	loop.Every("frm_a", time.Hour, func() {})
	stats := loop.Stats()

	if stats["owners"].(int) != 1 {
		t.Errorf("expected 1 owner, got %v", stats["owners"])
	}
	if stats["stopped"].(bool) {
		t.Error("loop should not report stopped")
	}
}
