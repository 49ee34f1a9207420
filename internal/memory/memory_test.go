package memory

import (
	"testing"
	"time"
)

func testMonitor(limit int64) *Monitor {
	cfg := DefaultConfig()
	cfg.MemoryLimitBytes = limit
	cfg.CheckInterval = 10 * time.Millisecond
	return NewMonitor(cfg)
}

func TestMonitor_PauseAndResume(t *testing.T) {
	m := testMonitor(1000)

	m.update(500)
	if m.IsPaused() {
		t.Fatal("paused at 50% usage")
	}

	m.update(900)
	if !m.IsPaused() {
		t.Fatal("not paused at 90% usage")
	}

	// Between the marks the state holds.
	m.update(800)
	if !m.IsPaused() {
		t.Fatal("resumed above the high water mark")
	}

	released := make(chan bool)
	go func() { released <- m.WaitIfPaused() }()

	select {
	case <-released:
		t.Fatal("WaitIfPaused returned while paused")
	case <-time.After(20 * time.Millisecond):
	}

	m.update(100)
	select {
	case ok := <-released:
		if !ok {
			t.Error("WaitIfPaused = false after recovery, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitIfPaused did not return after recovery")
	}
}

func TestMonitor_StopReleasesWaiters(t *testing.T) {
	m := testMonitor(1000)
	m.update(950)

	released := make(chan bool)
	go func() { released <- m.WaitIfPaused() }()

	m.Stop()
	m.Stop()

	select {
	case ok := <-released:
		if ok {
			t.Error("WaitIfPaused = true after Stop, want false")
		}
	case <-time.After(time.Second):
		t.Fatal("Stop did not release waiter")
	}
}

func TestMonitor_GetStats(t *testing.T) {
	m := testMonitor(2000)
	m.update(500)

	current, limit, usage := m.GetStats()
	if current != 500 || limit != 2000 || usage != 0.25 {
		t.Errorf("GetStats = %d, %d, %v; want 500, 2000, 0.25", current, limit, usage)
	}
}

func TestMonitor_StartStop(t *testing.T) {
	m := testMonitor(1 << 40)
	m.Start()
	time.Sleep(30 * time.Millisecond)
	m.Stop()

	if current, _, _ := m.GetStats(); current == 0 {
		t.Error("monitor never sampled the heap")
	}
	if m.IsPaused() {
		t.Error("paused with a 1 TiB limit")
	}
	if m.WaitIfPaused() {
		t.Error("WaitIfPaused = true on a stopped monitor")
	}
}
