package jobs

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingTrigger struct{ n atomic.Int32 }

func (c *countingTrigger) Trigger() { c.n.Add(1) }

type countingSweeper struct {
	n   atomic.Int32
	ttl atomic.Int64
}

func (c *countingSweeper) Sweep(ttl time.Duration) int {
	c.n.Add(1)
	c.ttl.Store(int64(ttl))
	return 0
}

func TestStart_RunsBothJobs(t *testing.T) {
	poll := &countingTrigger{}
	sweep := &countingSweeper{}

	s, err := Start(Config{
		PollInterval:  20 * time.Millisecond,
		SweepInterval: 20 * time.Millisecond,
		CartIdleTTL:   time.Hour,
	}, poll, sweep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && (poll.n.Load() < 2 || sweep.n.Load() < 1) {
		time.Sleep(10 * time.Millisecond)
	}

	if poll.n.Load() < 2 {
		t.Errorf("expected repeated polls, got %d", poll.n.Load())
	}
	if sweep.n.Load() < 1 {
		t.Fatal("cart sweep never ran")
	}
	if time.Duration(sweep.ttl.Load()) != time.Hour {
		t.Errorf("sweep got ttl %s", time.Duration(sweep.ttl.Load()))
	}
}

func TestStart_RejectsZeroInterval(t *testing.T) {
	if _, err := Start(Config{SweepInterval: time.Minute}, &countingTrigger{}, &countingSweeper{}); err == nil {
		t.Fatal("expected error for zero poll interval")
	}
}
