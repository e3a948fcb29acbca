package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/minsu-steven-kim/keydrop2/scheduler"
)

func TestSchedulerRunsAllThreeCadences(t *testing.T) {
	var autoLockCalls, syncCalls, commandCalls int32

	s := scheduler.New(
		func(time.Time) { atomic.AddInt32(&autoLockCalls, 1) },
		func(context.Context) error { atomic.AddInt32(&syncCalls, 1); return nil },
		func(context.Context) error { atomic.AddInt32(&commandCalls, 1); return nil },
		scheduler.WithAutoLockInterval(5*time.Millisecond),
		scheduler.WithSyncInterval(5*time.Millisecond),
		scheduler.WithCommandInterval(5*time.Millisecond),
	)

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if atomic.LoadInt32(&autoLockCalls) == 0 {
		t.Fatal("expected auto-lock probe to fire at least once")
	}

	if atomic.LoadInt32(&syncCalls) == 0 {
		t.Fatal("expected sync cadence to fire at least once")
	}

	if atomic.LoadInt32(&commandCalls) == 0 {
		t.Fatal("expected command cadence to fire at least once")
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := scheduler.New(func(time.Time) {}, nil, nil, scheduler.WithAutoLockInterval(5*time.Millisecond))

	s.Start(context.Background())
	s.Stop()
	s.Stop() // must not panic
}

func TestSchedulerNilCadencesAreSkipped(t *testing.T) {
	var autoLockCalls int32

	s := scheduler.New(
		func(time.Time) { atomic.AddInt32(&autoLockCalls, 1) },
		nil,
		nil,
		scheduler.WithAutoLockInterval(5*time.Millisecond),
	)

	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if atomic.LoadInt32(&autoLockCalls) == 0 {
		t.Fatal("expected auto-lock probe to still run when sync/command cadences are nil")
	}
}
