// Package scheduler runs three independent periodic cadences: the
// auto-lock probe, the sync poll, and the remote command poll. Each
// runs on its own ticker so a slow sync poll never delays the
// auto-lock probe's responsiveness.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultAutoLockInterval is the auto-lock probe granularity.
const DefaultAutoLockInterval = 10 * time.Second

// DefaultSyncInterval is the sync poll cadence.
const DefaultSyncInterval = 30 * time.Second

// DefaultCommandInterval is the remote command poll cadence.
const DefaultCommandInterval = 30 * time.Second

// Scheduler owns the three background cadences for one unlocked
// session, each on its own ticker. All three share one done channel,
// so Stop ends them together.
type Scheduler struct {
	autoLockInterval time.Duration
	syncInterval     time.Duration
	commandInterval  time.Duration

	autoLockProbe func(now time.Time)
	syncFn        func(ctx context.Context) error
	commandFn     func(ctx context.Context) error

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type Opt func(*Scheduler)

func WithAutoLockInterval(d time.Duration) Opt {
	return func(s *Scheduler) { s.autoLockInterval = d }
}

func WithSyncInterval(d time.Duration) Opt {
	return func(s *Scheduler) { s.syncInterval = d }
}

func WithCommandInterval(d time.Duration) Opt {
	return func(s *Scheduler) { s.commandInterval = d }
}

// New returns a Scheduler that calls autoLockProbe, syncFn, and
// commandFn on their respective cadences once [Scheduler.Start] runs.
// Any of syncFn/commandFn may be nil to disable that cadence (a
// client with sync not yet configured still wants auto-lock running).
func New(autoLockProbe func(time.Time), syncFn, commandFn func(ctx context.Context) error, opts ...Opt) *Scheduler {
	s := &Scheduler{
		autoLockInterval: DefaultAutoLockInterval,
		syncInterval:     DefaultSyncInterval,
		commandInterval:  DefaultCommandInterval,
		autoLockProbe:    autoLockProbe,
		syncFn:           syncFn,
		commandFn:        commandFn,
		done:             make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the three cadences as background goroutines. It does
// not block; call [Scheduler.Stop] to end them.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.runAutoLock()
	}()

	if s.syncFn != nil {
		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			s.runCadence(ctx, s.syncInterval, "sync", s.syncFn)
		}()
	}

	if s.commandFn != nil {
		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			s.runCadence(ctx, s.commandInterval, "commands", s.commandFn)
		}()
	}
}

func (s *Scheduler) runAutoLock() {
	ticker := time.NewTicker(s.autoLockInterval)
	defer ticker.Stop()

	for {
		select {
		case t := <-ticker.C:
			s.autoLockProbe(t)
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) runCadence(ctx context.Context, interval time.Duration, name string, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("scheduler: %s cadence error: %v", name, err)
			}
		case <-s.done:
			return
		}
	}
}

// Stop ends all running cadences and waits for their goroutines to
// return. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}
