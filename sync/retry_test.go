package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
	"github.com/minsu-steven-kim/keydrop2/session"
	"github.com/minsu-steven-kim/keydrop2/sync"
)

// failingTransport always errors; it is used to exercise the retry and
// final-error-surfacing path without a real network.
type failingTransport struct {
	pullCalls int
}

func (f *failingTransport) Pull(context.Context, int64) (sync.PullResult, error) {
	f.pullCalls++
	return sync.PullResult{}, errors.New("connection refused")
}

func (f *failingTransport) Push(context.Context, sync.PushRequest) (sync.PushResult, error) {
	return sync.PushResult{}, errors.New("connection refused")
}

func (f *failingTransport) GetCommands(context.Context) ([]sync.Command, error) {
	return nil, errors.New("connection refused")
}

func (f *failingTransport) AcknowledgeCommand(context.Context, string, bool) error {
	return errors.New("connection refused")
}

func TestSyncExhaustsRetriesAndSurfacesNetworkUnavailable(t *testing.T) {
	ctx := context.Background()

	c := session.New(newFakeStore(), session.WithArgon2Params(fastParams))
	if err := c.Create(ctx, []byte("password")); err != nil {
		t.Fatal(err)
	}

	transport := &failingTransport{}
	engine := sync.NewEngine(c, transport, "device-a",
		sync.WithNetworkAttempts(3),
		sync.WithBackoff(nil),
		sync.WithSleeper(func(time.Duration) {}))

	err := engine.Sync(ctx)
	if !errors.Is(err, keydroperrors.ErrNetworkUnavailable) {
		t.Fatalf("got err = %v, want wrapped %v", err, keydroperrors.ErrNetworkUnavailable)
	}

	if transport.pullCalls != 3 {
		t.Fatalf("got %d pull attempts, want 3 (networkAttempts)", transport.pullCalls)
	}
}

func TestSyncPropagatesCancellationWithoutWrapping(t *testing.T) {
	c := session.New(newFakeStore(), session.WithArgon2Params(fastParams))
	if err := c.Create(context.Background(), []byte("password")); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := sync.NewEngine(c, &failingTransport{}, "device-a", sync.WithSleeper(func(time.Duration) {}))

	err := engine.Sync(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got err = %v, want context.Canceled", err)
	}

	if errors.Is(err, keydroperrors.ErrNetworkUnavailable) {
		t.Fatal("a cancelled sync must not be reported as a network failure")
	}
}
