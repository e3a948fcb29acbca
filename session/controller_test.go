package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/minsu-steven-kim/keydrop2/cryptocore"
	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
	"github.com/minsu-steven-kim/keydrop2/session"
	"github.com/minsu-steven-kim/keydrop2/vault"
)

// fastParams keeps tests quick; production vaults always use
// [cryptocore.DefaultArgon2Params] regardless of this override.
var fastParams = cryptocore.Argon2Params{Memory: 8 * 1024, Time: 1, Parallelism: 1}

func newTestController() *session.Controller {
	return session.New(newFakeStore(), session.WithArgon2Params(fastParams))
}

func TestCreateThenLockThenUnlock(t *testing.T) {
	ctx := context.Background()
	c := newTestController()

	if err := c.Create(ctx, []byte("correct horse battery staple")); err != nil {
		t.Fatal(err)
	}

	if c.State() != session.StateUnlocked {
		t.Fatal("expected unlocked after create")
	}

	c.Lock()

	if c.State() != session.StateLocked {
		t.Fatal("expected locked after lock")
	}

	if err := c.Unlock(ctx, []byte("correct horse battery staple")); err != nil {
		t.Fatal(err)
	}

	if c.State() != session.StateUnlocked {
		t.Fatal("expected unlocked after unlock")
	}
}

func TestUnlockWrongPasswordFails(t *testing.T) {
	ctx := context.Background()
	c := newTestController()

	if err := c.Create(ctx, []byte("correct horse battery staple")); err != nil {
		t.Fatal(err)
	}

	c.Lock()

	if err := c.Unlock(ctx, []byte("wrong")); err != keydroperrors.ErrUnauthorized {
		t.Fatalf("got err = %v, want %v", err, keydroperrors.ErrUnauthorized)
	}

	if c.State() != session.StateLocked {
		t.Fatal("expected to remain locked after failed unlock")
	}
}

func TestCreateTwiceFailsAlreadyExists(t *testing.T) {
	ctx := context.Background()
	c := newTestController()

	if err := c.Create(ctx, []byte("password1")); err != nil {
		t.Fatal(err)
	}

	if err := c.Create(ctx, []byte("password2")); err != keydroperrors.ErrAlreadyExists {
		t.Fatalf("got err = %v, want %v", err, keydroperrors.ErrAlreadyExists)
	}
}

func TestUnlockRealParamsTakesAtLeast80ms(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow real-KDF timing test in short mode")
	}

	ctx := context.Background()
	store := newFakeStore()
	c := session.New(store) // default Argon2 params, no override

	if err := c.Create(ctx, []byte("correct horse battery staple")); err != nil {
		t.Fatal(err)
	}

	c.Lock()

	start := time.Now()

	if err := c.Unlock(ctx, []byte("correct horse battery staple")); err != nil {
		t.Fatal(err)
	}

	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("unlock took %v, want >= 80ms", elapsed)
	}
}

func TestDoRejectedWhileLocked(t *testing.T) {
	c := newTestController()

	err := c.Do(func(*vault.Vault) error { return nil })
	if err != keydroperrors.ErrLocked {
		t.Fatalf("got err = %v, want %v", err, keydroperrors.ErrLocked)
	}
}

func TestAutoLockAfterTimeout(t *testing.T) {
	ctx := context.Background()
	c := session.New(newFakeStore(),
		session.WithArgon2Params(fastParams),
		session.WithAutoLockTimeout(1*time.Second))

	if err := c.Create(ctx, []byte("correct horse battery staple")); err != nil {
		t.Fatal(err)
	}

	c.AutoLockProbe(time.Now().Add(2 * time.Second))

	if c.State() != session.StateLocked {
		t.Fatal("expected auto-lock to have fired")
	}
}

func TestAutoLockDoesNotFireBeforeTimeout(t *testing.T) {
	ctx := context.Background()
	c := session.New(newFakeStore(),
		session.WithArgon2Params(fastParams),
		session.WithAutoLockTimeout(10*time.Second))

	if err := c.Create(ctx, []byte("correct horse battery staple")); err != nil {
		t.Fatal(err)
	}

	c.AutoLockProbe(time.Now().Add(1 * time.Second))

	if c.State() != session.StateUnlocked {
		t.Fatal("auto-lock fired too early")
	}
}
