package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
	"github.com/minsu-steven-kim/keydrop2/session"
	"github.com/minsu-steven-kim/keydrop2/vault"
)

// DefaultMaxConflictRetries is the recommended number of client-side
// merge-and-retry cycles before a push gives up on a conflicting item.
const DefaultMaxConflictRetries = 3

// DefaultNetworkAttempts is the number of times a single transport
// call is attempted, the first try included, within one sync cycle
// before surfacing
// [keydroperrors.ErrNetworkUnavailable].
const DefaultNetworkAttempts = 3

// DefaultBackoff is the recommended retry schedule between attempts.
var DefaultBackoff = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// MaxBackoff caps any single retry delay.
const MaxBackoff = 60 * time.Second

// Engine drives the pull-merge-push synchronization algorithm against
// a [session.Controller]'s live vault. It holds no reference back from
// the controller; the caller wires an Engine to whichever controller
// it is meant to keep in sync, breaking the controller-engine
// reference cycle a naive design would otherwise create.
type Engine struct {
	controller *session.Controller
	transport  Transport
	deviceID   string

	maxConflictRetries int
	networkAttempts    int
	backoff            []time.Duration
	sleep              func(time.Duration)

	commandLog CommandLogger
}

// CommandLogger persists which remote commands this device has already
// applied, so [Engine.PollCommands] stays idempotent across a process
// restart rather than only within one run's in-memory state.
// [keydropstore.Store] implements this.
type CommandLogger interface {
	WasAcknowledged(ctx context.Context, id string) (success bool, ok bool, err error)
	RecordCommandAck(ctx context.Context, id string, commandType string, success bool) error
}

type EngineOpt func(*Engine)

func WithMaxConflictRetries(k int) EngineOpt {
	return func(e *Engine) { e.maxConflictRetries = k }
}

func WithNetworkAttempts(n int) EngineOpt {
	return func(e *Engine) { e.networkAttempts = n }
}

func WithBackoff(schedule []time.Duration) EngineOpt {
	return func(e *Engine) { e.backoff = schedule }
}

// WithSleeper overrides the delay function used between retries; tests
// inject a no-op to exercise retry-exhaustion paths without actually
// waiting out the backoff schedule.
func WithSleeper(sleep func(time.Duration)) EngineOpt {
	return func(e *Engine) { e.sleep = sleep }
}

// WithCommandLog gives the engine a durable record of which remote
// commands this device already applied. Without it, [Engine.PollCommands]
// still acknowledges every command it sees, but idempotence against a
// redelivered command only holds within the current process.
func WithCommandLog(log CommandLogger) EngineOpt {
	return func(e *Engine) { e.commandLog = log }
}

// NewEngine returns an Engine that syncs controller's vault through
// transport, tagging every pushed record with deviceID.
func NewEngine(controller *session.Controller, transport Transport, deviceID string, opts ...EngineOpt) *Engine {
	e := &Engine{
		controller:         controller,
		transport:          transport,
		deviceID:           deviceID,
		maxConflictRetries: DefaultMaxConflictRetries,
		networkAttempts:    DefaultNetworkAttempts,
		backoff:            DefaultBackoff,
		sleep:              time.Sleep,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Sync runs one full pull-merge-push cycle. It requires the session
// to be unlocked.
func (e *Engine) Sync(ctx context.Context) error {
	vaultKey := e.controller.VaultKey()
	if vaultKey == nil {
		return keydroperrors.ErrLocked
	}

	since, err := e.readLastSyncVersion()
	if err != nil {
		return err
	}

	records, currentVersion, err := e.pullAll(ctx, since)
	if err != nil {
		return err
	}

	if currentVersion < since {
		currentVersion = since
	}

	if err := e.controller.Do(func(v *vault.Vault) error {
		return e.applyPulled(v, records, vaultKey)
	}); err != nil {
		return err
	}

	syncErr := e.pushLoop(ctx, vaultKey, currentVersion)

	if persistErr := e.controller.Persist(ctx); persistErr != nil && syncErr == nil {
		return persistErr
	}

	return syncErr
}

func (e *Engine) readLastSyncVersion() (int64, error) {
	var since int64

	err := e.controller.Do(func(v *vault.Vault) error {
		if v.LastSync != nil {
			since = *v.LastSync
		}

		return nil
	})

	return since, err
}

// pullAll issues pull(since_version) repeatedly, advancing the cursor
// to the last returned record's version each page, until has_more is
// false.
func (e *Engine) pullAll(ctx context.Context, since int64) ([]Record, int64, error) {
	cursor := since

	var (
		all     []Record
		current int64
	)

	for {
		result, err := retry(ctx, e.networkAttempts, e.backoff, e.sleep, func() (PullResult, error) {
			return e.transport.Pull(ctx, cursor)
		})
		if err != nil {
			return nil, 0, wrapTransient(err)
		}

		all = append(all, result.Items...)
		current = result.CurrentVersion

		if len(result.Items) > 0 {
			cursor = result.Items[len(result.Items)-1].Version
		}

		if !result.HasMore {
			break
		}
	}

	return all, current, nil
}

// applyPulled implements step 2 of the algorithm: insert absent items,
// overwrite items the local side has not touched since the last sync,
// and conflict-merge items both sides have changed.
func (e *Engine) applyPulled(v *vault.Vault, records []Record, vaultKey []byte) error {
	for _, rec := range records {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			continue
		}

		remote, err := decryptItem(rec, id, vaultKey)
		if err != nil {
			return err
		}

		local, exists := v.Get(id)

		switch {
		case !exists, !local.PendingSync:
			v.Upsert(remote)
		default:
			v.Upsert(mergeItems(local, remote))
		}
	}

	return nil
}

// pushLoop implements steps 3-5: push the current pending batch, and
// on partial conflicts, merge and requeue, up to maxConflictRetries
// cycles before surfacing [keydroperrors.ErrSyncConflictUnresolved].
func (e *Engine) pushLoop(ctx context.Context, vaultKey []byte, baseVersion int64) error {
	lastSyncVersion := baseVersion

	for cycle := 0; cycle <= e.maxConflictRetries; cycle++ {
		var pending []vault.Item

		if err := e.controller.Do(func(v *vault.Vault) error {
			pending = v.PendingSync()
			return nil
		}); err != nil {
			return err
		}

		if len(pending) == 0 {
			return e.controller.Do(func(v *vault.Vault) error {
				v.LastSync = &lastSyncVersion
				return nil
			})
		}

		items := make([]Record, 0, len(pending))

		for _, it := range pending {
			rec, err := encryptItem(it, vaultKey, e.deviceID)
			if err != nil {
				return err
			}

			items = append(items, rec)
		}

		result, err := retry(ctx, e.networkAttempts, e.backoff, e.sleep, func() (PushResult, error) {
			return e.transport.Push(ctx, PushRequest{BaseVersion: lastSyncVersion, Items: items})
		})
		if err != nil {
			// pending_sync and sync_version are untouched: a cancelled or
			// failed push must leave no partial state.
			return wrapTransient(err)
		}

		lastSyncVersion = result.NewVersion

		conflictByID := make(map[string]Record, len(result.Conflicts))
		for _, c := range result.Conflicts {
			conflictByID[c.ID] = c
		}

		if err := e.controller.Do(func(v *vault.Vault) error {
			for _, it := range pending {
				conflict, isConflict := conflictByID[it.ID.String()]
				if !isConflict {
					it.SyncVersion = lastSyncVersion
					it.PendingSync = false
					v.Upsert(it)

					continue
				}

				remote, err := decryptItem(conflict, it.ID, vaultKey)
				if err != nil {
					return err
				}

				v.Upsert(mergeItems(it, remote))
			}

			v.LastSync = &lastSyncVersion

			return nil
		}); err != nil {
			return err
		}

		if len(result.Conflicts) == 0 {
			return nil
		}
	}

	return keydroperrors.ErrSyncConflictUnresolved
}

// retry calls fn up to attempts times, sleeping the configured backoff
// between failures. It checks ctx before every attempt and returns the
// context's error once ctx is done; a backoff sleep already under way
// is not cut short.
func retry[T any](ctx context.Context, attempts int, backoff []time.Duration, sleep func(time.Duration), fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if attempt == attempts-1 {
			break
		}

		delay := lastBackoff(backoff, attempt)
		sleep(delay)
	}

	return zero, lastErr
}

func lastBackoff(schedule []time.Duration, attempt int) time.Duration {
	if len(schedule) == 0 {
		return 0
	}

	idx := attempt
	if idx >= len(schedule) {
		idx = len(schedule) - 1
	}

	d := schedule[idx]
	if d > MaxBackoff {
		d = MaxBackoff
	}

	return d
}

// wrapTransient distinguishes a caller-initiated cancellation (which
// must propagate as-is) from a genuine transport failure (which
// surfaces as the stable [keydroperrors.ErrNetworkUnavailable]).
func wrapTransient(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %v", keydroperrors.ErrNetworkUnavailable, err)
}
