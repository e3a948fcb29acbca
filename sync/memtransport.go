package sync

import (
	"context"
	"sort"
	"sync"
)

// safeMap is a mutex-guarded generic map, reused from the daemon's
// session registry idiom: concurrent store/load/delete/Range with no
// per-call allocation of a new lock.
type safeMap[K comparable, V any] struct {
	data map[K]V
	mu   sync.RWMutex
}

func newSafeMap[K comparable, V any]() *safeMap[K, V] {
	return &safeMap[K, V]{data: make(map[K]V)}
}

func (m *safeMap[K, V]) store(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
}

//nolint:ireturn
func (m *safeMap[K, V]) load(key K) (value V, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok = m.data[key]

	return
}

func (m *safeMap[K, V]) delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
}

// Range iterates over all key-value pairs in the map and calls f for
// each. Iteration stops if f returns false. The map is write locked
// for the duration of the iteration.
func (m *safeMap[K, V]) Range(f func(K, V) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range m.data {
		if !f(k, v) {
			break
		}
	}
}

// MemTransport is an in-memory reference [Transport] modeling a single
// zero-knowledge server account: one monotonically increasing
// current_version and a set of versioned records. It is meant for
// tests and local multi-device simulation, not production use; one
// instance is one account, shared by every simulated device's [Engine]
// in a test.
type MemTransport struct {
	mu             sync.Mutex
	currentVersion int64

	records  *safeMap[string, Record]
	commands *safeMap[string, Command]
	acked    *safeMap[string, bool]
}

// NewMemTransport returns an empty account at version 0.
func NewMemTransport() *MemTransport {
	return &MemTransport{
		records:  newSafeMap[string, Record](),
		commands: newSafeMap[string, Command](),
		acked:    newSafeMap[string, bool](),
	}
}

func (t *MemTransport) Pull(ctx context.Context, sinceVersion int64) (PullResult, error) {
	if err := ctx.Err(); err != nil {
		return PullResult{}, err
	}

	t.mu.Lock()
	cur := t.currentVersion
	t.mu.Unlock()

	var items []Record

	t.records.Range(func(_ string, r Record) bool {
		if r.Version > sinceVersion && r.Version <= cur {
			items = append(items, r)
		}

		return true
	})

	sort.Slice(items, func(i, j int) bool { return items[i].Version < items[j].Version })

	return PullResult{CurrentVersion: cur, Items: items, HasMore: false}, nil
}

// Push integrates every item whose pre-push Version is not older than
// the server's stored version for that id; items that lose this check
// are returned as conflicts and left untouched server-side. Every
// integrated item in the batch receives the same new_version, per spec
// section 4.6 ("the server assigns a fresh new_version... after
// integrating non-conflicting records").
func (t *MemTransport) Push(ctx context.Context, req PushRequest) (PushResult, error) {
	if err := ctx.Err(); err != nil {
		return PushResult{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var conflicts []Record

	toIntegrate := make([]Record, 0, len(req.Items))

	for _, item := range req.Items {
		if stored, ok := t.records.load(item.ID); ok && stored.Version > item.Version {
			conflicts = append(conflicts, stored)
			continue
		}

		toIntegrate = append(toIntegrate, item)
	}

	if len(toIntegrate) == 0 {
		return PushResult{
			NewVersion:   t.currentVersion,
			HadConflicts: len(conflicts) > 0,
			Conflicts:    conflicts,
		}, nil
	}

	t.currentVersion++
	newVersion := t.currentVersion

	for _, item := range toIntegrate {
		item.Version = newVersion
		t.records.store(item.ID, item)
	}

	return PushResult{
		NewVersion:   newVersion,
		HadConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
	}, nil
}

func (t *MemTransport) GetCommands(ctx context.Context) ([]Command, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Command

	t.commands.Range(func(_ string, c Command) bool {
		out = append(out, c)
		return true
	})

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })

	return out, nil
}

// AcknowledgeCommand records the ack and removes the command from the
// pending queue. A real server would still tolerate a redelivered
// command after this call; this reference keeps the ack record around
// so a test can assert idempotent handling by acknowledging the same
// id twice without error.
func (t *MemTransport) AcknowledgeCommand(ctx context.Context, id string, success bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.acked.store(id, success)
	t.commands.delete(id)

	return nil
}

// EnqueueCommand injects a command for a simulated client to pick up
// on its next GetCommands poll. Test-only helper.
func (t *MemTransport) EnqueueCommand(cmd Command) {
	t.commands.store(cmd.ID, cmd)
}

// Acked reports whether id has been acknowledged, and with what
// outcome. Test-only helper.
func (t *MemTransport) Acked(id string) (success bool, ok bool) {
	return t.acked.load(id)
}
