// Package sync implements the client-side sync engine: pull, push,
// field-level last-write-wins conflict merge, and remote command
// intake. It never sees the vault key or plaintext items except as
// handed to it by the session controller; the records it exchanges
// with a [Transport] are always pre-encrypted envelopes.
package sync

import (
	"context"
	"time"
)

// Record is a single versioned item as the server stores and returns
// it. EncryptedBlob is the marshaled form of a
// [github.com/minsu-steven-kim/keydrop2/cryptocore.Envelope]
// that decrypts, under the vault key and AD = id‖version, to a JSON
// serialization of the item sans sync/tombstone metadata.
type Record struct {
	ID            string
	Version       int64
	EncryptedBlob []byte
	IsDeleted     bool
	ModifiedAt    int64

	// OriginDevice identifies the device that produced this revision.
	// It rides alongside the encrypted payload, never inside it; the
	// server needs it for nothing, but the client's conflict merge uses
	// it as the final tie-break.
	OriginDevice string
}

// PullResult is the server's answer to a pull request.
type PullResult struct {
	CurrentVersion int64
	Items          []Record
	HasMore        bool
}

// PushRequest is the client's batch of locally changed records, keyed
// to the version the client last synced from.
type PushRequest struct {
	BaseVersion int64
	Items       []Record
}

// PushResult is the server's answer to a push request. Conflicts holds
// the server's current copy of every record that could not be
// integrated because the client's BaseVersion was stale for it.
type PushResult struct {
	NewVersion   int64
	HadConflicts bool
	Conflicts    []Record
}

// CommandType enumerates the remote commands a server may deliver.
type CommandType string

const (
	CommandLock CommandType = "lock"
	CommandWipe CommandType = "wipe"
)

// Command is a single remote instruction awaiting acknowledgement.
type Command struct {
	ID        string
	Type      CommandType
	CreatedAt int64
}

// Transport is the zero-knowledge server's client-facing API. A
// concrete implementation authenticates with the auth subkey-derived
// bearer token and never has access to plaintext; that property is
// structural here because Transport never takes a vault key or
// plaintext item, only pre-built [Record]s.
//
// All four methods are suspension points and must respect ctx
// cancellation; a cancelled Push must leave no partial effect on the
// caller's pending_sync bookkeeping, which [Engine] guarantees by only
// committing local state after a successful round-trip.
type Transport interface {
	Pull(ctx context.Context, sinceVersion int64) (PullResult, error)
	Push(ctx context.Context, req PushRequest) (PushResult, error)
	GetCommands(ctx context.Context) ([]Command, error)
	AcknowledgeCommand(ctx context.Context, id string, success bool) error
}

// DefaultNetworkTimeout is the recommended per-call timeout for
// Transport methods.
const DefaultNetworkTimeout = 30 * time.Second
