// Package session implements the client-side session lifecycle:
// locked/unlocked state, auto-lock, and the biometric-wrapped master
// key slot. It composes the KDF, AEAD, and vault packages; it owns no
// persistence of its own beyond what it asks a [Store] to do.
package session

import (
	"context"
	"errors"

	"github.com/minsu-steven-kim/keydrop2/cryptocore"
)

// ErrNoContainer is returned by [Store.LoadContainer] when no vault
// container has been persisted yet.
var ErrNoContainer = errors.New("no vault container")

// Container is the at-rest shape of a vault: everything needed to
// attempt an unlock, plus the encrypted blob itself.
type Container struct {
	SchemaVersion int
	Salt          []byte
	KDFPHC        string
	Envelope      *cryptocore.Envelope
}

// Store is the persistence seam the controller uses to load and save
// the at-rest container and the biometric slot. A concrete
// implementation (SQLite-backed or otherwise) lives outside this
// package; the core itself stays storage-agnostic.
type Store interface {
	LoadContainer(ctx context.Context) (*Container, error)
	SaveContainer(ctx context.Context, c *Container) error

	LoadBiometricSlot(ctx context.Context) (*BiometricSlot, error)
	SaveBiometricSlot(ctx context.Context, s *BiometricSlot) error
	ClearBiometricSlot(ctx context.Context) error

	// Wipe purges every locally persisted artifact: container,
	// biometric slot, and sync/device state, transitioning the store
	// to the equivalent of a never-initialized client.
	Wipe(ctx context.Context) error
}
