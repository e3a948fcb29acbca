package sync_test

import (
	"context"

	"github.com/minsu-steven-kim/keydrop2/session"
)

// fakeStore is a minimal in-memory [session.Store] for this package's
// tests; keydropstore provides the real SQLite-backed implementation.
type fakeStore struct {
	container *session.Container
	biometric *session.BiometricSlot
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (s *fakeStore) LoadContainer(context.Context) (*session.Container, error) {
	if s.container == nil {
		return nil, session.ErrNoContainer
	}

	return s.container, nil
}

func (s *fakeStore) SaveContainer(_ context.Context, c *session.Container) error {
	s.container = c
	return nil
}

func (s *fakeStore) LoadBiometricSlot(context.Context) (*session.BiometricSlot, error) {
	if s.biometric == nil {
		return nil, session.ErrNoContainer
	}

	return s.biometric, nil
}

func (s *fakeStore) SaveBiometricSlot(_ context.Context, slot *session.BiometricSlot) error {
	s.biometric = slot
	return nil
}

func (s *fakeStore) ClearBiometricSlot(context.Context) error {
	s.biometric = nil
	return nil
}

func (s *fakeStore) Wipe(context.Context) error {
	s.container = nil
	s.biometric = nil

	return nil
}
