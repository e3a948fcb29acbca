package session

import (
	"context"

	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
)

// Keystore is the platform-specific seam a biometric slot wraps and
// unwraps through: a hardware-backed key gated by "strong" biometric
// authentication. Real implementations (Android Keystore, Secure
// Enclave, Windows Hello) live outside this module; [NoKeystore] is
// the default so the core builds and runs standalone.
type Keystore interface {
	Wrap(ctx context.Context, secret []byte) (wrapped []byte, err error)
	Unwrap(ctx context.Context, wrapped []byte) (secret []byte, err error)
}

// BiometricSlot is the master key wrapped by a platform keystore key,
// persisted alongside the vault container's salt.
type BiometricSlot struct {
	Wrapped []byte
}

// NoKeystore is a [Keystore] that always reports unavailability. It is
// the controller's default until a real platform adapter is injected.
type NoKeystore struct{}

func (NoKeystore) Wrap(context.Context, []byte) ([]byte, error) {
	return nil, keydroperrors.ErrBiometricUnavailable
}

func (NoKeystore) Unwrap(context.Context, []byte) ([]byte, error) {
	return nil, keydroperrors.ErrBiometricUnavailable
}

// EnableBiometric wraps the current master key with the controller's
// keystore and persists the resulting slot. It requires the session to
// already be unlocked.
func (c *Controller) EnableBiometric(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnlocked {
		return keydroperrors.ErrLocked
	}

	wrapped, err := c.keystore.Wrap(ctx, c.masterKey)
	if err != nil {
		return err
	}

	return c.store.SaveBiometricSlot(ctx, &BiometricSlot{Wrapped: wrapped})
}

// DisableBiometric discards any persisted biometric slot.
func (c *Controller) DisableBiometric(ctx context.Context) error {
	return c.store.ClearBiometricSlot(ctx)
}

// UnlockWithBiometric retrieves the wrapped master key, unwraps it via
// the platform keystore, and resumes as if [Controller.Unlock] had
// completed with the original password. If the platform has
// invalidated the keystore key (e.g. biometric re-enrollment), the
// slot is discarded and [keydroperrors.ErrBiometricUnavailable] is
// returned so the caller falls back to a password unlock.
func (c *Controller) UnlockWithBiometric(ctx context.Context) error {
	slot, err := c.store.LoadBiometricSlot(ctx)
	if err != nil {
		return err
	}

	masterKey, err := c.keystore.Unwrap(ctx, slot.Wrapped)
	if err != nil {
		_ = c.store.ClearBiometricSlot(ctx)
		return keydroperrors.ErrBiometricUnavailable
	}

	container, err := c.store.LoadContainer(ctx)
	if err != nil {
		return err
	}

	return c.unlockWithMasterKey(ctx, container, masterKey)
}
