// Package keydroperrors defines the stable, test-facing error
// vocabulary shared by every package in this module.
package keydroperrors

import "errors"

var (
	// ErrAlreadyExists is returned by create when a vault already exists
	// at the target location.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized covers both a wrong master password and a
	// corrupted or tampered ciphertext; the two are never distinguished
	// in caller-visible text, to avoid a decryption oracle.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCiphertext is the crypto-layer authentication failure;
	// it surfaces to the vault caller as [ErrUnauthorized].
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrInvalidPolicy covers a malformed generator policy or other
	// validation failure recoverable by the caller.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrGone is returned when a write targets an item whose tombstone
	// is already set.
	ErrGone = errors.New("gone")

	// ErrSyncConflictUnresolved is returned when conflict merge does not
	// converge within the retry budget.
	ErrSyncConflictUnresolved = errors.New("sync conflict unresolved")

	// ErrNetworkUnavailable covers a transient transport failure after
	// retries are exhausted.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrCommandUnknown names a remote command whose type is not
	// recognized. The sync engine does not return it: it logs such a
	// command and acknowledges it with success=false.
	ErrCommandUnknown = errors.New("command unknown")

	// ErrStorageError covers a transient local persistence failure.
	ErrStorageError = errors.New("storage error")

	// ErrBiometricUnavailable is returned when no platform keystore is
	// configured or the platform has invalidated the keystore key.
	ErrBiometricUnavailable = errors.New("biometric unavailable")

	// ErrLocked is returned by any vault operation attempted while the
	// session is locked.
	ErrLocked = errors.New("vault is locked")
)
