package session

import (
	"context"
	"sync"
	"time"

	"github.com/minsu-steven-kim/keydrop2/cryptocore"
	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
	"github.com/minsu-steven-kim/keydrop2/vault"
)

// State is the controller's lifecycle state.
type State int

const (
	StateLocked State = iota
	StateUnlocked
)

func (s State) String() string {
	if s == StateUnlocked {
		return "unlocked"
	}

	return "locked"
}

// DefaultAutoLockTimeout is the default idle timeout before a session
// re-locks itself.
const DefaultAutoLockTimeout = 300 * time.Second

// saltSize is the length, in bytes, of a newly generated vault salt.
const saltSize = 16

// vaultEnvelopeAD is the associated data bound to the whole-vault
// at-rest envelope: empty for the whole blob, as opposed to id‖version
// for a single synced item.
var vaultEnvelopeAD = []byte{}

// Controller is the single owner of a client's session state. All
// vault access on this client goes through it; the sync engine is
// handed a reference to it rather than holding a back-reference of its
// own, to avoid a "session -> sync engine -> session" reference cycle.
type Controller struct {
	mu sync.Mutex

	state State
	since int64
	last  int64

	autoLockTimeout time.Duration

	store        Store
	keystore     Keystore
	argon2Params *cryptocore.Argon2Params

	vault     *vault.Vault
	masterKey []byte
	subkeys   *cryptocore.Subkeys
	kdfPHC    string
}

type Opt func(*Controller)

// WithAutoLockTimeout overrides [DefaultAutoLockTimeout].
func WithAutoLockTimeout(d time.Duration) Opt {
	return func(c *Controller) { c.autoLockTimeout = d }
}

// WithKeystore overrides the default [NoKeystore].
func WithKeystore(k Keystore) Opt {
	return func(c *Controller) { c.keystore = k }
}

// WithArgon2Params overrides [cryptocore.DefaultArgon2Params] for new
// vaults created by this controller. Existing vaults are always
// unlocked with the parameters recorded in their own PHC string, never
// with this override, so passing a faster profile here is safe for
// tests without affecting production-created vaults opened later.
func WithArgon2Params(p cryptocore.Argon2Params) Opt {
	return func(c *Controller) { c.argon2Params = &p }
}

// New returns a locked [Controller] backed by store.
func New(store Store, opts ...Opt) *Controller {
	c := &Controller{
		state:           StateLocked,
		autoLockTimeout: DefaultAutoLockTimeout,
		store:           store,
		keystore:        NoKeystore{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Create initializes a brand-new vault: it generates a salt, derives
// the key hierarchy, persists an empty encrypted vault, and transitions
// to Unlocked. It fails with [keydroperrors.ErrAlreadyExists] if a
// container is already persisted.
func (c *Controller) Create(ctx context.Context, password []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.store.LoadContainer(ctx); err == nil {
		return keydroperrors.ErrAlreadyExists
	} else if err != ErrNoContainer {
		return err
	}

	salt, err := cryptocore.RandBytes(saltSize)
	if err != nil {
		return err
	}

	kdfOpts := []cryptocore.Argon2idKDFOpt{}
	if c.argon2Params != nil {
		kdfOpts = append(kdfOpts, cryptocore.WithParams(*c.argon2Params))
	}

	kdf := cryptocore.NewArgon2idKDF(kdfOpts...)
	masterKey := kdf.DeriveMasterKey(password, salt)

	subkeys, err := cryptocore.DeriveSubkeys(masterKey)
	if err != nil {
		return err
	}

	v := vault.New()

	if err := c.persist(ctx, v, salt, kdf.PHC(salt).String(), subkeys.VaultKey); err != nil {
		return err
	}

	c.enterUnlocked(v, masterKey, subkeys, kdf.PHC(salt).String())

	return nil
}

// Unlock loads the persisted container, derives the key hierarchy from
// password, and attempts to decrypt the vault blob. Any failure -
// wrong password or corrupted data - surfaces identically as
// [keydroperrors.ErrUnauthorized].
func (c *Controller) Unlock(ctx context.Context, password []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	container, err := c.store.LoadContainer(ctx)
	if err != nil {
		return err
	}

	phc, err := cryptocore.DecodeArgon2idPHC(container.KDFPHC)
	if err != nil {
		return keydroperrors.ErrUnauthorized
	}

	masterKey := cryptocore.KDFFromPHC(phc).DeriveMasterKey(password, container.Salt)

	return c.unlockWithMasterKeyLocked(ctx, container, masterKey)
}

// unlockWithMasterKey acquires the lock and delegates to the locked
// variant; it is the entry point used by biometric unlock, which
// already has a master key and need not re-run the KDF.
func (c *Controller) unlockWithMasterKey(ctx context.Context, container *Container, masterKey []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.unlockWithMasterKeyLocked(ctx, container, masterKey)
}

func (c *Controller) unlockWithMasterKeyLocked(ctx context.Context, container *Container, masterKey []byte) error {
	subkeys, err := cryptocore.DeriveSubkeys(masterKey)
	if err != nil {
		return err
	}

	plaintext, err := cryptocore.Decrypt(container.Envelope, subkeys.VaultKey, vaultEnvelopeAD)
	if err != nil {
		subkeys.Zero()
		cryptocore.Zeroize(masterKey)

		return keydroperrors.ErrUnauthorized
	}

	v, err := decodeVault(plaintext)
	if err != nil {
		subkeys.Zero()
		cryptocore.Zeroize(masterKey)

		return keydroperrors.ErrUnauthorized
	}

	c.enterUnlocked(v, masterKey, subkeys, container.KDFPHC)

	return nil
}

func (c *Controller) enterUnlocked(v *vault.Vault, masterKey []byte, subkeys *cryptocore.Subkeys, kdfPHC string) {
	now := time.Now().Unix()

	c.vault = v
	c.masterKey = masterKey
	c.subkeys = subkeys
	c.kdfPHC = kdfPHC
	c.since = now
	c.last = now
	c.state = StateUnlocked
}

// Lock zeroizes the vault key hierarchy and drops the plaintext vault.
func (c *Controller) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lockLocked()
}

func (c *Controller) lockLocked() {
	if c.subkeys != nil {
		c.subkeys.Zero()
	}

	cryptocore.Zeroize(c.masterKey)

	c.vault = nil
	c.masterKey = nil
	c.subkeys = nil
	c.state = StateLocked
}

// Wipe locks the session and purges every locally persisted artifact
// via the store, transitioning to the equivalent of a never-initialized
// client.
func (c *Controller) Wipe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lockLocked()

	return c.store.Wipe(ctx)
}

// AutoLockProbe locks the session if it has been unlocked and idle for
// longer than the configured timeout. It is meant to be called
// periodically (10s granularity or finer) by a
// [github.com/minsu-steven-kim/keydrop2/scheduler.Scheduler].
func (c *Controller) AutoLockProbe(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnlocked {
		return
	}

	if now.Unix()-c.last > int64(c.autoLockTimeout.Seconds()) {
		c.lockLocked()
	}
}

// LastActivity returns the unix timestamp of the last vault access, or
// zero while locked.
func (c *Controller) LastActivity() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnlocked {
		return 0
	}

	return c.last
}

// VaultKey returns the current vault subkey, or nil while locked. The
// sync engine uses it to encrypt and decrypt individual item envelopes.
func (c *Controller) VaultKey() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnlocked {
		return nil
	}

	return c.subkeys.VaultKey
}

// AuthKey returns the current auth subkey, or nil while locked. A
// transport adapter uses it to authenticate to the server.
func (c *Controller) AuthKey() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnlocked {
		return nil
	}

	return c.subkeys.AuthKey
}

// Do runs fn against the live vault while holding the session's write
// lock, and records this access as activity for the auto-lock timer.
// It returns [keydroperrors.ErrLocked] if the session is locked.
func (c *Controller) Do(fn func(*vault.Vault) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnlocked {
		return keydroperrors.ErrLocked
	}

	c.last = time.Now().Unix()

	return fn(c.vault)
}

// persist re-encrypts v and writes it to the store as a new container.
func (c *Controller) persist(ctx context.Context, v *vault.Vault, salt []byte, kdfPHC string, vaultKey []byte) error {
	plaintext, err := encodeVault(v)
	if err != nil {
		return err
	}

	env, err := cryptocore.Encrypt(plaintext, vaultKey, vaultEnvelopeAD)
	if err != nil {
		return err
	}

	return c.store.SaveContainer(ctx, &Container{
		SchemaVersion: vault.CurrentSchemaVersion,
		Salt:          salt,
		KDFPHC:        kdfPHC,
		Envelope:      env,
	})
}

// Persist re-encrypts the current in-memory vault and writes it back
// to the store under the session's existing salt and KDF parameters.
// Callers invoke this after a batch of mutations (including sync
// reconciliation) to make them durable.
func (c *Controller) Persist(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnlocked {
		return keydroperrors.ErrLocked
	}

	container, err := c.store.LoadContainer(ctx)
	if err != nil {
		return err
	}

	return c.persist(ctx, c.vault, container.Salt, c.kdfPHC, c.subkeys.VaultKey)
}
