package cryptocore

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purpose-specific HKDF info strings. Distinct contexts guarantee a
// compromise of one subkey does not leak the others.
const (
	vaultKeyInfo   = "keydrop-vault-key"
	authKeyInfo    = "keydrop-auth-key"
	sharingKeyInfo = "keydrop-sharing-key"
)

// SubkeyLen is the length, in bytes, of every derived purpose subkey.
const SubkeyLen = 32

// Subkeys holds the purpose-specific keys derived from a master key.
type Subkeys struct {
	VaultKey   []byte
	AuthKey    []byte
	SharingKey []byte
}

// Zero overwrites every subkey's underlying bytes with zeroes.
func (s *Subkeys) Zero() {
	Zeroize(s.VaultKey)
	Zeroize(s.AuthKey)
	Zeroize(s.SharingKey)
}

// DeriveSubkeys expands a 32-byte master key into the vault, auth, and
// sharing subkeys via HKDF-SHA256 with an empty salt, per spec 4.1.
func DeriveSubkeys(masterKey []byte) (*Subkeys, error) {
	vaultKey, err := expand(masterKey, vaultKeyInfo)
	if err != nil {
		return nil, err
	}

	authKey, err := expand(masterKey, authKeyInfo)
	if err != nil {
		return nil, err
	}

	sharingKey, err := expand(masterKey, sharingKeyInfo)
	if err != nil {
		return nil, err
	}

	return &Subkeys{
		VaultKey:   vaultKey,
		AuthKey:    authKey,
		SharingKey: sharingKey,
	}, nil
}

func expand(masterKey []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, masterKey, nil, []byte(info))

	out := make([]byte, SubkeyLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}

	return out, nil
}

// Zeroize overwrites b's contents with zero bytes in place. It is a
// best-effort hygiene measure: Go's garbage collector may have already
// copied the backing array elsewhere, but this bounds the window a
// secret spends intact in the buffer the caller controls.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
