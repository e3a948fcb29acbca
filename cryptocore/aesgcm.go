package cryptocore

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

var ErrNilAESGCM = errors.New("AESGCM is nil")

// AESGCM wraps a [cipher.AEAD] using AES in GCM mode.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher using the given 32-byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &AESGCM{aead}, nil
}

// Seal encrypts plaintext using the given nonce, authenticating ad
// (associated data) without encrypting it.
func (g *AESGCM) Seal(nonce, plaintext, ad []byte) ([]byte, error) {
	if g == nil {
		return nil, ErrNilAESGCM
	}

	return g.aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts ciphertext using the given nonce and ad, returning the
// underlying AEAD authentication error unwrapped on failure.
func (g *AESGCM) Open(nonce, ciphertext, ad []byte) ([]byte, error) {
	if g == nil {
		return nil, ErrNilAESGCM
	}

	return g.aead.Open(nil, nonce, ciphertext, ad)
}

// NonceSize returns the nonce length the underlying AEAD expects.
func (g *AESGCM) NonceSize() int {
	return g.aead.NonceSize()
}
