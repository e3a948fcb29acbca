package cryptocore

import (
	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
)

// NonceSize is the length, in bytes, of an envelope's nonce.
const NonceSize = 12

// TagSize is the length, in bytes, of the AEAD authentication tag
// appended to every envelope's ciphertext.
const TagSize = 16

// ErrInvalidCiphertext is returned whenever an envelope fails to
// authenticate: wrong key, wrong associated data, truncation, or a
// replay against the wrong version. Callers must not distinguish this
// from a wrong password in user-visible text.
var ErrInvalidCiphertext = keydroperrors.ErrInvalidCiphertext

// Envelope is the (nonce, ciphertext‖tag) tuple produced by [Encrypt].
type Envelope struct {
	Nonce      []byte
	Ciphertext []byte // includes the trailing AEAD tag
}

// Encrypt draws a fresh random nonce and seals plaintext under key,
// authenticating ad. A fresh envelope is always produced: callers must
// never attempt to patch an existing envelope's ciphertext in place.
func Encrypt(plaintext, key, ad []byte) (*Envelope, error) {
	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, err := RandBytes(aead.NonceSize())
	if err != nil {
		return nil, err
	}

	ciphertext, err := aead.Seal(nonce, plaintext, ad)
	if err != nil {
		return nil, err
	}

	return &Envelope{Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Decrypt opens env under key, authenticating ad. Any authentication
// failure collapses to [ErrInvalidCiphertext]; the underlying AEAD
// error is never surfaced, to avoid a corrupted-data vs. wrong-key
// oracle.
func Decrypt(env *Envelope, key, ad []byte) ([]byte, error) {
	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(env.Nonce, env.Ciphertext, ad)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	return plaintext, nil
}

// Marshal serializes an envelope as nonce‖ciphertext (ciphertext
// already includes the tag).
func (e *Envelope) Marshal() []byte {
	out := make([]byte, 0, len(e.Nonce)+len(e.Ciphertext))
	out = append(out, e.Nonce...)
	out = append(out, e.Ciphertext...)

	return out
}

// UnmarshalEnvelope parses the nonce‖ciphertext encoding produced by
// [Envelope.Marshal].
func UnmarshalEnvelope(b []byte) (*Envelope, error) {
	if len(b) < NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}

	return &Envelope{
		Nonce:      b[:NonceSize],
		Ciphertext: b[NonceSize:],
	}, nil
}
