package cryptocore

import (
	"crypto/rand"
	"io"
)

// RandBytes returns a slice of n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}

	return b, nil
}
