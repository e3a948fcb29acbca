package generator

import (
	"crypto/rand"
	"io"
	"math/big"
)

const (
	MinLength = 8
	MaxLength = 256
)

// Password generates a password satisfying opts using the system CSPRNG.
func Password(opts PasswordOptions) (string, error) {
	return password(opts, rand.Reader)
}

// password is the testable core of [Password]; r is injectable so tests
// can verify determinism under a fixed seed without compromising the
// production path's use of a real CSPRNG.
func password(opts PasswordOptions, r io.Reader) (string, error) {
	if opts.Length < MinLength || opts.Length > MaxLength {
		return "", ErrInvalidPolicy
	}

	cats := opts.categories()
	if len(cats) == 0 {
		return "", ErrInvalidPolicy
	}

	for _, c := range cats {
		if len(c.chars) == 0 {
			// An enabled category with nothing left in it after
			// exclusions can never be satisfied; reject rather than
			// feed an empty charset to uniformRune.
			return "", ErrInvalidPolicy
		}
	}

	charset := opts.charset()
	if len(charset) == 0 {
		return "", ErrInvalidPolicy
	}

	out := make([]byte, opts.Length)

	for i := range out {
		c, err := uniformRune(charset, r)
		if err != nil {
			return "", err
		}

		out[i] = c
	}

	if err := ensureCategories(out, cats, opts.Length, r); err != nil {
		return "", err
	}

	return string(out), nil
}

// uniformRune draws one byte uniformly from charset using rejection
// sampling over r, never biasing via `byte mod n`.
func uniformRune(charset string, r io.Reader) (byte, error) {
	n, err := rand.Int(r, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}

	return charset[n.Int64()], nil
}

// ensureCategories checks that out contains at least one character from
// every enabled category and, if not and length allows it, overwrites
// one random position per missing category before reshuffling the
// whole buffer with Fisher-Yates.
func ensureCategories(out []byte, cats []category, length int, r io.Reader) error {
	if length < len(cats) {
		// Too short to guarantee every category; best-effort uniform
		// sampling already happened, nothing further to enforce.
		return nil
	}

	missing := make([]category, 0, len(cats))

	for _, c := range cats {
		if !containsAny(out, c.chars) {
			missing = append(missing, c)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	positions, err := uniquePositions(len(out), len(missing), r)
	if err != nil {
		return err
	}

	for i, c := range missing {
		ch, err := uniformRune(c.chars, r)
		if err != nil {
			return err
		}

		out[positions[i]] = ch
	}

	return fisherYates(out, r)
}

func containsAny(out []byte, chars string) bool {
	for _, b := range out {
		for _, r := range chars {
			if byte(r) == b {
				return true
			}
		}
	}

	return false
}

// uniquePositions draws k distinct indices in [0,n) without bias.
func uniquePositions(n, k int, r io.Reader) ([]int, error) {
	chosen := map[int]bool{}
	positions := make([]int, 0, k)

	for len(positions) < k {
		idx, err := rand.Int(r, big.NewInt(int64(n)))
		if err != nil {
			return nil, err
		}

		i := int(idx.Int64())
		if !chosen[i] {
			chosen[i] = true
			positions = append(positions, i)
		}
	}

	return positions, nil
}

// fisherYates shuffles bs in place using the Fisher-Yates algorithm
// over a uniform, unbiased r.
//
// https://en.wikipedia.org/wiki/Fisher%E2%80%93Yates_shuffle
func fisherYates(bs []byte, r io.Reader) error {
	for i := len(bs) - 1; i > 0; i-- {
		n, err := rand.Int(r, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}

		j := int(n.Int64())
		bs[i], bs[j] = bs[j], bs[i]
	}

	return nil
}
