package generator

import "math"

// PasswordEntropyBits returns length * log2(|charset|) for opts,
// or 0 if opts describes an empty charset.
func PasswordEntropyBits(opts PasswordOptions) float64 {
	n := len(opts.charset())
	if n == 0 {
		return 0
	}

	return float64(opts.Length) * math.Log2(float64(n))
}

// PassphraseEntropyBits returns word_count * log2(|wordlist|) for opts.
func PassphraseEntropyBits(opts PassphraseOptions) float64 {
	return float64(opts.WordCount) * math.Log2(float64(len(wordlist)))
}
