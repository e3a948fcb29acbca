// Package generator produces passwords and passphrases for the user
// to adopt as vault item secrets. It shares the secure-RNG discipline
// of the rest of the core but never touches the vault itself.
package generator

import (
	"strings"

	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
)

// ErrInvalidPolicy is returned when the requested options describe an
// empty or otherwise unsatisfiable character set.
var ErrInvalidPolicy = keydroperrors.ErrInvalidPolicy

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "~`!@#$%^&*()_-+={[}]|\\:;\"'<,>.?/"
	ambiguous = "0Ol1I"
)

// PasswordOptions controls [Password]'s character policy.
//
// Defaults: Length 20, all four categories enabled, ExcludeAmbiguous
// false, ExcludeChars empty.
type PasswordOptions struct {
	Length           int
	Lowercase        bool
	Uppercase        bool
	Digits           bool
	Symbols          bool
	ExcludeAmbiguous bool
	ExcludeChars     string
}

// DefaultPasswordOptions returns the recommended default policy.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{
		Length:    20,
		Lowercase: true,
		Uppercase: true,
		Digits:    true,
		Symbols:   true,
	}
}

// category is one enabled character class and the characters it
// contributes to the charset.
type category struct {
	name  string
	chars string
}

// categories returns the enabled categories for opts, each already
// filtered to exclude ambiguous characters and the caller's exclusion
// set, but never deduplicated against each other.
func (opts PasswordOptions) categories() []category {
	var cats []category

	if opts.Lowercase {
		cats = append(cats, category{"lowercase", opts.filter(lowercase)})
	}

	if opts.Uppercase {
		cats = append(cats, category{"uppercase", opts.filter(uppercase)})
	}

	if opts.Digits {
		cats = append(cats, category{"digits", opts.filter(digits)})
	}

	if opts.Symbols {
		cats = append(cats, category{"symbols", opts.filter(symbols)})
	}

	return cats
}

// filter strips ambiguous characters (if requested) and the caller's
// explicit exclusion set from s.
func (opts PasswordOptions) filter(s string) string {
	if opts.ExcludeAmbiguous {
		s = stripAny(s, ambiguous)
	}

	if len(opts.ExcludeChars) > 0 {
		s = stripAny(s, opts.ExcludeChars)
	}

	return s
}

// charset returns the union of all enabled, filtered categories with
// duplicate characters removed.
func (opts PasswordOptions) charset() string {
	var sb strings.Builder

	seen := map[rune]bool{}

	for _, c := range opts.categories() {
		for _, r := range c.chars {
			if !seen[r] {
				seen[r] = true
				sb.WriteRune(r)
			}
		}
	}

	return sb.String()
}

func stripAny(s, cutset string) string {
	var sb strings.Builder

	for _, r := range s {
		if !strings.ContainsRune(cutset, r) {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}
