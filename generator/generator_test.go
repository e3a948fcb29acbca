package generator_test

import (
	"math"
	"strings"
	"testing"

	"github.com/minsu-steven-kim/keydrop2/generator"
)

func TestPasswordLengthAndPolicy(t *testing.T) {
	opts := generator.PasswordOptions{
		Length:    16,
		Lowercase: true,
		Uppercase: true,
		Digits:    true,
		Symbols:   true,
	}

	pw, err := generator.Password(opts)
	if err != nil {
		t.Fatal(err)
	}

	if len(pw) != 16 {
		t.Fatalf("got length %d, want 16", len(pw))
	}
}

func TestPasswordEmptyCharsetIsInvalidPolicy(t *testing.T) {
	opts := generator.PasswordOptions{Length: 16}

	if _, err := generator.Password(opts); err != generator.ErrInvalidPolicy {
		t.Fatalf("got err = %v, want %v", err, generator.ErrInvalidPolicy)
	}
}

func TestPasswordRejectsCategoryWipedOutByExclusion(t *testing.T) {
	opts := generator.PasswordOptions{
		Length:       16,
		Lowercase:    true,
		Digits:       true,
		ExcludeChars: "0123456789",
	}

	if _, err := generator.Password(opts); err != generator.ErrInvalidPolicy {
		t.Fatalf("got err = %v, want %v", err, generator.ErrInvalidPolicy)
	}
}

func TestPasswordRejectsOutOfRangeLength(t *testing.T) {
	for _, n := range []int{0, 7, 257, -1} {
		opts := generator.DefaultPasswordOptions()
		opts.Length = n

		if _, err := generator.Password(opts); err != generator.ErrInvalidPolicy {
			t.Errorf("length %d: got err = %v, want %v", n, err, generator.ErrInvalidPolicy)
		}
	}
}

func TestPasswordExcludesAmbiguousAndCustomChars(t *testing.T) {
	opts := generator.PasswordOptions{
		Length:           64,
		Lowercase:        true,
		Uppercase:        true,
		Digits:           true,
		ExcludeAmbiguous: true,
		ExcludeChars:     "xyz",
	}

	pw, err := generator.Password(opts)
	if err != nil {
		t.Fatal(err)
	}

	for _, bad := range "0Ol1Ixyz" {
		if strings.ContainsRune(pw, bad) {
			t.Fatalf("password %q contains excluded character %q", pw, bad)
		}
	}
}

func TestPasswordGuaranteesEveryEnabledCategory(t *testing.T) {
	opts := generator.PasswordOptions{
		Length:    40,
		Lowercase: true,
		Uppercase: true,
		Digits:    true,
		Symbols:   true,
	}

	for range 50 {
		pw, err := generator.Password(opts)
		if err != nil {
			t.Fatal(err)
		}

		var hasLower, hasUpper, hasDigit, hasSymbol bool

		for _, r := range pw {
			switch {
			case r >= 'a' && r <= 'z':
				hasLower = true
			case r >= 'A' && r <= 'Z':
				hasUpper = true
			case r >= '0' && r <= '9':
				hasDigit = true
			default:
				hasSymbol = true
			}
		}

		if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
			t.Fatalf("password %q missing a required category: lower=%v upper=%v digit=%v symbol=%v",
				pw, hasLower, hasUpper, hasDigit, hasSymbol)
		}
	}
}

func TestPasswordUniformDistribution(t *testing.T) {
	opts := generator.PasswordOptions{
		Length:    64,
		Lowercase: true,
	}

	const samples = 2000

	counts := map[rune]int{}
	total := 0

	for range samples {
		pw, err := generator.Password(opts)
		if err != nil {
			t.Fatal(err)
		}

		for _, r := range pw {
			counts[r]++
			total++
		}
	}

	n := float64(len(counts))
	expected := float64(total) / n
	// Binomial stddev for per-character frequency; generous 4-sigma
	// bound to keep this test non-flaky while still catching a gross
	// modulo bias, which is the actual correctness bug being tested.
	stddev := math.Sqrt(expected * (1 - 1/n))

	for r, c := range counts {
		if math.Abs(float64(c)-expected) > 4*stddev {
			t.Errorf("character %q occurred %d times, expected ~%.1f (4sigma=%.1f)", r, c, expected, 4*stddev)
		}
	}
}

func TestPassphraseWordCountAndSeparator(t *testing.T) {
	opts := generator.PassphraseOptions{WordCount: 5, Separator: "+"}

	p, err := generator.Passphrase(opts)
	if err != nil {
		t.Fatal(err)
	}

	words := strings.Split(p, "+")
	if len(words) != 5 {
		t.Fatalf("got %d words, want 5", len(words))
	}
}

func TestPassphraseRejectsOutOfRangeWordCount(t *testing.T) {
	for _, n := range []int{0, 2, 33} {
		opts := generator.DefaultPassphraseOptions()
		opts.WordCount = n

		if _, err := generator.Passphrase(opts); err != generator.ErrInvalidWordCount {
			t.Errorf("word count %d: got err = %v, want %v", n, err, generator.ErrInvalidWordCount)
		}
	}
}

func TestWordlistMeetsMinimumSize(t *testing.T) {
	if generator.WordlistSize() < 2048 {
		t.Fatalf("wordlist has %d entries, want >= 2048", generator.WordlistSize())
	}
}

func TestEntropyBits(t *testing.T) {
	opts := generator.PasswordOptions{Length: 20, Lowercase: true}
	got := generator.PasswordEntropyBits(opts)
	want := 20 * math.Log2(26)

	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}

	passOpts := generator.PassphraseOptions{WordCount: 4}
	gotP := generator.PassphraseEntropyBits(passOpts)
	wantP := 4 * math.Log2(float64(generator.WordlistSize()))

	if math.Abs(gotP-wantP) > 1e-9 {
		t.Fatalf("got %v, want %v", gotP, wantP)
	}
}

func TestEntropyChangesWithOptions(t *testing.T) {
	a := generator.PasswordEntropyBits(generator.PasswordOptions{Length: 20, Lowercase: true})
	b := generator.PasswordEntropyBits(generator.PasswordOptions{Length: 20, Lowercase: true, Digits: true})

	if a >= b {
		t.Fatalf("expected entropy to increase when enabling an additional category: %v vs %v", a, b)
	}
}
