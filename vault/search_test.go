package vault_test

import (
	"testing"

	"github.com/minsu-steven-kim/keydrop2/vault"
)

func TestFindByURLDomainMatching(t *testing.T) {
	v := vault.New()

	it := validItem("docs")
	it.URL = "https://docs.example.com/path"

	if _, err := v.Add(it); err != nil {
		t.Fatal(err)
	}

	matches := []string{
		"https://example.com",
		"http://www.example.com",
		"example.com",
	}

	for _, q := range matches {
		if got := v.FindByURL(q); len(got) != 1 {
			t.Errorf("query %q: got %d matches, want 1", q, len(got))
		}
	}

	nonMatches := []string{
		"example.org",
		"notexample.com",
	}

	for _, q := range nonMatches {
		if got := v.FindByURL(q); len(got) != 0 {
			t.Errorf("query %q: got %d matches, want 0", q, len(got))
		}
	}
}
