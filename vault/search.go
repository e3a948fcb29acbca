package vault

import (
	"net/url"
	"strings"
)

// FindByURL returns every non-deleted item whose stored URL domain
// matches candidate's: equal domains, or one a dot-separated suffix of
// the other ("docs.example.com" matches "example.com"). "www." is
// stripped before comparison; scheme and port are ignored.
func (v *Vault) FindByURL(candidate string) []Item {
	target := domain(candidate)
	if target == "" {
		return nil
	}

	var out []Item

	for _, it := range v.Items {
		if it.IsDeleted || it.URL == "" {
			continue
		}

		if d := domain(it.URL); d != "" && domainsMatch(d, target) {
			out = append(out, it)
		}
	}

	return out
}

// domain extracts the host from raw, stripping a leading "www." and
// any port, ignoring scheme. raw may be a bare host or a full URL; if
// raw has no scheme, one is assumed so url.Parse treats it as a host
// rather than a path.
func domain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := u.Hostname()
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")

	return host
}

// domainsMatch reports whether a and b are the same registrable
// domain or one is a dot-separated suffix of the other.
func domainsMatch(a, b string) bool {
	if a == b {
		return true
	}

	return strings.HasSuffix(a, "."+b) || strings.HasSuffix(b, "."+a)
}
