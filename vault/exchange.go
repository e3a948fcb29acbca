package vault

// ExportRecord is the plaintext record format emitted by
// [Vault.ExportPlain] and accepted by [Vault.ImportPlain] (spec
// section 6). It carries only user-facing fields; sync/tombstone
// metadata never leaves the vault in plaintext form.
type ExportRecord struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Category string `json:"category,omitempty"`
	Favorite bool   `json:"favorite"`
}

// ExportPlain emits every non-deleted item as an [ExportRecord]. The
// caller is responsible for requiring explicit user confirmation
// before calling this: the result is plaintext secrets.
func (v *Vault) ExportPlain() []ExportRecord {
	items := v.AllNonDeleted()
	out := make([]ExportRecord, 0, len(items))

	for _, it := range items {
		out = append(out, ExportRecord{
			Name:     it.Name,
			Username: it.Username,
			Password: it.Password,
			URL:      it.URL,
			Notes:    it.Notes,
			Category: it.Category,
			Favorite: it.Favorite,
		})
	}

	return out
}

// ImportPlain adds every record as a new item via [Vault.Add], so the
// same required-field validation and I1/I2 bookkeeping apply. It
// returns the items actually added; on the first validation failure it
// stops and returns what succeeded so far along with the error.
func (v *Vault) ImportPlain(records []ExportRecord) ([]Item, error) {
	added := make([]Item, 0, len(records))

	for _, r := range records {
		it, err := v.Add(Item{
			Name:     r.Name,
			Username: r.Username,
			Password: r.Password,
			URL:      r.URL,
			Notes:    r.Notes,
			Category: r.Category,
			Favorite: r.Favorite,
		})
		if err != nil {
			return added, err
		}

		added = append(added, it)
	}

	return added, nil
}
