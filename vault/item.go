// Package vault holds the in-memory vault data model: items,
// tombstones, search, URL matching, and plaintext import/export. It
// performs no cryptography and no I/O; the session controller decrypts
// a blob into a [Vault] and re-encrypts it, and the sync engine
// persists and reconciles individual items.
package vault

import (
	"strings"

	"github.com/google/uuid"

	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
)

// Field name constants for the item's individually mergeable fields,
// used as keys into [Item.FieldModifiedAt] and passed to conflict
// merge so it can compare the right timestamp per field.
const (
	FieldName     = "name"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldURL      = "url"
	FieldNotes    = "notes"
	FieldCategory = "category"
	FieldFavorite = "favorite"
)

// MergeableFields lists every field conflict merge resolves
// independently.
var MergeableFields = []string{FieldName, FieldUsername, FieldPassword, FieldURL, FieldNotes, FieldCategory, FieldFavorite}

// Item is a single vault entry. ID is immutable once assigned.
type Item struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Password string    `json:"password"`
	URL      string    `json:"url,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Category string    `json:"category,omitempty"`
	Favorite bool      `json:"favorite"`

	CreatedAt  int64 `json:"created_at"`
	ModifiedAt int64 `json:"modified_at"`

	// FieldModifiedAt holds the last-modified timestamp of each entry
	// in [MergeableFields] individually, so conflict merge can take
	// each field from whichever side touched it most recently instead
	// of picking one side's entire record. A field absent from the map
	// (e.g. an item synced before this tracking existed) falls back to
	// the record's own modified_at; see [Item.FieldTimestamp].
	FieldModifiedAt map[string]int64 `json:"field_modified_at,omitempty"`

	SyncVersion int64 `json:"sync_version"`
	IsDeleted   bool  `json:"is_deleted"`
	PendingSync bool  `json:"pending_sync"`

	// OriginDevice is the id of the device that produced this revision
	// of the item. It is set by the sync engine, not by [Vault] local
	// mutations, and is used only to break ties in conflict merge when
	// a field's modified_at and the record's sync_version are equal.
	OriginDevice string `json:"origin_device,omitempty"`
}

// FieldTimestamp returns the last-modified time of field, falling back
// to the item's overall modified_at if the field has no tracked
// timestamp of its own.
func (it Item) FieldTimestamp(field string) int64 {
	if ts, ok := it.FieldModifiedAt[field]; ok && ts != 0 {
		return ts
	}

	return it.ModifiedAt
}

// touchAllFields sets every field in MergeableFields to ts in a
// freshly allocated map, for an item whose fields are all "new" as of
// ts (a just-created item).
func touchAllFields(ts int64) map[string]int64 {
	m := make(map[string]int64, len(MergeableFields))
	for _, f := range MergeableFields {
		m[f] = ts
	}

	return m
}

// fieldTimestampsAfterEdit builds the field_modified_at map for updated,
// an in-place edit of before: a field whose value changed is stamped
// with ts, and every other field carries forward its prior timestamp
// (falling back to before's own modified_at if it was never tracked).
func fieldTimestampsAfterEdit(before, updated Item, ts int64) map[string]int64 {
	m := make(map[string]int64, len(MergeableFields))

	changed := map[string]bool{
		FieldName:     before.Name != updated.Name,
		FieldUsername: before.Username != updated.Username,
		FieldPassword: before.Password != updated.Password,
		FieldURL:      before.URL != updated.URL,
		FieldNotes:    before.Notes != updated.Notes,
		FieldCategory: before.Category != updated.Category,
		FieldFavorite: before.Favorite != updated.Favorite,
	}

	for _, f := range MergeableFields {
		if changed[f] {
			m[f] = ts
		} else {
			m[f] = before.FieldTimestamp(f)
		}
	}

	return m
}

// validate enforces the required-field invariants for an item about to
// be added or updated; id uniqueness and tombstone stickiness are
// enforced by [Vault], not here.
func (it *Item) validate() error {
	if len(it.Name) == 0 || len(it.Username) == 0 || len(it.Password) == 0 {
		return keydroperrors.ErrInvalidPolicy
	}

	return nil
}

// MatchesQuery reports whether query case-insensitively matches this
// item's name, username, or URL.
func (it *Item) MatchesQuery(query string) bool {
	q := strings.ToLower(query)

	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Username), q) ||
		strings.Contains(strings.ToLower(it.URL), q)
}
