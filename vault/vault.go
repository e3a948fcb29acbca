package vault

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
)

// CurrentSchemaVersion is the schema_version written by [New].
const CurrentSchemaVersion = 1

// DefaultCategories seeds every new vault's category set.
var DefaultCategories = []string{"Login", "Credit Card", "Identity", "Secure Note"}

// now is overridable in tests; production callers never touch it.
var now = func() int64 { return time.Now().Unix() }

// Vault is an ordered collection of items plus schema and category
// metadata. It is the plaintext form held in memory between unlock and
// lock; it is never itself persisted or transmitted. Encryption,
// decryption, and disk/network I/O are the session controller's and
// sync engine's job, not this package's.
type Vault struct {
	SchemaVersion int             `json:"schema_version"`
	Items         []Item          `json:"items"`
	Categories    map[string]bool `json:"categories"`
	LastSync      *int64          `json:"last_sync,omitempty"`
}

// New returns an empty vault at the current schema version with the
// default category set.
func New() *Vault {
	cats := make(map[string]bool, len(DefaultCategories))
	for _, c := range DefaultCategories {
		cats[c] = true
	}

	return &Vault{
		SchemaVersion: CurrentSchemaVersion,
		Categories:    cats,
	}
}

// indexOf returns the index of the item with id, or -1.
func (v *Vault) indexOf(id uuid.UUID) int {
	for i := range v.Items {
		if v.Items[i].ID == id {
			return i
		}
	}

	return -1
}

// AddCategory registers a category name even if no item uses it yet.
func (v *Vault) AddCategory(name string) {
	if name == "" {
		return
	}

	v.Categories[name] = true
}

// CategoryNames returns the vault's known category names, sorted.
func (v *Vault) CategoryNames() []string {
	names := make([]string, 0, len(v.Categories))
	for c := range v.Categories {
		names = append(names, c)
	}

	sort.Strings(names)

	return names
}

// Add inserts a new item, generating a fresh UUID v4 id and setting
// created_at = modified_at = now.
func (v *Vault) Add(it Item) (Item, error) {
	if err := it.validate(); err != nil {
		return Item{}, err
	}

	it.ID = uuid.New()
	it.CreatedAt = now()
	it.ModifiedAt = it.CreatedAt
	it.FieldModifiedAt = touchAllFields(it.CreatedAt)
	it.SyncVersion = 0
	it.IsDeleted = false
	it.PendingSync = true

	if it.Category != "" {
		v.Categories[it.Category] = true
	}

	v.Items = append(v.Items, it)

	return it, nil
}

// Update applies mutate to the item identified by id and persists the
// result in place. It rejects writes to a tombstoned item with
// [keydroperrors.ErrGone] (a tombstone never transitions back to
// is_deleted=false) and preserves the item's pre-mutation sync_version
// so the sync engine can still detect a server-side version bump as a
// conflict.
func (v *Vault) Update(id uuid.UUID, mutate func(*Item)) (Item, error) {
	idx := v.indexOf(id)
	if idx < 0 {
		return Item{}, keydroperrors.ErrInvalidPolicy
	}

	if v.Items[idx].IsDeleted {
		return Item{}, keydroperrors.ErrGone
	}

	preVersion := v.Items[idx].SyncVersion
	before := v.Items[idx]

	updated := before
	mutate(&updated)

	if err := updated.validate(); err != nil {
		return Item{}, err
	}

	updated.ID = id
	updated.CreatedAt = before.CreatedAt
	updated.ModifiedAt = now()
	updated.FieldModifiedAt = fieldTimestampsAfterEdit(before, updated, updated.ModifiedAt)
	updated.IsDeleted = false
	updated.PendingSync = true
	updated.SyncVersion = preVersion

	if updated.Category != "" {
		v.Categories[updated.Category] = true
	}

	v.Items[idx] = updated

	return updated, nil
}

// Delete soft-deletes the item identified by id: it is never
// physically removed, only flagged is_deleted=true.
func (v *Vault) Delete(id uuid.UUID) (Item, error) {
	idx := v.indexOf(id)
	if idx < 0 {
		return Item{}, keydroperrors.ErrInvalidPolicy
	}

	it := &v.Items[idx]
	it.IsDeleted = true
	it.ModifiedAt = now()
	it.PendingSync = true

	return *it, nil
}

// Get returns the item identified by id, including tombstones.
func (v *Vault) Get(id uuid.UUID) (Item, bool) {
	idx := v.indexOf(id)
	if idx < 0 {
		return Item{}, false
	}

	return v.Items[idx], true
}

// Upsert inserts it verbatim if absent, or overwrites the existing
// item if present, without touching pending_sync. The sync engine uses
// this to apply pulled or merged records directly, bypassing the
// validation and bookkeeping [Vault.Add]/[Vault.Update] perform for
// local edits.
func (v *Vault) Upsert(it Item) {
	idx := v.indexOf(it.ID)
	if idx < 0 {
		v.Items = append(v.Items, it)
		return
	}

	v.Items[idx] = it
}

// GC removes local tombstones the server has confirmed deleted at a
// version at or above the local tombstone's version.
func (v *Vault) GC(confirmed map[uuid.UUID]int64) {
	kept := v.Items[:0]

	for _, it := range v.Items {
		if it.IsDeleted {
			if confirmedVersion, ok := confirmed[it.ID]; ok && confirmedVersion >= it.SyncVersion {
				continue
			}
		}

		kept = append(kept, it)
	}

	v.Items = kept
}

// Search returns non-deleted items matching query case-insensitively
// against name, username, and url, ordered by name ascending with id
// as a tie-break. Names are compared case-insensitively first, then
// byte-wise. An empty query matches every non-deleted item.
func (v *Vault) Search(query string) []Item {
	var out []Item

	for _, it := range v.Items {
		if it.IsDeleted {
			continue
		}

		if query == "" || it.MatchesQuery(query) {
			out = append(out, it)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if li, lj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name); li != lj {
			return li < lj
		}

		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}

		return out[i].ID.String() < out[j].ID.String()
	})

	return out
}

// AllNonDeleted returns every non-tombstoned item, unsorted.
func (v *Vault) AllNonDeleted() []Item {
	var out []Item

	for _, it := range v.Items {
		if !it.IsDeleted {
			out = append(out, it)
		}
	}

	return out
}

// PendingSync returns items with pending_sync=true; the sync engine
// uses this to build a push batch.
func (v *Vault) PendingSync() []Item {
	var out []Item

	for _, it := range v.Items {
		if it.PendingSync {
			out = append(out, it)
		}
	}

	return out
}
