package sync

import (
	"testing"

	"github.com/google/uuid"

	"github.com/minsu-steven-kim/keydrop2/vault"
)

func baseItem(id uuid.UUID) vault.Item {
	return vault.Item{
		ID:         id,
		Name:       "local",
		Username:   "user",
		Password:   "pw",
		CreatedAt:  100,
		ModifiedAt: 100,
	}
}

func TestMergeItemsLaterModifiedAtWins(t *testing.T) {
	id := uuid.New()

	local := baseItem(id)
	local.Name = "local-name"
	local.ModifiedAt = 200
	local.SyncVersion = 1

	remote := baseItem(id)
	remote.Name = "remote-name"
	remote.ModifiedAt = 150
	remote.SyncVersion = 2

	merged := mergeItems(local, remote)

	if merged.Name != "local-name" {
		t.Fatalf("got name %q, want local-name (newer modified_at wins)", merged.Name)
	}

	if !merged.PendingSync {
		t.Fatal("merged item must be marked pending_sync")
	}

	if merged.SyncVersion != remote.SyncVersion {
		t.Fatalf("got sync_version %d, want remote's confirmed version %d", merged.SyncVersion, remote.SyncVersion)
	}
}

func TestMergeItemsTieBrokenBySyncVersion(t *testing.T) {
	id := uuid.New()

	local := baseItem(id)
	local.Name = "local-name"
	local.ModifiedAt = 100
	local.SyncVersion = 5

	remote := baseItem(id)
	remote.Name = "remote-name"
	remote.ModifiedAt = 100
	remote.SyncVersion = 3

	merged := mergeItems(local, remote)

	if merged.Name != "local-name" {
		t.Fatalf("got name %q, want local-name (higher sync_version wins on modified_at tie)", merged.Name)
	}
}

func TestMergeItemsTieBrokenByOriginDevice(t *testing.T) {
	id := uuid.New()

	local := baseItem(id)
	local.Name = "local-name"
	local.ModifiedAt = 100
	local.SyncVersion = 5
	local.OriginDevice = "aaa"

	remote := baseItem(id)
	remote.Name = "remote-name"
	remote.ModifiedAt = 100
	remote.SyncVersion = 5
	remote.OriginDevice = "zzz"

	merged := mergeItems(local, remote)

	if merged.Name != "remote-name" {
		t.Fatalf("got name %q, want remote-name (lexicographically greater device id wins)", merged.Name)
	}
}

func TestMergeItemsCreatedAtPreservedFromEarliest(t *testing.T) {
	id := uuid.New()

	local := baseItem(id)
	local.CreatedAt = 500
	local.ModifiedAt = 600

	remote := baseItem(id)
	remote.CreatedAt = 100
	remote.ModifiedAt = 200

	merged := mergeItems(local, remote)

	if merged.CreatedAt != 100 {
		t.Fatalf("got created_at %d, want 100 (earliest)", merged.CreatedAt)
	}
}

func TestMergeItemsTombstoneStickyWhenNotOlder(t *testing.T) {
	id := uuid.New()

	deleted := baseItem(id)
	deleted.IsDeleted = true
	deleted.ModifiedAt = 200

	updated := baseItem(id)
	updated.Name = "still-here"
	updated.ModifiedAt = 100

	if merged := mergeItems(deleted, updated); !merged.IsDeleted {
		t.Fatal("deletion at a later modified_at must win over an older update")
	}

	if merged := mergeItems(updated, deleted); !merged.IsDeleted {
		t.Fatal("deletion must win regardless of which side is \"local\" in the call")
	}
}

func TestMergeItemsTombstoneLosesToStrictlyNewerUpdate(t *testing.T) {
	id := uuid.New()

	deleted := baseItem(id)
	deleted.IsDeleted = true
	deleted.ModifiedAt = 100

	updated := baseItem(id)
	updated.Name = "revived-by-newer-edit"
	updated.ModifiedAt = 200

	merged := mergeItems(deleted, updated)
	if merged.IsDeleted {
		t.Fatal("a strictly newer update must not lose to an older deletion")
	}
}

func TestMergeItemsNonConflictingFieldsBothSurvive(t *testing.T) {
	id := uuid.New()

	base := baseItem(id)
	base.ModifiedAt = 50
	base.FieldModifiedAt = map[string]int64{
		vault.FieldName:     50,
		vault.FieldUsername: 50,
		vault.FieldPassword: 50,
		vault.FieldURL:      50,
		vault.FieldNotes:    50,
		vault.FieldCategory: 50,
		vault.FieldFavorite: 50,
	}

	// device A changes only username
	remote := base
	remote.Username = "a-username"
	remote.ModifiedAt = 100
	remote.FieldModifiedAt = map[string]int64{
		vault.FieldName:     50,
		vault.FieldUsername: 100,
		vault.FieldPassword: 50,
		vault.FieldURL:      50,
		vault.FieldNotes:    50,
		vault.FieldCategory: 50,
		vault.FieldFavorite: 50,
	}
	remote.OriginDevice = "device-a"

	// device B changes only notes, strictly later than A's edit
	local := base
	local.Notes = "b-notes"
	local.ModifiedAt = 101
	local.FieldModifiedAt = map[string]int64{
		vault.FieldName:     50,
		vault.FieldUsername: 50,
		vault.FieldPassword: 50,
		vault.FieldURL:      50,
		vault.FieldNotes:    101,
		vault.FieldCategory: 50,
		vault.FieldFavorite: 50,
	}
	local.OriginDevice = "device-b"

	merged := mergeItems(local, remote)

	if merged.Username != "a-username" {
		t.Fatalf("got username %q, want a-username (A's edit, untouched by B)", merged.Username)
	}

	if merged.Notes != "b-notes" {
		t.Fatalf("got notes %q, want b-notes (B's edit, untouched by A)", merged.Notes)
	}
}

func TestMergeItemsBothDeletedStaysDeleted(t *testing.T) {
	id := uuid.New()

	a := baseItem(id)
	a.IsDeleted = true
	a.ModifiedAt = 100

	b := baseItem(id)
	b.IsDeleted = true
	b.ModifiedAt = 200

	if merged := mergeItems(a, b); !merged.IsDeleted {
		t.Fatal("both sides deleted must stay deleted")
	}
}
