package vault_test

import (
	"testing"

	"github.com/minsu-steven-kim/keydrop2/keydroperrors"
	"github.com/minsu-steven-kim/keydrop2/vault"
)

func validItem(name string) vault.Item {
	return vault.Item{Name: name, Username: "alice", Password: "hunter2"}
}

func TestAddRejectsEmptyRequiredFields(t *testing.T) {
	v := vault.New()

	if _, err := v.Add(vault.Item{Name: "", Username: "a", Password: "b"}); err != keydroperrors.ErrInvalidPolicy {
		t.Fatalf("got err = %v, want %v", err, keydroperrors.ErrInvalidPolicy)
	}
}

func TestAddSetsBookkeepingFields(t *testing.T) {
	v := vault.New()

	it, err := v.Add(validItem("github"))
	if err != nil {
		t.Fatal(err)
	}

	if it.CreatedAt != it.ModifiedAt {
		t.Fatalf("created_at %d != modified_at %d on a freshly added item", it.CreatedAt, it.ModifiedAt)
	}

	if !it.PendingSync {
		t.Fatal("pending_sync should be true after add")
	}

	if it.SyncVersion != 0 {
		t.Fatalf("got sync_version %d, want 0", it.SyncVersion)
	}
}

func TestUpdateRejectsTombstone(t *testing.T) {
	v := vault.New()

	it, err := v.Add(validItem("github"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Delete(it.ID); err != nil {
		t.Fatal(err)
	}

	_, err = v.Update(it.ID, func(i *vault.Item) { i.Password = "new" })
	if err != keydroperrors.ErrGone {
		t.Fatalf("got err = %v, want %v", err, keydroperrors.ErrGone)
	}
}

func TestTombstoneNeverResurrects(t *testing.T) {
	v := vault.New()

	it, err := v.Add(validItem("github"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Delete(it.ID); err != nil {
		t.Fatal(err)
	}

	for range 3 {
		_, _ = v.Update(it.ID, func(i *vault.Item) { i.IsDeleted = false })

		got, ok := v.Get(it.ID)
		if !ok {
			t.Fatal("item disappeared")
		}

		if !got.IsDeleted {
			t.Fatal("tombstone resurrected")
		}
	}
}

func TestSearchCaseInsensitiveAndOrdered(t *testing.T) {
	v := vault.New()

	for _, name := range []string{"Zebra", "apple", "Mango"} {
		if _, err := v.Add(validItem(name)); err != nil {
			t.Fatal(err)
		}
	}

	got := v.Search("A")

	var names []string
	for _, it := range got {
		names = append(names, it.Name)
	}

	want := []string{"apple", "Mango", "Zebra"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("got order %v, want %v", names, want)
		}
	}
}

func TestSearchExcludesDeleted(t *testing.T) {
	v := vault.New()

	it, err := v.Add(validItem("github"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Delete(it.ID); err != nil {
		t.Fatal(err)
	}

	if got := v.Search("github"); len(got) != 0 {
		t.Fatalf("got %d results, want 0", len(got))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	v := vault.New()

	if _, err := v.Add(validItem("github")); err != nil {
		t.Fatal(err)
	}

	records := v.ExportPlain()

	v2 := vault.New()

	imported, err := v2.ImportPlain(records)
	if err != nil {
		t.Fatal(err)
	}

	if len(imported) != 1 || imported[0].Name != "github" {
		t.Fatalf("got %+v", imported)
	}
}
