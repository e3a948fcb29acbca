package sync

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/minsu-steven-kim/keydrop2/cryptocore"
	"github.com/minsu-steven-kim/keydrop2/vault"
)

// itemPayload is what a sync record's encrypted_blob decrypts to: the
// item sans sync/tombstone metadata. id, version, and is_deleted
// travel in the clear as part of [Record], not inside the envelope.
type itemPayload struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Category string `json:"category,omitempty"`
	Favorite bool   `json:"favorite"`

	CreatedAt int64 `json:"created_at"`

	// FieldModifiedAt carries the item's per-field last-modified
	// timestamps so conflict merge on the receiving side can resolve
	// concurrent edits to different fields independently, instead of
	// collapsing to whichever device's record is newer as a whole.
	FieldModifiedAt map[string]int64 `json:"field_modified_at,omitempty"`
}

// itemAD builds the associated data binding a single-item envelope to
// its id and the version it was encrypted under.
func itemAD(id string, version int64) []byte {
	return []byte(fmt.Sprintf("%s\x00%d", id, version))
}

// encryptItem seals it under vaultKey with AD = id‖version, where
// version is the item's pre-push sync version, and returns the record
// ready to push.
func encryptItem(it vault.Item, vaultKey []byte, deviceID string) (Record, error) {
	payload := itemPayload{
		Name:            it.Name,
		Username:        it.Username,
		Password:        it.Password,
		URL:             it.URL,
		Notes:           it.Notes,
		Category:        it.Category,
		Favorite:        it.Favorite,
		CreatedAt:       it.CreatedAt,
		FieldModifiedAt: it.FieldModifiedAt,
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return Record{}, err
	}

	env, err := cryptocore.Encrypt(plaintext, vaultKey, itemAD(it.ID.String(), it.SyncVersion))
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:            it.ID.String(),
		Version:       it.SyncVersion,
		EncryptedBlob: env.Marshal(),
		IsDeleted:     it.IsDeleted,
		ModifiedAt:    it.ModifiedAt,
		OriginDevice:  deviceID,
	}, nil
}

// decryptItem opens rec's envelope under vaultKey and reconstitutes a
// [vault.Item], filling in the sync/tombstone metadata the envelope
// itself does not carry. id must already be validated as a parseable
// UUID by the caller.
func decryptItem(rec Record, id uuid.UUID, vaultKey []byte) (vault.Item, error) {
	env, err := cryptocore.UnmarshalEnvelope(rec.EncryptedBlob)
	if err != nil {
		return vault.Item{}, err
	}

	plaintext, err := cryptocore.Decrypt(env, vaultKey, itemAD(rec.ID, rec.Version))
	if err != nil {
		return vault.Item{}, err
	}

	var payload itemPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return vault.Item{}, err
	}

	return vault.Item{
		ID:              id,
		Name:            payload.Name,
		Username:        payload.Username,
		Password:        payload.Password,
		URL:             payload.URL,
		Notes:           payload.Notes,
		Category:        payload.Category,
		Favorite:        payload.Favorite,
		CreatedAt:       payload.CreatedAt,
		FieldModifiedAt: payload.FieldModifiedAt,
		ModifiedAt:      rec.ModifiedAt,
		SyncVersion:     rec.Version,
		IsDeleted:       rec.IsDeleted,
		PendingSync:     false,
		OriginDevice:    rec.OriginDevice,
	}, nil
}
