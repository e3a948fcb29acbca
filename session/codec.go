package session

import (
	"encoding/json"

	"github.com/minsu-steven-kim/keydrop2/vault"
)

// blobDoc is the JSON object an envelope decrypts to at rest (spec
// section 6): {version, items, categories, last_sync}.
type blobDoc struct {
	Version    int          `json:"version"`
	Items      []vault.Item `json:"items"`
	Categories []string     `json:"categories"`
	LastSync   *int64       `json:"last_sync"`
}

func encodeVault(v *vault.Vault) ([]byte, error) {
	doc := blobDoc{
		Version:    v.SchemaVersion,
		Items:      v.Items,
		Categories: v.CategoryNames(),
		LastSync:   v.LastSync,
	}

	return json.Marshal(doc)
}

func decodeVault(plaintext []byte) (*vault.Vault, error) {
	var doc blobDoc
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		return nil, err
	}

	v := &vault.Vault{
		SchemaVersion: doc.Version,
		Items:         doc.Items,
		Categories:    make(map[string]bool, len(doc.Categories)),
		LastSync:      doc.LastSync,
	}

	for _, c := range doc.Categories {
		v.Categories[c] = true
	}

	return v, nil
}
