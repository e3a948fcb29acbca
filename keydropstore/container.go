package keydropstore

import (
	"context"
	"crypto/sha1" //nolint:gosec // SHA-1 here is for change detection, not security.

	"github.com/minsu-steven-kim/keydrop2/cryptocore"
	"github.com/minsu-steven-kim/keydrop2/session"
)

const upsertVaultContainer = `
	INSERT INTO
		vault_container (
			id,
			schema_version,
			salt,
			kdf_phc,
			nonce,
			vault_encrypted,
			checksum,
			updated_at
		)
	VALUES
		(0, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP) ON CONFLICT (id) DO
	UPDATE
	SET
		schema_version = excluded.schema_version,
		salt = excluded.salt,
		kdf_phc = excluded.kdf_phc,
		nonce = excluded.nonce,
		vault_encrypted = excluded.vault_encrypted,
		checksum = excluded.checksum,
		updated_at = excluded.updated_at
	WHERE
		vault_container.checksum <> excluded.checksum;
`

// SaveContainer upserts the single vault container row, skipping the
// write entirely if the ciphertext is byte-identical to what is
// already stored, so an unchanged vault never bumps updated_at.
func (s *Store) SaveContainer(ctx context.Context, c *session.Container) error {
	//nolint:gosec // SHA-1 here is for change detection, not security.
	checksum := sha1.Sum(c.Envelope.Ciphertext)

	_, err := s.db.ExecContext(ctx, upsertVaultContainer,
		c.SchemaVersion, c.Salt, c.KDFPHC, c.Envelope.Nonce, c.Envelope.Ciphertext, checksum[:])
	if err != nil {
		return errf("save vault container: %v", err)
	}

	return nil
}

const selectVaultContainer = `
	SELECT
		schema_version, salt, kdf_phc, nonce, vault_encrypted
	FROM
		vault_container
	WHERE
		id = 0;
`

// LoadContainer returns [session.ErrNoContainer] if no vault has ever
// been created on this client.
func (s *Store) LoadContainer(ctx context.Context) (*session.Container, error) {
	row := s.db.QueryRowContext(ctx, selectVaultContainer)

	var (
		c     session.Container
		nonce []byte
		ct    []byte
	)

	if err := row.Scan(&c.SchemaVersion, &c.Salt, &c.KDFPHC, &nonce, &ct); err != nil {
		if isNoRows(err) {
			return nil, session.ErrNoContainer
		}

		return nil, errf("load vault container: %v", err)
	}

	c.Envelope = &cryptocore.Envelope{Nonce: nonce, Ciphertext: ct}

	return &c, nil
}
