package keydropstore

import "context"

// Wipe purges every locally persisted artifact: the vault container,
// the biometric slot, and all sync/device state, transitioning the
// store to the equivalent of a never-initialized client. The command
// log is intentionally left intact; it is an audit trail, not session
// state.
func (s *Store) Wipe(ctx context.Context) error {
	stmts := []string{
		`DELETE FROM vault_container WHERE id = 0;`,
		`DELETE FROM biometric_slot WHERE id = 0;`,
		`DELETE FROM sync_state WHERE id = 0;`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errf("wipe: begin transaction: %v", err)
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return errf("wipe: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errf("wipe: commit: %v", err)
	}

	return nil
}
