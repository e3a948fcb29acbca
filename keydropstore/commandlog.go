package keydropstore

import "context"

const insertCommandAck = `
	INSERT INTO
		command_log (id, command_type, acknowledged_success, acknowledged_at)
	VALUES
		(?, ?, ?, CURRENT_TIMESTAMP) ON CONFLICT (id) DO
	UPDATE
	SET
		command_type = excluded.command_type,
		acknowledged_success = excluded.acknowledged_success,
		acknowledged_at = excluded.acknowledged_at;
`

// RecordCommandAck logs a locally-handled remote command and its
// outcome. The sync engine checks this log through WasAcknowledged: a
// command already recorded here is not applied again, only
// re-acknowledged with the recorded outcome.
func (s *Store) RecordCommandAck(ctx context.Context, id string, commandType string, success bool) error {
	if _, err := s.db.ExecContext(ctx, insertCommandAck, id, commandType, success); err != nil {
		return errf("record command ack: %v", err)
	}

	return nil
}

const selectCommandAck = `SELECT acknowledged_success FROM command_log WHERE id = ?;`

// WasAcknowledged reports whether id has already been logged locally.
func (s *Store) WasAcknowledged(ctx context.Context, id string) (success bool, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, selectCommandAck, id)

	if scanErr := row.Scan(&success); scanErr != nil {
		if isNoRows(scanErr) {
			return false, false, nil
		}

		return false, false, errf("check command ack: %v", scanErr)
	}

	return success, true, nil
}
