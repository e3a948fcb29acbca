package keydropstore

import (
	"context"

	"github.com/minsu-steven-kim/keydrop2/session"
)

const upsertBiometricSlot = `
	INSERT INTO
		biometric_slot (id, wrapped_key, updated_at)
	VALUES
		(0, ?, CURRENT_TIMESTAMP) ON CONFLICT (id) DO
	UPDATE
	SET
		wrapped_key = excluded.wrapped_key,
		updated_at = excluded.updated_at;
`

func (s *Store) SaveBiometricSlot(ctx context.Context, slot *session.BiometricSlot) error {
	if _, err := s.db.ExecContext(ctx, upsertBiometricSlot, slot.Wrapped); err != nil {
		return errf("save biometric slot: %v", err)
	}

	return nil
}

const selectBiometricSlot = `SELECT wrapped_key FROM biometric_slot WHERE id = 0;`

func (s *Store) LoadBiometricSlot(ctx context.Context) (*session.BiometricSlot, error) {
	row := s.db.QueryRowContext(ctx, selectBiometricSlot)

	var wrapped []byte
	if err := row.Scan(&wrapped); err != nil {
		if isNoRows(err) {
			return nil, session.ErrNoContainer
		}

		return nil, errf("load biometric slot: %v", err)
	}

	return &session.BiometricSlot{Wrapped: wrapped}, nil
}

func (s *Store) ClearBiometricSlot(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM biometric_slot WHERE id = 0;`); err != nil {
		return errf("clear biometric slot: %v", err)
	}

	return nil
}
