package keydropstore

import "context"

// DeviceState is the local device's sync identity and bearer tokens,
// used by a [github.com/minsu-steven-kim/keydrop2/sync.Transport]
// implementation to authenticate. keydropstore only persists it;
// issuing and refreshing tokens is the transport's job.
type DeviceState struct {
	DeviceID       string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt int64

	// LastSyncAt is the unix timestamp of this device's last completed
	// sync cycle, local-only bookkeeping for CLI status output; it has
	// no bearing on the pull/push protocol, which tracks progress via
	// the vault's own last_sync version.
	LastSyncAt int64
}

const upsertSyncState = `
	INSERT INTO
		sync_state (id, device_id, access_token, refresh_token, token_expires_at, last_sync_at, updated_at)
	VALUES
		(0, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP) ON CONFLICT (id) DO
	UPDATE
	SET
		device_id = excluded.device_id,
		access_token = excluded.access_token,
		refresh_token = excluded.refresh_token,
		token_expires_at = excluded.token_expires_at,
		last_sync_at = excluded.last_sync_at,
		updated_at = excluded.updated_at;
`

func (s *Store) SaveDeviceState(ctx context.Context, d DeviceState) error {
	if _, err := s.db.ExecContext(ctx, upsertSyncState, d.DeviceID, d.AccessToken, d.RefreshToken, d.TokenExpiresAt, d.LastSyncAt); err != nil {
		return errf("save device state: %v", err)
	}

	return nil
}

const selectSyncState = `
	SELECT device_id, access_token, refresh_token, token_expires_at, last_sync_at
	FROM sync_state
	WHERE id = 0;
`

// ErrNoDeviceState is returned when no device has ever been
// registered with the sync engine on this client.
var ErrNoDeviceState = errf("no device state")

func (s *Store) LoadDeviceState(ctx context.Context) (DeviceState, error) {
	row := s.db.QueryRowContext(ctx, selectSyncState)

	var d DeviceState
	if err := row.Scan(&d.DeviceID, &d.AccessToken, &d.RefreshToken, &d.TokenExpiresAt, &d.LastSyncAt); err != nil {
		if isNoRows(err) {
			return DeviceState{}, ErrNoDeviceState
		}

		return DeviceState{}, errf("load device state: %v", err)
	}

	return d, nil
}
