package sync

import (
	"github.com/minsu-steven-kim/keydrop2/vault"
)

// mergeItems reconciles a locally edited item against the version the
// server returned for the same id, applying a field-level
// last-write-wins rule: each field in [vault.MergeableFields] is taken
// independently from whichever side touched it most recently, so a
// change to one field on one device and a change to a different field
// on another device both survive. The result always has
// pending_sync = true so it is pushed back and becomes authoritative.
func mergeItems(local, remote vault.Item) vault.Item {
	recordMeta := recordMetadataWinner(local, remote)

	merged := vault.Item{
		ID: local.ID,

		CreatedAt:  earliestCreatedAt(local, remote),
		ModifiedAt: recordMeta.ModifiedAt,

		SyncVersion:  remote.SyncVersion,
		IsDeleted:    mergedIsDeleted(local, remote),
		PendingSync:  true,
		OriginDevice: recordMeta.OriginDevice,

		FieldModifiedAt: make(map[string]int64, len(vault.MergeableFields)),
	}

	for _, field := range vault.MergeableFields {
		winner, ts := fieldWinner(field, local, remote)
		merged.FieldModifiedAt[field] = ts
		applyField(&merged, field, winner)
	}

	return merged
}

// applyField copies field's value from winner into merged.
func applyField(merged *vault.Item, field string, winner vault.Item) {
	switch field {
	case vault.FieldName:
		merged.Name = winner.Name
	case vault.FieldUsername:
		merged.Username = winner.Username
	case vault.FieldPassword:
		merged.Password = winner.Password
	case vault.FieldURL:
		merged.URL = winner.URL
	case vault.FieldNotes:
		merged.Notes = winner.Notes
	case vault.FieldCategory:
		merged.Category = winner.Category
	case vault.FieldFavorite:
		merged.Favorite = winner.Favorite
	}
}

// fieldWinner picks which side wins field: the side with the larger
// field timestamp; ties broken by larger sync_version; remaining ties
// broken by the lexicographically greater origin device id. It
// returns the winning item and the timestamp to record for the field
// in the merged item.
func fieldWinner(field string, local, remote vault.Item) (vault.Item, int64) {
	localTS := local.FieldTimestamp(field)
	remoteTS := remote.FieldTimestamp(field)

	if localTS != remoteTS {
		if localTS > remoteTS {
			return local, localTS
		}

		return remote, remoteTS
	}

	if local.SyncVersion != remote.SyncVersion {
		if local.SyncVersion > remote.SyncVersion {
			return local, localTS
		}

		return remote, remoteTS
	}

	if local.OriginDevice > remote.OriginDevice {
		return local, localTS
	}

	return remote, remoteTS
}

// recordMetadataWinner picks the side whose record-level metadata
// (modified_at, origin_device) the merged item carries: larger
// modified_at; ties broken by larger sync_version; remaining ties
// broken by the lexicographically greater origin device id. This does
// not decide field values, only the metadata describing the most
// recent touch to the record as a whole.
func recordMetadataWinner(local, remote vault.Item) vault.Item {
	if local.ModifiedAt != remote.ModifiedAt {
		if local.ModifiedAt > remote.ModifiedAt {
			return local
		}

		return remote
	}

	if local.SyncVersion != remote.SyncVersion {
		if local.SyncVersion > remote.SyncVersion {
			return local
		}

		return remote
	}

	if local.OriginDevice > remote.OriginDevice {
		return local
	}

	return remote
}

// mergedIsDeleted applies tombstone stickiness: a deletion wins over
// an opposing update if the deletion's modified_at is not strictly
// less than the update's modified_at.
func mergedIsDeleted(local, remote vault.Item) bool {
	switch {
	case local.IsDeleted && remote.IsDeleted:
		return true
	case local.IsDeleted && !remote.IsDeleted:
		return local.ModifiedAt >= remote.ModifiedAt
	case remote.IsDeleted && !local.IsDeleted:
		return remote.ModifiedAt >= local.ModifiedAt
	default:
		return false
	}
}

func earliestCreatedAt(local, remote vault.Item) int64 {
	if local.CreatedAt < remote.CreatedAt {
		return local.CreatedAt
	}

	return remote.CreatedAt
}
