package db

import (
	"context"

	"renewradar/internal/types"
)

// PreferenceRepository provides read access to the notification_preferences
// table. Preferences are written by the user-settings flow; the notification
// engine only reads them.
type PreferenceRepository struct {
	db DBTX
}

// NewPreferenceRepository creates a new PreferenceRepository backed by the
// given database connection (pool or transaction).
func NewPreferenceRepository(db DBTX) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetBatch fetches preference rows for the given users in a single query.
// Users without an explicit row are simply absent from the returned map; the
// preference resolver applies the documented default for them. Batching here
// is what keeps the dispatch loop free of N+1 query storms.
func (r *PreferenceRepository) GetBatch(ctx context.Context, userIDs []string) (map[string]types.NotificationPreference, error) {
	prefs := make(map[string]types.NotificationPreference, len(userIDs))
	if len(userIDs) == 0 {
		return prefs, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT user_id, email_enabled, sms_enabled, voice_enabled,
		        reminder_day_offsets, email, phone
		 FROM notification_preferences
		 WHERE user_id = ANY($1)`,
		userIDs,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to fetch notification preferences", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p       types.NotificationPreference
			offsets []int32
			email   *string
			phone   *string
		)
		if err := rows.Scan(&p.UserID, &p.EmailEnabled, &p.SMSEnabled, &p.VoiceEnabled,
			&offsets, &email, &phone); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan preference row", err)
		}

		p.ReminderDayOffsets = make([]int, 0, len(offsets))
		for _, d := range offsets {
			p.ReminderDayOffsets = append(p.ReminderDayOffsets, int(d))
		}
		if email != nil {
			p.Email = *email
		}
		if phone != nil {
			p.Phone = *phone
		}

		prefs[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating preference rows", err)
	}

	return prefs, nil
}
