package db

import (
	"context"
	"time"

	"renewradar/internal/types"
)

// ObligationRepository provides read access to the obligations table. The
// notification engine never creates, updates, or deletes obligations; those
// mutations belong to the registration and renewal-confirmation flows.
type ObligationRepository struct {
	db DBTX
}

// NewObligationRepository creates a new ObligationRepository backed by the
// given database connection (pool or transaction).
func NewObligationRepository(db DBTX) *ObligationRepository {
	return &ObligationRepository{db: db}
}

// ListDue returns every incomplete obligation in the given city whose due
// date equals asOf + offsetDays, across all obligation types. Both asOf and
// the stored due dates are midnight-UTC calendar dates, so equality is exact.
// The caller supplies the city's own as-of date; the two-hour window around
// Pacific midnight makes Chicago and San Francisco scan different dates.
//
// The (city, due_date) columns carry a partial index on incomplete rows,
// which keeps this fast for the small set of offsets the scheduler scans.
func (r *ObligationRepository) ListDue(ctx context.Context, city types.City, asOf time.Time, offsetDays int) ([]types.Obligation, error) {
	dueDate := asOf.AddDate(0, 0, offsetDays)

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, obligation_type, city, due_date, completed, created_at
		 FROM obligations
		 WHERE completed = FALSE AND city = $1 AND due_date = $2
		 ORDER BY id`,
		string(city), dueDate,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list due obligations", err)
	}
	defer rows.Close()

	var results []types.Obligation
	for rows.Next() {
		var (
			ob             types.Obligation
			obligationType string
			city           string
		)
		if err := rows.Scan(&ob.ID, &ob.UserID, &obligationType, &city,
			&ob.DueDate, &ob.Completed, &ob.CreatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan obligation row", err)
		}
		ob.Type = types.ObligationType(obligationType)
		ob.City = types.City(city)
		// Normalize to a midnight-UTC calendar date regardless of how the
		// driver materialized the DATE column.
		ob.DueDate = time.Date(ob.DueDate.Year(), ob.DueDate.Month(), ob.DueDate.Day(), 0, 0, 0, 0, time.UTC)
		results = append(results, ob)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating obligation rows", err)
	}

	return results, nil
}
