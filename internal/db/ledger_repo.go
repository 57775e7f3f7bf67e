package db

import (
	"context"

	"renewradar/internal/types"
)

// LedgerRepository is the Postgres-backed idempotency ledger. Each row of
// notification_log is a fact: "this (user, obligation type, due date,
// channel, offset) combination has been sent." The table carries a unique
// constraint on the composite key; rows are never updated or deleted here
// (retention is an external concern).
type LedgerRepository struct {
	db DBTX
}

// NewLedgerRepository creates a new LedgerRepository backed by the given
// database connection (pool or transaction).
func NewLedgerRepository(db DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Claim atomically records the key as sent. It uses a single conditional
// INSERT ... ON CONFLICT DO NOTHING so that concurrent runs racing on the
// same key cannot both win: exactly one caller observes ClaimCommitted, all
// others observe ClaimAlreadyRecorded. The atomicity of this statement is
// the sole at-most-once safety mechanism of the whole engine; no additional
// distributed lock is required.
func (r *LedgerRepository) Claim(ctx context.Context, key types.LedgerKey) (types.ClaimOutcome, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO notification_log
		 (user_id, obligation_type, due_date, channel, offset_days, sent_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (user_id, obligation_type, due_date, channel, offset_days) DO NOTHING`,
		key.UserID,
		string(key.ObligationType),
		key.DueDate,
		string(key.Channel),
		key.OffsetDays,
	)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalDB, "failed to claim notification key", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ClaimAlreadyRecorded, nil
	}
	return types.ClaimCommitted, nil
}

// HasSent reports whether the key has already been claimed. This is a cheap
// pre-check that lets the dispatcher skip composing messages for keys sent
// by earlier runs; Claim remains the authoritative race-safe gate.
func (r *LedgerRepository) HasSent(ctx context.Context, key types.LedgerKey) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM notification_log
			WHERE user_id = $1 AND obligation_type = $2 AND due_date = $3
			  AND channel = $4 AND offset_days = $5
		 )`,
		key.UserID,
		string(key.ObligationType),
		key.DueDate,
		string(key.Channel),
		key.OffsetDays,
	).Scan(&exists)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to check notification key", err)
	}
	return exists, nil
}
