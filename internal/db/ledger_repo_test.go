package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"renewradar/internal/types"
)

func testLedgerKey() types.LedgerKey {
	return types.LedgerKey{
		UserID:         "user-1",
		ObligationType: types.ObligationCitySticker,
		DueDate:        time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Channel:        types.ChannelEmail,
		OffsetDays:     7,
	}
}

func TestLedgerRepository_Claim_Committed(t *testing.T) {
	dbtx := new(mockDBTX)
	dbtx.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	repo := NewLedgerRepository(dbtx)
	outcome, err := repo.Claim(context.Background(), testLedgerKey())

	require.NoError(t, err)
	assert.Equal(t, types.ClaimCommitted, outcome)

	call := dbtx.Calls[0]
	sql := call.Arguments.String(1)
	assert.Contains(t, sql, "ON CONFLICT")
	assert.Contains(t, sql, "DO NOTHING")
	args := call.Arguments.Get(2).([]any)
	assert.Equal(t, "user-1", args[0])
	assert.Equal(t, "city_sticker", args[1])
	assert.Equal(t, 7, args[4])
}

func TestLedgerRepository_Claim_AlreadyRecorded(t *testing.T) {
	dbtx := new(mockDBTX)
	dbtx.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 0"), nil)

	repo := NewLedgerRepository(dbtx)
	outcome, err := repo.Claim(context.Background(), testLedgerKey())

	require.NoError(t, err)
	assert.Equal(t, types.ClaimAlreadyRecorded, outcome)
}

func TestLedgerRepository_Claim_DBError(t *testing.T) {
	dbtx := new(mockDBTX)
	dbtx.On("Exec", mock.Anything, mock.Anything, mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	repo := NewLedgerRepository(dbtx)
	_, err := repo.Claim(context.Background(), testLedgerKey())

	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestLedgerRepository_HasSent(t *testing.T) {
	dbtx := new(mockDBTX)
	dbtx.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*bool) = true
			return nil
		}})

	repo := NewLedgerRepository(dbtx)
	sent, err := repo.HasSent(context.Background(), testLedgerKey())

	require.NoError(t, err)
	assert.True(t, sent)
}
