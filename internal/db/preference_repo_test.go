package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"renewradar/internal/types"
)

func TestPreferenceRepository_GetBatch(t *testing.T) {
	dbtx := new(mockDBTX)
	dbtx.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(newPreferenceMockRows([]preferenceRowData{
			{
				userID:       "user-1",
				emailEnabled: true,
				smsEnabled:   true,
				offsets:      []int32{30, 7, 1, 0},
				email:        strPtr("u1@example.com"),
				phone:        strPtr("+13125550100"),
			},
			{
				userID:       "user-2",
				emailEnabled: true,
				offsets:      []int32{1},
				email:        strPtr("u2@example.com"),
			},
		}), nil)

	repo := NewPreferenceRepository(dbtx)
	got, err := repo.GetBatch(context.Background(), []string{"user-1", "user-2", "user-3"})

	require.NoError(t, err)
	require.Len(t, got, 2)

	p1 := got["user-1"]
	assert.True(t, p1.SMSEnabled)
	assert.Equal(t, []int{30, 7, 1, 0}, p1.ReminderDayOffsets)
	assert.Equal(t, "+13125550100", p1.Phone)

	p2 := got["user-2"]
	assert.False(t, p2.SMSEnabled)
	assert.Empty(t, p2.Phone)

	_, ok := got["user-3"]
	assert.False(t, ok, "users without a row are absent, not defaulted here")
}

func TestPreferenceRepository_GetBatch_EmptyInput(t *testing.T) {
	dbtx := new(mockDBTX)

	repo := NewPreferenceRepository(dbtx)
	got, err := repo.GetBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	dbtx.AssertNotCalled(t, "Query")
}

func TestPreferenceRepository_GetBatch_QueryError(t *testing.T) {
	dbtx := new(mockDBTX)
	dbtx.On("Query", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("timeout"))

	repo := NewPreferenceRepository(dbtx)
	_, err := repo.GetBatch(context.Background(), []string{"user-1"})

	require.Error(t, err)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
