package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"renewradar/internal/types"
)

func TestClassifyUrgency_Boundaries(t *testing.T) {
	tests := []struct {
		days int
		want types.UrgencyTier
	}{
		{90, types.TierReminder},
		{31, types.TierReminder},
		{30, types.TierImportant},
		{8, types.TierImportant},
		{7, types.TierUrgent},
		{2, types.TierUrgent},
		{1, types.TierCritical},
		{0, types.TierCritical},
		{-1, types.TierCritical},
		{-45, types.TierCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyUrgency(tt.days), "days=%d", tt.days)
	}
}

func TestClassifyUrgency_MonotonicSeverity(t *testing.T) {
	// Severity never decreases as the deadline approaches.
	prev := ClassifyUrgency(100)
	for days := 99; days >= -10; days-- {
		cur := ClassifyUrgency(days)
		assert.GreaterOrEqual(t, cur.Severity(), prev.Severity(), "days=%d", days)
		prev = cur
	}
}
