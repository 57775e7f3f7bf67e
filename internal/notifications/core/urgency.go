package core

import "renewradar/internal/types"

// ClassifyUrgency maps days-until-due to an urgency tier. The function is
// total: every integer, including negatives (overdue), lands in exactly one
// tier, and severity never decreases as the deadline approaches.
//
//	> 30   reminder
//	8..30  important
//	2..7   urgent
//	<= 1   critical (tomorrow, today, or overdue)
func ClassifyUrgency(daysUntil int) types.UrgencyTier {
	switch {
	case daysUntil <= 1:
		return types.TierCritical
	case daysUntil <= 7:
		return types.TierUrgent
	case daysUntil <= 30:
		return types.TierImportant
	default:
		return types.TierReminder
	}
}
