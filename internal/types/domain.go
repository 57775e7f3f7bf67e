// Package types defines the domain model shared across the RenewRadar
// platform: obligations, notification preferences, the idempotency ledger
// key, typed errors, and the small interfaces (Clock, Logger) that keep the
// rest of the codebase mockable.
package types

import (
	"fmt"
	"time"
)

// Obligation is a single renewal deadline owed by one user. Obligations are
// created by external registration/detection flows and are read-only to the
// notification engine.
type Obligation struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      ObligationType `json:"type"`
	City      City           `json:"city"`
	DueDate   time.Time      `json:"due_date"` // calendar date, stored as midnight UTC
	Completed bool           `json:"completed"`
	CreatedAt time.Time      `json:"created_at"`
}

// NotificationPreference is the per-user channel and offset configuration.
// A missing endpoint disables the corresponding channel regardless of the
// enabled flags.
type NotificationPreference struct {
	UserID       string `json:"user_id"`
	EmailEnabled bool   `json:"email_enabled"`
	SMSEnabled   bool   `json:"sms_enabled"`
	VoiceEnabled bool   `json:"voice_enabled"`

	// ReminderDayOffsets holds the days-before-due on which the user wants
	// reminders, e.g. {30, 14, 7, 1, 0}.
	ReminderDayOffsets []int `json:"reminder_day_offsets"`

	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// DefaultPreference returns the documented default for users without an
// explicit preference row: email only, reminded the day before and the day of
// the deadline.
func DefaultPreference(userID string) NotificationPreference {
	return NotificationPreference{
		UserID:             userID,
		EmailEnabled:       true,
		ReminderDayOffsets: []int{1, 0},
	}
}

// ChannelEnabled reports whether the user opted in to the channel.
func (p NotificationPreference) ChannelEnabled(ch ChannelType) bool {
	switch ch {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	case ChannelVoice:
		return p.VoiceEnabled
	default:
		return false
	}
}

// Endpoint returns the contact endpoint for the channel and whether one is
// on file. SMS and voice share the phone number.
func (p NotificationPreference) Endpoint(ch ChannelType) (string, bool) {
	switch ch {
	case ChannelEmail:
		return p.Email, p.Email != ""
	case ChannelSMS, ChannelVoice:
		return p.Phone, p.Phone != ""
	default:
		return "", false
	}
}

// WantsOffset reports whether the user configured a reminder at the given
// day offset.
func (p NotificationPreference) WantsOffset(offsetDays int) bool {
	for _, d := range p.ReminderDayOffsets {
		if d == offsetDays {
			return true
		}
	}
	return false
}

// LedgerKey is the composite natural key of the idempotency ledger:
// "this (user, obligation type, due date, channel, day offset) combination
// has been sent." The key is unique in storage; a duplicate insert means
// already sent, never an error.
type LedgerKey struct {
	UserID         string
	ObligationType ObligationType
	DueDate        time.Time
	Channel        ChannelType
	OffsetDays     int
}

// String renders the key in its canonical log form.
func (k LedgerKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%d",
		k.UserID, k.ObligationType, k.DueDate.Format(DateLayout), k.Channel, k.OffsetDays)
}

// DateLayout is the wire format for calendar dates (due dates, as-of dates).
const DateLayout = "2006-01-02"

// CivicDate truncates the instant to the calendar date observed in the given
// city's timezone, returned as midnight UTC. This is how "today" is computed
// independent of server timezone.
func CivicDate(t time.Time, c City) time.Time {
	loc, err := time.LoadLocation(c.TimezoneName())
	if err != nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// CivicToday returns the current calendar date as observed in the city's
// timezone, as midnight UTC. Chicago and San Francisco disagree on "today"
// for two hours around Pacific midnight, so day-offset math must use the
// obligation's own city.
func CivicToday(clock Clock, c City) time.Time {
	return CivicDate(clock.Now(), c)
}

// DaysUntil returns the whole calendar days from asOf to the due date. Both
// arguments are expected to be midnight-UTC calendar dates. Negative values
// mean overdue.
func DaysUntil(asOf, dueDate time.Time) int {
	return int(dueDate.Sub(asOf).Hours() / 24)
}
