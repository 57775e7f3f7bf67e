// Package compose produces channel-appropriate reminder content for every
// (obligation type, urgency tier) combination. Composition is pure: the same
// inputs always produce byte-identical output, which is what makes the
// dispatch pipeline deterministic under test.
//
// Every template includes the obligation type in human language, the
// formatted due date, and an actionable next step. A zero or garbage due
// date fails loudly rather than rendering a broken message.
package compose

import (
	"bytes"
	"time"

	"renewradar/internal/types"
)

// EmailMessage is the composed payload for the email channel.
type EmailMessage struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Composer renders reminder messages. It carries only static configuration
// (the dashboard URL embedded as the next step) so its methods stay pure.
type Composer struct {
	dashboardURL string
}

// NewComposer creates a Composer. dashboardURL is the user-facing app URL
// included in email and SMS bodies as the renewal link (no trailing slash).
func NewComposer(dashboardURL string) *Composer {
	return &Composer{dashboardURL: dashboardURL}
}

// dueDateSanityFloor rejects dates that cannot be real deadlines. A zero
// time.Time formats as "0001-01-01", which is exactly the "Invalid Date"
// class of bug this guard exists to stop.
var dueDateSanityFloor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// validate checks the composition inputs shared by all channels.
func validate(ot types.ObligationType, dueDate time.Time) error {
	if !ot.Valid() {
		return types.NewAppError(types.ErrCodeValidationInvalidType,
			"unknown obligation type "+string(ot), nil)
	}
	if dueDate.IsZero() || dueDate.Before(dueDateSanityFloor) {
		return types.NewAppError(types.ErrCodeInvalidDueDate,
			"due date is missing or unparseable", nil)
	}
	return nil
}

// Email composes the subject, HTML body, and plaintext body for an email
// reminder.
func (c *Composer) Email(ot types.ObligationType, tier types.UrgencyTier, dueDate time.Time) (EmailMessage, error) {
	if err := validate(ot, dueDate); err != nil {
		return EmailMessage{}, err
	}

	t := templateFor(ot)
	v := tierVoice(tier)
	dateLong := dueDate.Format(dateLayoutLong)

	var html bytes.Buffer
	if err := emailLayout.Execute(&html, emailData{
		Headline: v.headline,
		Label:    t.label,
		DueDate:  dateLong,
		Action:   t.action,
		Link:     c.dashboardURL,
		Critical: tier == types.TierCritical,
	}); err != nil {
		return EmailMessage{}, types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to render email template", err)
	}

	return EmailMessage{
		Subject:  v.subjectPrefix + t.label + " due " + dueDate.Format(dateLayoutShort),
		HTMLBody: html.String(),
		TextBody: v.headline + "\n\nYour " + t.label + " is due on " + dateLong + ". " +
			t.action + "\n\nManage your renewals: " + c.dashboardURL + "\n",
	}, nil
}

// SMS composes a short message. The first sentence always carries the
// obligation type and due date so truncation by carriers never strips the
// actionable content.
func (c *Composer) SMS(ot types.ObligationType, tier types.UrgencyTier, dueDate time.Time) (string, error) {
	if err := validate(ot, dueDate); err != nil {
		return "", err
	}

	t := templateFor(ot)
	date := dueDate.Format(dateLayoutShort)

	switch tier {
	case types.TierCritical:
		return "URGENT: your " + t.label + " is due " + date + ". Renew now to avoid fines: " + c.dashboardURL, nil
	case types.TierUrgent:
		return "Your " + t.label + " is due " + date + ". " + t.action + " " + c.dashboardURL, nil
	case types.TierImportant:
		return "Reminder: your " + t.label + " is due " + date + ". " + t.action + " " + c.dashboardURL, nil
	case types.TierReminder:
		return "Heads up: your " + t.label + " is due " + date + ". " + t.action + " " + c.dashboardURL, nil
	default:
		return "", types.NewAppError(types.ErrCodeInternalUnexpected,
			"unknown urgency tier "+string(tier), nil)
	}
}

// Voice composes the spoken script for an automated reminder call. Scripts
// avoid URLs; callers are directed to the dashboard by name.
func (c *Composer) Voice(ot types.ObligationType, tier types.UrgencyTier, dueDate time.Time) (string, error) {
	if err := validate(ot, dueDate); err != nil {
		return "", err
	}

	t := templateFor(ot)
	date := dueDate.Format(dateLayoutLong)

	opening := "This is RenewRadar with a reminder."
	if tier == types.TierCritical {
		opening = "This is RenewRadar with an urgent reminder."
	}

	return opening + " Your " + t.label + " is due on " + date + ". " +
		t.spokenAction + " Visit your RenewRadar dashboard for details. Goodbye.", nil
}
