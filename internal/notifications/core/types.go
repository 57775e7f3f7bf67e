// Package core contains the notification engine: urgency classification,
// preference resolution, and the dispatch coordinator that walks due
// obligations and fans sends out across channels with at-most-once delivery.
package core

import (
	"context"
	"time"

	"renewradar/internal/notifications/compose"
	"renewradar/internal/types"
)

// ObligationSource yields incomplete obligations in one city due at a given
// day offset from that city's as-of date. A failure here is fatal to the run:
// without the source there is nothing trustworthy to schedule.
type ObligationSource interface {
	ListDue(ctx context.Context, city types.City, asOf time.Time, offsetDays int) ([]types.Obligation, error)
}

// PreferenceStore returns stored preference rows for a batch of users. Users
// without a row are absent from the map.
type PreferenceStore interface {
	GetBatch(ctx context.Context, userIDs []string) (map[string]types.NotificationPreference, error)
}

// Ledger is the idempotency ledger. Claim is the race-safe gate that makes
// delivery at-most-once; HasSent is an optional cheap pre-check.
type Ledger interface {
	Claim(ctx context.Context, key types.LedgerKey) (types.ClaimOutcome, error)
	HasSent(ctx context.Context, key types.LedgerKey) (bool, error)
}

// EmailSender delivers a composed email. Returns the provider message ID.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error)
}

// SMSSender delivers a text message. Returns the provider message ID.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// VoiceSender places an automated call reading the given script. Returns the
// provider call ID.
type VoiceSender interface {
	Call(ctx context.Context, to, script string) (string, error)
}

// MessageComposer renders channel content for an obligation. Implementations
// must be pure; the dispatcher may call them concurrently.
type MessageComposer interface {
	Email(ot types.ObligationType, tier types.UrgencyTier, dueDate time.Time) (compose.EmailMessage, error)
	SMS(ot types.ObligationType, tier types.UrgencyTier, dueDate time.Time) (string, error)
	Voice(ot types.ObligationType, tier types.UrgencyTier, dueDate time.Time) (string, error)
}

// RunResult summarizes one dispatch run. Counters are obligation-level except
// the per-channel maps, which count individual delivery attempts. When
// preference resolution fails the whole work set lands in Failed with no
// per-channel attribution, because no channels were ever chosen.
type RunResult struct {
	AsOf    time.Time `json:"as_of"`
	Offsets []int     `json:"offsets"`

	Processed   int  `json:"processed"`
	Sent        int  `json:"sent"`
	AlreadySent int  `json:"already_sent"`
	Skipped     int  `json:"skipped"`
	Failed      int  `json:"failed"`
	Escalations int  `json:"escalations"`
	Partial     bool `json:"partial"`

	SentByChannel   map[types.ChannelType]int `json:"sent_by_channel"`
	FailedByChannel map[types.ChannelType]int `json:"failed_by_channel"`

	Errors []string `json:"errors,omitempty"`
}

func newRunResult(asOf time.Time, offsets []int) *RunResult {
	return &RunResult{
		AsOf:            asOf,
		Offsets:         offsets,
		SentByChannel:   make(map[types.ChannelType]int),
		FailedByChannel: make(map[types.ChannelType]int),
	}
}
