// Package external contains clients for third-party delivery providers
// (AWS SES, Resend, Twilio) plus stub implementations for local mode. The
// registry picks implementations from configuration and wraps production
// clients in circuit breakers.
package external

import "context"

// EmailProvider delivers a pre-rendered email and returns the provider
// message ID.
type EmailProvider interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error)
}

// SMSProvider delivers a text message and returns the provider message ID.
type SMSProvider interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// VoiceProvider places an automated call reading the script and returns the
// provider call ID.
type VoiceProvider interface {
	Call(ctx context.Context, to, script string) (string, error)
}
