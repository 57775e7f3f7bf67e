package external

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Stub implementations allow the application to boot in local mode without
// real provider credentials. They log every call and return predictable
// fake IDs.

// StubEmailProvider implements EmailProvider by logging calls and returning
// a fake message ID.
type StubEmailProvider struct {
	logger *slog.Logger
}

// NewStubEmailProvider creates a new StubEmailProvider.
func NewStubEmailProvider(logger *slog.Logger) *StubEmailProvider {
	return &StubEmailProvider{logger: logger}
}

func (s *StubEmailProvider) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	s.logger.InfoContext(ctx, "stub: email send",
		"to", to,
		"subject", subject,
	)
	return fmt.Sprintf("email_stub_%s", uuid.NewString()), nil
}

// StubSMSProvider implements SMSProvider by logging calls and returning a
// fake message ID.
type StubSMSProvider struct {
	logger *slog.Logger
}

// NewStubSMSProvider creates a new StubSMSProvider.
func NewStubSMSProvider(logger *slog.Logger) *StubSMSProvider {
	return &StubSMSProvider{logger: logger}
}

func (s *StubSMSProvider) Send(ctx context.Context, to, body string) (string, error) {
	s.logger.InfoContext(ctx, "stub: sms send",
		"to", to,
		"body", body,
	)
	return fmt.Sprintf("sms_stub_%s", uuid.NewString()), nil
}

// StubVoiceProvider implements VoiceProvider by logging calls and returning
// a fake call ID.
type StubVoiceProvider struct {
	logger *slog.Logger
}

// NewStubVoiceProvider creates a new StubVoiceProvider.
func NewStubVoiceProvider(logger *slog.Logger) *StubVoiceProvider {
	return &StubVoiceProvider{logger: logger}
}

func (s *StubVoiceProvider) Call(ctx context.Context, to, script string) (string, error) {
	s.logger.InfoContext(ctx, "stub: voice call",
		"to", to,
		"script", script,
	)
	return fmt.Sprintf("call_stub_%s", uuid.NewString()), nil
}

var (
	_ EmailProvider = (*StubEmailProvider)(nil)
	_ SMSProvider   = (*StubSMSProvider)(nil)
	_ VoiceProvider = (*StubVoiceProvider)(nil)
)
