package external

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v3"

	"renewradar/internal/types"
)

// ResendAPI defines the subset of the Resend client used by ResendClient.
type ResendAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendClientConfig holds the configuration for creating a ResendClient.
type ResendClientConfig struct {
	APIKey      string
	FromAddress string
	FromName    string
	Logger      *slog.Logger
}

// ResendClient implements EmailProvider using the Resend API. It is the
// alternative email backend for environments without SES access.
type ResendClient struct {
	api      ResendAPI
	fromAddr string
	logger   *slog.Logger
}

// NewResendClient creates a new ResendClient.
func NewResendClient(cfg ResendClientConfig) *ResendClient {
	return NewResendClientWithAPI(resend.NewClient(cfg.APIKey).Emails, cfg)
}

// NewResendClientWithAPI creates a ResendClient with a pre-configured API,
// for testing.
func NewResendClientWithAPI(api ResendAPI, cfg ResendClientConfig) *ResendClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fromAddr := cfg.FromAddress
	if cfg.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	return &ResendClient{
		api:      api,
		fromAddr: fromAddr,
		logger:   logger,
	}
}

// Send transmits an email through Resend.
func (r *ResendClient) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	params := &resend.SendEmailRequest{
		From:    r.fromAddr,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := r.api.SendWithContext(ctx, params)
	if err != nil {
		return "", types.NewAppError(
			types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("Resend error: %v", err),
			err,
		)
	}
	return sent.Id, nil
}

var _ EmailProvider = (*ResendClient)(nil)
