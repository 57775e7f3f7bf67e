package external

import (
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"

	"renewradar/internal/config"
)

// ClientRegistry holds the delivery provider clients. It is the single point
// of access for the notification engine to reach third-party services.
type ClientRegistry struct {
	Email EmailProvider
	SMS   SMSProvider
	Voice VoiceProvider
}

// NewClientRegistry initializes the delivery providers selected by
// configuration. In local mode every provider is a stub, so the application
// boots without real credentials. Production providers are wrapped in
// circuit breakers.
func NewClientRegistry(cfg *config.Config, awsCfg aws.Config, logger *slog.Logger) (*ClientRegistry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Environment == "local" {
		logger.Info("initializing delivery providers in STUB mode", "environment", cfg.Environment)
		stubLogger := logger.With("mode", "stub")
		return &ClientRegistry{
			Email: NewStubEmailProvider(stubLogger),
			SMS:   NewStubSMSProvider(stubLogger),
			Voice: NewStubVoiceProvider(stubLogger),
		}, nil
	}

	logger.Info("initializing delivery providers",
		"environment", cfg.Environment,
		"email_provider", cfg.Email.Provider,
		"messaging_provider", cfg.Messaging.Provider,
	)

	reg := &ClientRegistry{}

	switch cfg.Email.Provider {
	case "ses":
		reg.Email = NewBreakerEmailProvider(NewSESClient(awsCfg, SESClientConfig{
			FromAddress:   cfg.Email.FromAddress,
			FromName:      cfg.Email.FromName,
			ConfigSetName: cfg.Email.SESConfigSet,
			Logger:        logger.With("client", "ses"),
		}))
	case "resend":
		if !cfg.Email.ResendAPIKey.IsSet() {
			return nil, fmt.Errorf("email provider %q requires RESEND_API_KEY", cfg.Email.Provider)
		}
		reg.Email = NewBreakerEmailProvider(NewResendClient(ResendClientConfig{
			APIKey:      cfg.Email.ResendAPIKey.Reveal(),
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			Logger:      logger.With("client", "resend"),
		}))
	case "stub":
		reg.Email = NewStubEmailProvider(logger.With("mode", "stub"))
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}

	switch cfg.Messaging.Provider {
	case "twilio":
		if cfg.Messaging.TwilioAccountSID == "" || !cfg.Messaging.TwilioAuthToken.IsSet() {
			return nil, fmt.Errorf("messaging provider %q requires TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN", cfg.Messaging.Provider)
		}
		tw := NewTwilioClient(TwilioClientConfig{
			AccountSID: cfg.Messaging.TwilioAccountSID,
			AuthToken:  cfg.Messaging.TwilioAuthToken.Reveal(),
			SMSFrom:    cfg.Messaging.SMSFromNumber,
			VoiceFrom:  cfg.Messaging.VoiceFromNumber,
			Timeout:    cfg.Notify.SendTimeout,
			Logger:     logger.With("client", "twilio"),
		})
		reg.SMS = NewBreakerSMSProvider(tw)
		reg.Voice = NewBreakerVoiceProvider(tw)
	case "stub":
		stubLogger := logger.With("mode", "stub")
		reg.SMS = NewStubSMSProvider(stubLogger)
		reg.Voice = NewStubVoiceProvider(stubLogger)
	default:
		return nil, fmt.Errorf("unknown messaging provider %q", cfg.Messaging.Provider)
	}

	return reg, nil
}
