package external

import (
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"renewradar/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewClientRegistry_LocalModeUsesStubs(t *testing.T) {
	cfg := &config.Config{Environment: "local"}

	reg, err := NewClientRegistry(cfg, aws.Config{}, discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, ok := reg.Email.(*StubEmailProvider); !ok {
		t.Errorf("email = %T, want stub", reg.Email)
	}
	if _, ok := reg.SMS.(*StubSMSProvider); !ok {
		t.Errorf("sms = %T, want stub", reg.SMS)
	}
	if _, ok := reg.Voice.(*StubVoiceProvider); !ok {
		t.Errorf("voice = %T, want stub", reg.Voice)
	}
}

func TestNewClientRegistry_ProductionProviders(t *testing.T) {
	cfg := &config.Config{Environment: "prod"}
	cfg.Email.Provider = "ses"
	cfg.Email.FromAddress = "reminders@renewradar.io"
	cfg.Messaging.Provider = "twilio"
	cfg.Messaging.TwilioAccountSID = "AC123"
	cfg.Messaging.TwilioAuthToken = "token"
	cfg.Messaging.SMSFromNumber = "+13125550000"
	cfg.Messaging.VoiceFromNumber = "+13125550001"

	reg, err := NewClientRegistry(cfg, aws.Config{Region: "us-east-1"}, discardLogger())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, ok := reg.Email.(*BreakerEmailProvider); !ok {
		t.Errorf("email = %T, want breaker-wrapped", reg.Email)
	}
	if _, ok := reg.SMS.(*BreakerSMSProvider); !ok {
		t.Errorf("sms = %T, want breaker-wrapped", reg.SMS)
	}
	if _, ok := reg.Voice.(*BreakerVoiceProvider); !ok {
		t.Errorf("voice = %T, want breaker-wrapped", reg.Voice)
	}
}

func TestNewClientRegistry_MissingTwilioCredentials(t *testing.T) {
	cfg := &config.Config{Environment: "prod"}
	cfg.Email.Provider = "stub"
	cfg.Messaging.Provider = "twilio"

	if _, err := NewClientRegistry(cfg, aws.Config{}, discardLogger()); err == nil {
		t.Fatal("expected an error for missing Twilio credentials")
	}
}

func TestNewClientRegistry_MissingResendKey(t *testing.T) {
	cfg := &config.Config{Environment: "prod"}
	cfg.Email.Provider = "resend"
	cfg.Messaging.Provider = "stub"

	if _, err := NewClientRegistry(cfg, aws.Config{}, discardLogger()); err == nil {
		t.Fatal("expected an error for missing Resend API key")
	}
}

func TestNewClientRegistry_UnknownProvider(t *testing.T) {
	cfg := &config.Config{Environment: "prod"}
	cfg.Email.Provider = "pigeon"
	cfg.Messaging.Provider = "stub"

	if _, err := NewClientRegistry(cfg, aws.Config{}, discardLogger()); err == nil {
		t.Fatal("expected an error for unknown email provider")
	}
}
