package external

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"renewradar/internal/types"
)

// TwilioAPI defines the subset of the Twilio REST client used by
// TwilioClient. Satisfied by the SDK's Api service; extracted for mocking.
type TwilioAPI interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
	CreateCall(params *twilioapi.CreateCallParams) (*twilioapi.ApiV2010Call, error)
}

// TwilioClientConfig holds the configuration for creating a TwilioClient.
type TwilioClientConfig struct {
	AccountSID string
	AuthToken  string
	// SMSFrom is the E.164 number texts are sent from.
	SMSFrom string
	// VoiceFrom is the E.164 number calls are placed from.
	VoiceFrom string
	// Timeout caps each REST call. The Twilio SDK does not take a context,
	// so this client-level timeout is the only latency bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// TwilioClient implements SMSProvider and VoiceProvider using Twilio's
// Programmable Messaging and Voice APIs.
type TwilioClient struct {
	api       TwilioAPI
	smsFrom   string
	voiceFrom string
	logger    *slog.Logger
}

// NewTwilioClient creates a new TwilioClient with real Twilio credentials.
func NewTwilioClient(cfg TwilioClientConfig) *TwilioClient {
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	return NewTwilioClientWithAPI(rc.Api, cfg)
}

// NewTwilioClientWithAPI creates a TwilioClient with a pre-configured API,
// for testing.
func NewTwilioClientWithAPI(api TwilioAPI, cfg TwilioClientConfig) *TwilioClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TwilioClient{
		api:       api,
		smsFrom:   cfg.SMSFrom,
		voiceFrom: cfg.VoiceFrom,
		logger:    logger,
	}
}

// Send delivers an SMS. The context is honored only for early cancellation;
// once the REST call starts, the configured client timeout bounds it.
func (t *TwilioClient) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", types.NewAppError(types.ErrCodeChannelSendFailed, "SMS send canceled", err)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.smsFrom)
	params.SetBody(body)

	msg, err := t.api.CreateMessage(params)
	if err != nil {
		return "", mapTwilioError(err, types.ErrCodeUpstreamSMSProvider, "SMS")
	}
	if msg.Sid == nil {
		return "", nil
	}
	return *msg.Sid, nil
}

// Call places an automated voice call that reads the script with
// text-to-speech. The script is embedded in inline TwiML.
func (t *TwilioClient) Call(ctx context.Context, to, script string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", types.NewAppError(types.ErrCodeChannelSendFailed, "voice call canceled", err)
	}

	twiml, err := sayTwiml(script)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build call TwiML", err)
	}

	params := &twilioapi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(t.voiceFrom)
	params.SetTwiml(twiml)

	call, err := t.api.CreateCall(params)
	if err != nil {
		return "", mapTwilioError(err, types.ErrCodeUpstreamVoiceProvider, "voice")
	}
	if call.Sid == nil {
		return "", nil
	}
	return *call.Sid, nil
}

// sayTwiml wraps the script in a minimal <Response><Say> document with the
// script XML-escaped.
func sayTwiml(script string) (string, error) {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(script)); err != nil {
		return "", err
	}
	return `<Response><Say voice="Polly.Joanna">` + escaped.String() + `</Say></Response>`, nil
}

// mapTwilioError translates Twilio REST errors into domain AppErrors.
func mapTwilioError(err error, code types.ErrorCode, channel string) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) && restErr.Status == 429 {
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			fmt.Sprintf("Twilio %s rate limit exceeded: %v", channel, err),
			err,
		)
	}
	return types.NewAppError(code, fmt.Sprintf("Twilio %s error: %v", channel, err), err)
}

// Compile-time assertions that TwilioClient satisfies both phone channels.
var (
	_ SMSProvider   = (*TwilioClient)(nil)
	_ VoiceProvider = (*TwilioClient)(nil)
)
