package external

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"renewradar/internal/types"
)

// newProviderBreaker creates the circuit breaker used around production
// provider clients: trips after 5 consecutive failures, re-probes with a
// single request after 30 seconds.
func newProviderBreaker(name string) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
}

// guard runs fn through the breaker and normalizes open-circuit errors to
// ErrCodeUpstreamRateLimited so callers treat a tripped provider like any
// other transient backoff signal.
func guard(cb *gobreaker.CircuitBreaker[string], fn func() (string, error)) (string, error) {
	id, err := cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			cb.Name()+" circuit open, shedding load",
			err,
		)
	}
	return id, err
}

// BreakerEmailProvider wraps an EmailProvider in a circuit breaker.
type BreakerEmailProvider struct {
	inner EmailProvider
	cb    *gobreaker.CircuitBreaker[string]
}

// NewBreakerEmailProvider wraps the given provider.
func NewBreakerEmailProvider(inner EmailProvider) *BreakerEmailProvider {
	return &BreakerEmailProvider{inner: inner, cb: newProviderBreaker("email-provider")}
}

func (b *BreakerEmailProvider) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	return guard(b.cb, func() (string, error) {
		return b.inner.Send(ctx, to, subject, htmlBody, textBody)
	})
}

// BreakerSMSProvider wraps an SMSProvider in a circuit breaker.
type BreakerSMSProvider struct {
	inner SMSProvider
	cb    *gobreaker.CircuitBreaker[string]
}

// NewBreakerSMSProvider wraps the given provider.
func NewBreakerSMSProvider(inner SMSProvider) *BreakerSMSProvider {
	return &BreakerSMSProvider{inner: inner, cb: newProviderBreaker("sms-provider")}
}

func (b *BreakerSMSProvider) Send(ctx context.Context, to, body string) (string, error) {
	return guard(b.cb, func() (string, error) {
		return b.inner.Send(ctx, to, body)
	})
}

// BreakerVoiceProvider wraps a VoiceProvider in a circuit breaker.
type BreakerVoiceProvider struct {
	inner VoiceProvider
	cb    *gobreaker.CircuitBreaker[string]
}

// NewBreakerVoiceProvider wraps the given provider.
func NewBreakerVoiceProvider(inner VoiceProvider) *BreakerVoiceProvider {
	return &BreakerVoiceProvider{inner: inner, cb: newProviderBreaker("voice-provider")}
}

func (b *BreakerVoiceProvider) Call(ctx context.Context, to, script string) (string, error) {
	return guard(b.cb, func() (string, error) {
		return b.inner.Call(ctx, to, script)
	})
}

var (
	_ EmailProvider = (*BreakerEmailProvider)(nil)
	_ SMSProvider   = (*BreakerSMSProvider)(nil)
	_ VoiceProvider = (*BreakerVoiceProvider)(nil)
)
