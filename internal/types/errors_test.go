package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidDate, http.StatusBadRequest},
		{ErrCodeValidationInvalidType, http.StatusBadRequest},
		{ErrCodeAuthKeyMissing, http.StatusUnauthorized},
		{ErrCodeAuthKeyInvalid, http.StatusUnauthorized},
		{ErrCodeEmailBlocked, http.StatusForbidden},
		{ErrCodeUpstreamRateLimited, http.StatusTooManyRequests},
		{ErrCodeSourceUnavailable, http.StatusBadGateway},
		{ErrCodeUpstreamEmailProvider, http.StatusBadGateway},
		{ErrCodeInternalDB, http.StatusInternalServerError},
		{ErrorCode("something_new"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewAppError(ErrCodeChannelSendFailed, "send failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "channel_send_failed: send failed", err.Error())

	var appErr *AppError
	assert.ErrorAs(t, error(err), &appErr)
	assert.Equal(t, ErrCodeChannelSendFailed, appErr.Code)
}

func TestSecretString_Redaction(t *testing.T) {
	s := SecretString("super-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "super-secret", s.Reveal())
	assert.True(t, s.IsSet())
	assert.False(t, SecretString("").IsSet())
}
