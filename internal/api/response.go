// Package api implements the RenewRadar HTTP surface: the health endpoint
// and the authenticated internal trigger that starts a notification run.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"renewradar/internal/types"
)

// APIErrorResponse is the JSON error envelope returned by every endpoint.
type APIErrorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// writeJSON serializes v with the given status. Serialization failures are
// logged and abandoned; headers are already written at that point.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

// writeError maps an error to the standard envelope. AppErrors carry their
// own status; anything else is a 500 with a generic message so internals
// never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := types.ErrCodeInternalUnexpected
	message := "an unexpected error occurred"

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}

	var resp APIErrorResponse
	resp.Error.Code = string(code)
	resp.Error.Message = message
	resp.Error.RequestID = types.GetRequestID(r.Context())
	writeJSON(w, code.HTTPStatus(), resp)
}
