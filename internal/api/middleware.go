package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"renewradar/internal/types"
)

// requestIDHeader is the correlation header accepted from and echoed to
// clients.
const requestIDHeader = "X-Request-ID"

// RequestID assigns each request a correlation ID, honoring one supplied by
// the caller, and stores it in the context for handlers and logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(types.WithRequestID(r.Context(), id)))
	})
}

// RequestLogger logs one line per request with status and duration.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", types.GetRequestID(r.Context()),
			)
		})
	}
}

// AdminAuth guards internal routes with a shared key carried in the
// X-Admin-Key header. Comparison is constant time.
func AdminAuth(key types.SecretString) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-Admin-Key")
			if presented == "" {
				writeError(w, r, types.NewAppError(types.ErrCodeAuthKeyMissing,
					"missing X-Admin-Key header", nil))
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key.Reveal())) != 1 {
				writeError(w, r, types.NewAppError(types.ErrCodeAuthKeyInvalid,
					"invalid admin key", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
