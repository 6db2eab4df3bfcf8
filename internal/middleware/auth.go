package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/apperr"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/auth"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
)

// RequestAuthenticator resolves an Authorization header to a principal.
type RequestAuthenticator interface {
	Authenticate(ctx context.Context, header string) (auth.Result, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator RequestAuthenticator
	Metrics       metrics.Recorder
}

// Authenticate returns a middleware that requires valid credentials.
// Rejected requests never reach next; the response carries only the
// generic rejection reason.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			result, err := cfg.Authenticator.Authenticate(r.Context(), r.Header.Get("Authorization"))
			recorder.ObserveAuthDuration(time.Since(start))

			if err != nil {
				recorder.IncAuthError()
				cfg.Logger.Error("credential store error during auth",
					slog.String("error", err.Error()),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, apperr.InternalMessage)
				return
			}

			if result.Outcome != auth.Verified {
				reason := reasonLabel(result.Reason)
				recorder.IncAuthRejected(reason)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, string(result.Reason))
				return
			}

			recorder.IncAuthVerified(result.Principal.Scheme)
			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", result.Principal.UserID),
				slog.String("scheme", result.Principal.Scheme),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), result.Principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reasonLabel(r auth.Reason) string {
	if r == auth.ReasonMissingCredentials {
		return "missing_credentials"
	}
	return "unauthorized"
}
