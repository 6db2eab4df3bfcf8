package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/apperr"
)

// Recoverer is a middleware that recovers from panics.
// It logs the panic and returns a JSON 500 with an opaque message.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.Any("panic", rvr),
						slog.String("stack", string(debug.Stack())),
					)

					// In development, also print to stderr for visibility
					if os.Getenv("APP_ENV") == "development" {
						debug.PrintStack()
					}

					writeError(w, http.StatusInternalServerError, apperr.InternalMessage)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
