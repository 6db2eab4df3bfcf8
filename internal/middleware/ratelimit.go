package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/auth"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/cache"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/metrics"
)

// RateLimiter checks token buckets.
type RateLimiter interface {
	CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*cache.RateLimitResult, error)
	CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	Metrics metrics.Recorder
	Enabled bool

	// Per client IP, applied to every /api request.
	IPRPS   int
	IPBurst int

	// Per authenticated user.
	UserRPM   int
	UserBurst int
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// Limiter errors fail open.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			result, err := cfg.Limiter.CheckIPRateLimit(r.Context(), ip, cfg.IPRPS, cfg.IPBurst)
			if err != nil {
				cfg.Logger.Error("IP rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				cfg.reject(w, r, result, slog.String("type", "ip"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitUser returns middleware that rate limits per authenticated user.
// Must be applied after Authenticate.
func RateLimitUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if !cfg.Enabled || cfg.Limiter == nil || principal == nil {
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.CheckUserRateLimit(r.Context(), principal.UserID, cfg.UserRPM, cfg.UserBurst)
			if err != nil {
				cfg.Logger.Error("user rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("user_id", principal.UserID),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.UserRPM, result.Remaining, result.ResetAt)

			if !result.Allowed {
				cfg.reject(w, r, result, slog.String("type", "user"), slog.String("user_id", principal.UserID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (cfg RateLimitConfig) reject(w http.ResponseWriter, r *http.Request, result *cache.RateLimitResult, attrs ...any) {
	if cfg.Metrics != nil {
		cfg.Metrics.IncRateLimited()
	}
	retryAfter := int(result.RetryAfter.Seconds())
	attrs = append(attrs,
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.Int("retry_after_seconds", retryAfter),
		slog.String("request_id", GetRequestID(r.Context())),
	)
	cfg.Logger.Warn("rate limit exceeded", attrs...)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeError(w, http.StatusTooManyRequests,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter))
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// getClientIP returns the host part of RemoteAddr. Proxy headers are
// resolved once, by chi's RealIP, before this middleware runs.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
