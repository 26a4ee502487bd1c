package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

type RateLimitConfig struct {
	RequestLimit int
	WindowSize   time.Duration
	// KeyFunc defaults to the client IP.
	KeyFunc httprate.KeyFunc
}

// RateLimit caps requests per key in a sliding window and answers 429 with the
// standard error envelope.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = time.Minute
	}
	retryAfter := strconv.Itoa(int(cfg.WindowSize.Seconds()))

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", retryAfter)
			WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
		}),
	)
}

// KeyByStaffOrIP limits authenticated callers per staff member, falling back to IP.
func KeyByStaffOrIP(r *http.Request) (string, error) {
	if m := StaffFromContext(r.Context()); m != nil {
		return "staff:" + m.ID, nil
	}
	return httprate.KeyByIP(r)
}
