package middleware

import (
	"net/http"
	"time"

	"github.com/childbooklet/booklet-server-go/internal/audit"
	"github.com/childbooklet/booklet-server-go/internal/service"
)

const (
	loginMaxAttempts    = 5
	loginWindowDuration = time.Minute
)

// LoginRateLimiter throttles credential-guessing by client IP. The
// backing window lives in redis when available so the limit holds across
// replicas.
type LoginRateLimiter struct {
	limiter service.RateLimiter
}

func NewLoginRateLimiter(limiter service.RateLimiter) *LoginRateLimiter {
	return &LoginRateLimiter{limiter: limiter}
}

func (l *LoginRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			ip = forwarded
		}

		allowed, _ := l.limiter.CheckLimit(r.Context(), "login:"+ip, loginMaxAttempts, loginWindowDuration)
		if !allowed {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventRateLimitExceed})
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many login attempts. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
