package chi

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit is the per-owner token bucket. Zero RequestsPerSecond disables it.
type RateLimit struct {
	RequestsPerSecond float64
	Burst             int
}

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

type ownerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ownerLimiters hands out one token bucket per owner and forgets idle ones.
type ownerLimiters struct {
	mu        sync.Mutex
	cfg       RateLimit
	limiters  map[string]*ownerLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newOwnerLimiters(cfg RateLimit) *ownerLimiters {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &ownerLimiters{
		cfg:      cfg,
		limiters: make(map[string]*ownerLimiter),
		now:      time.Now,
	}
}

func (l *ownerLimiters) allow(owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		for k, ol := range l.limiters {
			if now.Sub(ol.lastSeen) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	ol, ok := l.limiters[owner]
	if !ok {
		ol = &ownerLimiter{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.limiters[owner] = ol
	}
	ol.lastSeen = now
	return ol.limiter.AllowN(now, 1)
}

// OwnerRateLimitMiddleware rejects requests over the owner's budget with 429.
// It must run after OwnerAuthMiddleware; requests without an owner pass.
func OwnerRateLimitMiddleware(cfg RateLimit) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiters := newOwnerLimiters(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := OwnerFromContext(r.Context())
			if owner != "" && !limiters.allow(owner) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
