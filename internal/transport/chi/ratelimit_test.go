package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serveLimited(handler http.Handler, owner string) int {
	req := httptest.NewRequest("GET", "/search", http.NoBody)
	if owner != "" {
		req = req.WithContext(ContextWithOwner(req.Context(), owner))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Code
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_Disabled(t *testing.T) {
	h := OwnerRateLimitMiddleware(RateLimit{})(okHandler())
	for range 50 {
		if code := serveLimited(h, "u1"); code != http.StatusOK {
			t.Fatalf("got %d with rate limiting disabled", code)
		}
	}
}

func TestRateLimit_PerOwnerBudget(t *testing.T) {
	h := OwnerRateLimitMiddleware(RateLimit{RequestsPerSecond: 0.001, Burst: 2})(okHandler())

	for i := range 2 {
		if code := serveLimited(h, "u1"); code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i, code)
		}
	}
	if code := serveLimited(h, "u1"); code != http.StatusTooManyRequests {
		t.Errorf("over budget: got %d, want 429", code)
	}
	if code := serveLimited(h, "u2"); code != http.StatusOK {
		t.Errorf("other owner: got %d, want 200", code)
	}
	if code := serveLimited(h, ""); code != http.StatusOK {
		t.Errorf("no owner: got %d, want 200", code)
	}
}

func TestOwnerLimiters_EvictsIdle(t *testing.T) {
	l := newOwnerLimiters(RateLimit{RequestsPerSecond: 1})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.allow("u1") {
		t.Fatal("first request denied")
	}
	if l.allow("u1") {
		t.Fatal("burst of 1 should deny the second request")
	}

	now = now.Add(limiterIdleTTL + limiterSweepEvery)
	l.allow("u2")

	if _, ok := l.limiters["u1"]; ok {
		t.Error("idle limiter not evicted")
	}
	if _, ok := l.limiters["u2"]; !ok {
		t.Error("active limiter missing")
	}
}
