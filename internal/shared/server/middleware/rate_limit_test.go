package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	now := time.Unix(1000, 0)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 2}

	for i := 0; i < 2; i++ {
		allowed, _ := limiter.Allow("client", rule)
		if !allowed {
			t.Fatalf("request %d within burst should pass", i+1)
		}
	}

	allowed, retryAfter := limiter.Allow("client", rule)
	if allowed {
		t.Fatalf("request over burst should be rejected")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected a positive retry hint, got %v", retryAfter)
	}

	// Tokens refill with time.
	now = now.Add(2 * time.Second)
	if allowed, _ := limiter.Allow("client", rule); !allowed {
		t.Fatalf("request after refill should pass")
	}

	// Buckets are per principal.
	if allowed, _ := limiter.Allow("other-client", rule); !allowed {
		t.Fatalf("fresh principal should pass")
	}
}

func TestRateLimiterDisabledRule(t *testing.T) {
	limiter := NewRateLimiter(nil)
	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("client", RateLimitRule{}); !allowed {
			t.Fatalf("zero rule must never throttle")
		}
	}
}
