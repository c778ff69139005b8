package ratelimiter

import (
	"testing"
	"time"
)

func TestRateLimiter_UnderLimitDoesNotBlock(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Second)

	start := time.Now()
	for i := 0; i < 3; i++ {
		rl.WaitIfNeeded()
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("calls under the limit should not block, took %v", elapsed)
	}
}

func TestRateLimiter_OverLimitWaitsForWindow(t *testing.T) {
	t.Parallel()

	interval := 200 * time.Millisecond
	rl := NewRateLimiter(2, interval)

	rl.WaitIfNeeded()
	rl.WaitIfNeeded()

	start := time.Now()
	rl.WaitIfNeeded() // third call exceeds the window limit
	elapsed := time.Since(start)

	if elapsed < interval/2 {
		t.Errorf("expected the limiter to sleep close to the window, waited only %v", elapsed)
	}
}

func TestRateLimiter_WindowResetClearsCount(t *testing.T) {
	t.Parallel()

	interval := 100 * time.Millisecond
	rl := NewRateLimiter(1, interval)

	rl.WaitIfNeeded()
	time.Sleep(interval + 20*time.Millisecond)

	start := time.Now()
	rl.WaitIfNeeded()
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("call after window reset should not block, took %v", elapsed)
	}
}
