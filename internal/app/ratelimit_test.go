package app

import (
	"testing"
	"time"
)

func TestSlidingLimiter(t *testing.T) {
	l := newSlidingLimiter(3, 10*time.Second)
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if !l.Allow("k", now) {
			t.Fatalf("attempt %d blocked below limit", i+1)
		}
	}
	if l.Allow("k", now) {
		t.Fatal("fourth attempt allowed within window")
	}
	if !l.Allow("other", now) {
		t.Fatal("keys must be independent")
	}

	// the first attempt ages out of the window
	if !l.Allow("k", now.Add(11*time.Second)) {
		t.Fatal("attempt blocked after window slid")
	}
}

func TestSlidingLimiterDisabled(t *testing.T) {
	l := newSlidingLimiter(0, time.Second)
	now := time.Now()
	for i := 0; i < 100; i++ {
		if !l.Allow("k", now) {
			t.Fatal("disabled limiter must always allow")
		}
	}
}

func TestSlidingLimiterForget(t *testing.T) {
	l := newSlidingLimiter(1, time.Minute)
	now := time.Now()
	if !l.Allow("k", now) {
		t.Fatal("first attempt blocked")
	}
	if l.Allow("k", now) {
		t.Fatal("second attempt allowed")
	}
	l.Forget("k")
	if !l.Allow("k", now) {
		t.Fatal("history must reset after Forget")
	}
}
