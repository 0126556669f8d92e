package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucketAllow(t *testing.T) {
	tb := NewTokenBucket(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if tb.Allow() {
		t.Error("Request over capacity should be denied")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	tb := NewTokenBucket(1, 50*time.Millisecond)

	if !tb.Allow() {
		t.Fatal("First request should be allowed")
	}
	if tb.Allow() {
		t.Fatal("Second request should be denied before refill")
	}

	time.Sleep(60 * time.Millisecond)

	if !tb.Allow() {
		t.Error("Request after refill period should be allowed")
	}
}

func TestTokenBucketReset(t *testing.T) {
	tb := NewTokenBucket(1, time.Minute)

	tb.Allow()
	if tb.Allow() {
		t.Fatal("Bucket should be empty")
	}

	tb.Reset()

	if !tb.Allow() {
		t.Error("Request after reset should be allowed")
	}
}

func TestSlidingWindowAllow(t *testing.T) {
	sw := NewSlidingWindow(2, time.Minute)

	if !sw.Allow() {
		t.Error("First request should be allowed")
	}
	if !sw.Allow() {
		t.Error("Second request should be allowed")
	}
	if sw.Allow() {
		t.Error("Third request should be denied")
	}
}

func TestSlidingWindowExpiry(t *testing.T) {
	sw := NewSlidingWindow(1, 50*time.Millisecond)

	if !sw.Allow() {
		t.Fatal("First request should be allowed")
	}
	if sw.Allow() {
		t.Fatal("Second request should be denied inside the window")
	}

	time.Sleep(60 * time.Millisecond)

	if !sw.Allow() {
		t.Error("Request after window expiry should be allowed")
	}
}

func TestSlidingWindowReset(t *testing.T) {
	sw := NewSlidingWindow(1, time.Minute)

	sw.Allow()
	sw.Reset()

	if !sw.Allow() {
		t.Error("Request after reset should be allowed")
	}
}

func TestSlidingWindowWait(t *testing.T) {
	sw := NewSlidingWindow(1, 30*time.Millisecond)

	sw.Allow()

	start := time.Now()
	sw.Wait()
	elapsed := time.Since(start)

	if elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned too early: %v", elapsed)
	}
}
