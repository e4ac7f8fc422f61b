package throttle

import (
	"errors"
	"testing"
	"time"
)

func TestCheck_AdmitsUpToLimit(t *testing.T) {
	l := New(Config{Window: time.Minute, Limit: 3})

	for i := 0; i < 3; i++ {
		if err := l.Check("tenant:a", 0); err != nil {
			t.Fatalf("request %d should be admitted: %v", i+1, err)
		}
	}

	err := l.Check("tenant:a", 0)
	if err == nil {
		t.Fatal("fourth request should be rejected")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *throttle.Error, got %T", err)
	}

	if terr.Limit != 3 {
		t.Errorf("expected limit 3 in error, got %d", terr.Limit)
	}
}

func TestCheck_PerKeyOverride(t *testing.T) {
	l := New(Config{Window: time.Minute, Limit: 10})

	if err := l.Check("key:abc", 1); err != nil {
		t.Fatalf("first request should be admitted: %v", err)
	}

	if err := l.Check("key:abc", 1); err == nil {
		t.Fatal("second request should exceed the override of 1")
	}

	// A different key is tracked independently.
	if err := l.Check("key:def", 1); err != nil {
		t.Fatalf("different key should be admitted: %v", err)
	}
}

func TestCheck_WindowReset(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l := New(Config{
		Window: time.Minute,
		Limit:  1,
		Now:    func() time.Time { return now },
	})

	if err := l.Check("tenant:a", 0); err != nil {
		t.Fatalf("first request should be admitted: %v", err)
	}

	if err := l.Check("tenant:a", 0); err == nil {
		t.Fatal("second request in the same window should be rejected")
	}

	now = now.Add(61 * time.Second)

	if err := l.Check("tenant:a", 0); err != nil {
		t.Fatalf("request in a fresh window should be admitted: %v", err)
	}
}

func TestCheck_RetryAfterRoundsUp(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l := New(Config{
		Window: time.Minute,
		Limit:  1,
		Now:    func() time.Time { return now },
	})

	if err := l.Check("tenant:a", 0); err != nil {
		t.Fatalf("first request should be admitted: %v", err)
	}

	now = now.Add(30*time.Second + 500*time.Millisecond)

	err := l.Check("tenant:a", 0)
	if err == nil {
		t.Fatal("second request should be rejected")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *throttle.Error, got %T", err)
	}

	if got := terr.RetryAfterSeconds(); got != 30 {
		t.Errorf("expected retry-after of 30 seconds, got %d", got)
	}
}

func TestSweep_RemovesExpiredBuckets(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	l := New(Config{
		Window: time.Minute,
		Limit:  1,
		Now:    func() time.Time { return now },
	})

	l.Check("tenant:a", 0)
	l.Check("tenant:b", 0)

	now = now.Add(2 * time.Minute)
	l.Sweep()

	if len(l.buckets) != 0 {
		t.Errorf("expected no buckets after sweep, got %d", len(l.buckets))
	}
}
