package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBackendDown = errors.New("scoring backend unavailable")

func TestClosedStateAllowsCalls(t *testing.T) {
	b := NewBreaker(3, time.Second)
	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called")
	}
}

func TestOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Second)

	for i := 0; i < 3; i++ {
		_ = b.Do(func() error { return errBackendDown })
	}

	err := b.Do(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestHalfOpenAfterCooloff(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_ = b.Do(func() error { return errBackendDown })
	}

	// Still open inside the cool-off.
	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	now = now.Add(2 * time.Second)

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("expected no error in half-open, got %v", err)
	}
	if !called {
		t.Fatal("expected probe call in half-open")
	}

	b.mu.Lock()
	if b.state != stateClosed {
		t.Fatalf("expected closed after half-open success, got %d", b.state)
	}
	b.mu.Unlock()
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_ = b.Do(func() error { return errBackendDown })
	}

	now = now.Add(2 * time.Second)

	_ = b.Do(func() error { return errBackendDown })

	b.mu.Lock()
	if b.state != stateOpen {
		t.Fatalf("expected open after half-open failure, got %d", b.state)
	}
	b.mu.Unlock()

	if err := b.Do(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after reopen, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(3, time.Second)

	_ = b.Do(func() error { return errBackendDown })
	_ = b.Do(func() error { return errBackendDown })
	_ = b.Do(func() error { return nil })
	_ = b.Do(func() error { return errBackendDown })
	_ = b.Do(func() error { return errBackendDown })

	called := false
	if err := b.Do(func() error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called")
	}
}
