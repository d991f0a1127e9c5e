package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Strob0t/AdForge/internal/domain"
	"github.com/Strob0t/AdForge/internal/domain/actor"
	"github.com/Strob0t/AdForge/internal/port/scorer"
)

// scriptedBackend returns the queued errors in order, then succeeds.
type scriptedBackend struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (b *scriptedBackend) Score(_ context.Context, _ scorer.Request) (*scorer.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if len(b.errs) > 0 {
		err := b.errs[0]
		b.errs = b.errs[1:]
		return nil, err
	}
	return &scorer.Result{Liking: 4, PurchaseIntent: 3, Commentary: "ok"}, nil
}

func (b *scriptedBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type countingRefresher struct {
	calls atomic.Int32
	block chan struct{} // optional: refresh waits until closed
}

func (r *countingRefresher) RefreshCredentials(_ context.Context) error {
	r.calls.Add(1)
	if r.block != nil {
		<-r.block
	}
	return nil
}

func testRequest() scorer.Request {
	return scorer.Request{
		Actor: actor.Actor{ID: "kyoto"},
		AdID:  "ad-1",
	}
}

func newTestInvoker(backend scorer.Scorer, refresher Refresher) *Invoker {
	iv := NewInvoker(backend, refresher, RetryPolicy{MaxAttempts: 10, Cooldown: time.Second})
	iv.wait = func(_ context.Context, _ time.Duration) error { return nil }
	return iv
}

func TestScoreSucceedsFirstTry(t *testing.T) {
	backend := &scriptedBackend{}
	iv := newTestInvoker(backend, nil)

	res, err := iv.Score(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if res.Liking != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if backend.callCount() != 1 {
		t.Fatalf("expected 1 call, got %d", backend.callCount())
	}
}

func TestRateLimitedRetriesUntilSuccess(t *testing.T) {
	backend := &scriptedBackend{errs: []error{
		domain.ErrRateLimited,
		domain.ErrRateLimited,
		domain.ErrRateLimited,
	}}
	iv := newTestInvoker(backend, nil)

	if _, err := iv.Score(context.Background(), testRequest()); err != nil {
		t.Fatal(err)
	}
	// Three rejections plus the success: four invocations total.
	if backend.callCount() != 4 {
		t.Fatalf("expected 4 calls, got %d", backend.callCount())
	}
}

func TestRateLimitedExhaustsBudget(t *testing.T) {
	errs := make([]error, 12)
	for i := range errs {
		errs[i] = domain.ErrRateLimited
	}
	backend := &scriptedBackend{errs: errs}
	iv := newTestInvoker(backend, nil)

	_, err := iv.Score(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if backend.callCount() != 10 {
		t.Fatalf("expected exactly MaxAttempts calls, got %d", backend.callCount())
	}
}

func TestCredentialExpiredRefreshesOnce(t *testing.T) {
	backend := &scriptedBackend{errs: []error{domain.ErrCredentialExpired}}
	refresher := &countingRefresher{}
	iv := newTestInvoker(backend, refresher)

	if _, err := iv.Score(context.Background(), testRequest()); err != nil {
		t.Fatal(err)
	}
	if backend.callCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", backend.callCount())
	}
	if refresher.calls.Load() != 1 {
		t.Fatalf("expected 1 refresh, got %d", refresher.calls.Load())
	}
}

func TestCredentialExpiredTwicePropagates(t *testing.T) {
	backend := &scriptedBackend{errs: []error{
		domain.ErrCredentialExpired,
		domain.ErrCredentialExpired,
	}}
	refresher := &countingRefresher{}
	iv := newTestInvoker(backend, refresher)

	_, err := iv.Score(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrCredentialExpired) {
		t.Fatalf("expected ErrCredentialExpired, got %v", err)
	}
	if refresher.calls.Load() != 1 {
		t.Fatalf("refresh must run once per expiry, got %d", refresher.calls.Load())
	}
}

func TestUnclassifiedErrorPropagatesImmediately(t *testing.T) {
	boom := errors.New("backend exploded")
	backend := &scriptedBackend{errs: []error{boom, boom, boom}}
	iv := newTestInvoker(backend, nil)

	_, err := iv.Score(context.Background(), testRequest())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if backend.callCount() != 1 {
		t.Fatalf("expected no retry, got %d calls", backend.callCount())
	}
}

func TestMalformedOutputPropagatesImmediately(t *testing.T) {
	backend := &scriptedBackend{errs: []error{domain.ErrMalformedOutput}}
	iv := newTestInvoker(backend, nil)

	_, err := iv.Score(context.Background(), testRequest())
	if !errors.Is(err, domain.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
	if backend.callCount() != 1 {
		t.Fatalf("expected no retry, got %d calls", backend.callCount())
	}
}

func TestConcurrentRefreshIsShared(t *testing.T) {
	refresher := &countingRefresher{block: make(chan struct{})}

	var iv Invoker
	iv.refresher = refresher

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- iv.refresh(context.Background())
		}()
	}

	// All callers pile onto one in-flight refresh.
	time.Sleep(20 * time.Millisecond)
	close(refresher.block)
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatal(err)
		}
	}
	if got := refresher.calls.Load(); got != 1 {
		t.Fatalf("expected a single shared refresh, got %d", got)
	}
}
