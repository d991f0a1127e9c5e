package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Strob0t/AdForge/internal/domain"
	"github.com/Strob0t/AdForge/internal/port/scorer"
)

// Refresher rebuilds the credential state of a scoring backend after an
// expiry. Refresh must be idempotent-safe: the invoker ensures at most one
// refresh is in flight per credential set.
type Refresher interface {
	RefreshCredentials(ctx context.Context) error
}

// RetryPolicy bounds the invoker's recovery behavior.
type RetryPolicy struct {
	// MaxAttempts is the total invocation budget for rate-limit failures,
	// including the first call.
	MaxAttempts int
	// Cooldown is the fixed wait between rate-limited attempts.
	Cooldown time.Duration
}

// DefaultRetryPolicy mirrors the backend's documented rate-limit window.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 10, Cooldown: 2 * time.Second}
}

// Invoker wraps a scorer with error classification and bounded recovery:
// rate-limit failures retry after a fixed cooldown, an expired credential
// triggers exactly one shared refresh then one retry, and anything else
// propagates immediately. Terminal failures always surface to the caller
// with their classification intact.
type Invoker struct {
	backend   scorer.Scorer
	refresher Refresher
	policy    RetryPolicy
	group     singleflight.Group

	wait func(ctx context.Context, d time.Duration) error
}

// NewInvoker wraps backend with the given policy. refresher may be nil when
// the backend has no refreshable credentials.
func NewInvoker(backend scorer.Scorer, refresher Refresher, policy RetryPolicy) *Invoker {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Invoker{
		backend:   backend,
		refresher: refresher,
		policy:    policy,
		wait:      sleepCtx,
	}
}

// Score implements scorer.Scorer.
func (iv *Invoker) Score(ctx context.Context, req scorer.Request) (*scorer.Result, error) {
	attempts := 0
	refreshed := false

	for {
		res, err := iv.backend.Score(ctx, req)
		attempts++
		if err == nil {
			return res, nil
		}

		switch {
		case errors.Is(err, domain.ErrCredentialExpired) && !refreshed && iv.refresher != nil:
			slog.Warn("credential expired, refreshing", "actor", req.Actor.ID, "ad", req.AdID)
			if rerr := iv.refresh(ctx); rerr != nil {
				return nil, fmt.Errorf("refresh credentials: %w (after %w)", rerr, err)
			}
			refreshed = true

		case errors.Is(err, domain.ErrRateLimited) && attempts < iv.policy.MaxAttempts:
			slog.Warn("rate limited, cooling down",
				"actor", req.Actor.ID,
				"ad", req.AdID,
				"attempt", attempts,
				"cooldown", iv.policy.Cooldown,
			)
			if werr := iv.wait(ctx, iv.policy.Cooldown); werr != nil {
				return nil, fmt.Errorf("cooldown interrupted: %w (after %w)", werr, err)
			}

		default:
			return nil, fmt.Errorf("score %s for %s (attempt %d): %w", req.AdID, req.Actor.ID, attempts, err)
		}
	}
}

// refresh funnels concurrent refresh requests into a single in-flight call;
// callers arriving while one is running wait for its result instead of
// triggering another.
func (iv *Invoker) refresh(ctx context.Context) error {
	_, err, _ := iv.group.Do("credentials", func() (any, error) {
		return nil, iv.refresher.RefreshCredentials(ctx)
	})
	return err
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
