// Package throttle gates router calls with two independent mechanisms: a
// process-wide concurrency semaphore and a per-tenant sliding one-minute
// request window. Slot acquisition blocks until capacity frees up; a full
// tenant window fails immediately instead of queueing.
package throttle

import (
	"context"
	"fmt"
	"sync"
	"time"

	app_errors "lingo-load/internal/errors"
	"lingo-load/internal/store"
)

const windowKeyTTL = 2 * time.Minute

// Throttle is safe for concurrent use by all pipeline workers.
type Throttle struct {
	slots           chan struct{}
	store           store.Store
	tenantPerMinute int64
	now             func() time.Time
}

// New creates a Throttle. maxConcurrent bounds simultaneous in-flight router
// calls; tenantPerMinute caps requests per tenant per sliding minute (zero
// disables the tenant window).
func New(s store.Store, maxConcurrent int, tenantPerMinute int64) *Throttle {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Throttle{
		slots:           make(chan struct{}, maxConcurrent),
		store:           s,
		tenantPerMinute: tenantPerMinute,
		now:             time.Now,
	}
}

// Acquire blocks until a concurrency slot is free, then admits the tenant
// through the per-minute window. The returned release function is idempotent
// and must be called on every exit path. When admission fails the slot is
// already released and the returned release is nil.
func (t *Throttle) Acquire(ctx context.Context, tenantID string) (func(), error) {
	select {
	case t.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, app_errors.ErrRequestCancelled
	}

	var once sync.Once
	release := func() {
		once.Do(func() { <-t.slots })
	}

	if t.tenantPerMinute > 0 && tenantID != "" {
		allowed, err := t.admitTenant(tenantID)
		if err != nil {
			release()
			return nil, err
		}
		if !allowed {
			release()
			return nil, app_errors.ErrRateLimitExceeded
		}
	}

	return release, nil
}

// admitTenant increments the tenant's current minute bucket and evaluates a
// sliding window weighted across the current and previous buckets. On
// rejection the increment is rolled back so refused attempts do not extend
// the tenant's lockout.
func (t *Throttle) admitTenant(tenantID string) (bool, error) {
	now := t.now()
	minute := now.Unix() / 60

	currKey := windowKey(tenantID, minute)
	curr, err := t.store.IncrBy(currKey, 1, windowKeyTTL)
	if err != nil {
		return false, fmt.Errorf("rate window update failed: %w", err)
	}

	prev, err := t.store.IncrBy(windowKey(tenantID, minute-1), 0, windowKeyTTL)
	if err != nil {
		return false, fmt.Errorf("rate window read failed: %w", err)
	}

	elapsed := float64(now.Unix()%60) / 60
	weighted := float64(prev)*(1-elapsed) + float64(curr)
	if weighted > float64(t.tenantPerMinute) {
		if _, rbErr := t.store.IncrBy(currKey, -1, windowKeyTTL); rbErr != nil {
			return false, fmt.Errorf("rate window rollback failed: %w", rbErr)
		}
		return false, nil
	}
	return true, nil
}

func windowKey(tenantID string, minute int64) string {
	return fmt.Sprintf("ratelimit:%s:%d", tenantID, minute)
}
