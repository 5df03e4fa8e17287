package throttle

import (
	"context"
	"sync"
	"testing"
	"time"

	app_errors "lingo-load/internal/errors"
	"lingo-load/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThrottle(t *testing.T, maxConcurrent int, perMinute int64) *Throttle {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	th := New(s, maxConcurrent, perMinute)
	// Pin the clock to the start of a minute so the previous bucket carries
	// zero weight and tests are deterministic.
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return fixed }
	return th
}

func TestAcquire_GrantsAndReleases(t *testing.T) {
	th := newTestThrottle(t, 2, 0)

	release1, err := th.Acquire(context.Background(), "contoso")
	require.NoError(t, err)
	release2, err := th.Acquire(context.Background(), "contoso")
	require.NoError(t, err)

	release1()
	release2()

	// Released slots are reusable.
	release3, err := th.Acquire(context.Background(), "contoso")
	require.NoError(t, err)
	release3()
}

func TestAcquire_BlocksWhenSaturated(t *testing.T) {
	th := newTestThrottle(t, 1, 0)

	release, err := th.Acquire(context.Background(), "contoso")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := th.Acquire(context.Background(), "contoso")
		assert.NoError(t, err)
		r()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire must block while the slot is held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never completed after release")
	}
}

func TestAcquire_CancelledWhileWaiting(t *testing.T) {
	th := newTestThrottle(t, 1, 0)

	release, err := th.Acquire(context.Background(), "contoso")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = th.Acquire(ctx, "contoso")
	require.Error(t, err)
	assert.True(t, app_errors.Is(err, app_errors.ErrRequestCancelled))
}

func TestAcquire_TenantWindowCeiling(t *testing.T) {
	th := newTestThrottle(t, 10, 3)

	for i := 0; i < 3; i++ {
		release, err := th.Acquire(context.Background(), "contoso")
		require.NoError(t, err)
		release()
	}

	_, err := th.Acquire(context.Background(), "contoso")
	require.Error(t, err)
	assert.True(t, app_errors.Is(err, app_errors.ErrRateLimitExceeded))

	// The refused attempt released its slot, so another tenant gets through.
	release, err := th.Acquire(context.Background(), "fabrikam")
	require.NoError(t, err)
	release()
}

func TestAcquire_RejectionDoesNotExtendWindow(t *testing.T) {
	th := newTestThrottle(t, 10, 2)

	for i := 0; i < 2; i++ {
		release, err := th.Acquire(context.Background(), "contoso")
		require.NoError(t, err)
		release()
	}

	// Hammering while over the limit must not grow the counter.
	for i := 0; i < 5; i++ {
		_, err := th.Acquire(context.Background(), "contoso")
		require.Error(t, err)
	}

	// One minute later the tenant is admitted again.
	th.now = func() time.Time { return time.Date(2026, 3, 1, 12, 2, 0, 0, time.UTC) }
	release, err := th.Acquire(context.Background(), "contoso")
	require.NoError(t, err)
	release()
}

func TestAcquire_ReleaseIdempotent(t *testing.T) {
	th := newTestThrottle(t, 1, 0)

	release, err := th.Acquire(context.Background(), "contoso")
	require.NoError(t, err)

	release()
	release()

	// Double release must not free a phantom slot.
	r2, err := th.Acquire(context.Background(), "contoso")
	require.NoError(t, err)
	defer r2()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = th.Acquire(ctx, "contoso")
	assert.Error(t, err)
}

func TestAcquire_ConcurrentWindowAccounting(t *testing.T) {
	th := newTestThrottle(t, 32, 10)

	var wg sync.WaitGroup
	granted := make(chan struct{}, 64)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := th.Acquire(context.Background(), "contoso")
			if err == nil {
				granted <- struct{}{}
				release()
			}
		}()
	}
	wg.Wait()
	close(granted)

	count := 0
	for range granted {
		count++
	}
	assert.LessOrEqual(t, count, 10, "window must never admit past its ceiling")
	assert.Greater(t, count, 0)
}
