package budget

import (
	"sync"
	"testing"
	"time"

	"lingo-load/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T, dailyCap int64) *Ledger {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return NewLedger(s, dailyCap)
}

func TestTryReserve_UnderCap(t *testing.T) {
	l := newTestLedger(t, 1000)

	ok, err := l.TryReserve("contoso", 400)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.TryReserve("contoso", 600)
	require.NoError(t, err)
	assert.True(t, ok)

	spent, err := l.Spent("contoso")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), spent)
}

func TestTryReserve_OvershootRollsBack(t *testing.T) {
	l := newTestLedger(t, 1000)

	ok, err := l.TryReserve("contoso", 900)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.TryReserve("contoso", 200)
	require.NoError(t, err)
	assert.False(t, ok)

	// The refused reservation must not consume budget.
	spent, err := l.Spent("contoso")
	require.NoError(t, err)
	assert.Equal(t, int64(900), spent)

	// A smaller reservation still fits.
	ok, err = l.TryReserve("contoso", 100)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTryReserve_TenantsIsolated(t *testing.T) {
	l := newTestLedger(t, 500)

	ok, err := l.TryReserve("contoso", 500)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.TryReserve("fabrikam", 500)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTryReserve_ConcurrentNoDoubleSpend(t *testing.T) {
	l := newTestLedger(t, 1000)

	var wg sync.WaitGroup
	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.TryReserve("contoso", 700)
			require.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for ok := range results {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 1, granted, "exactly one of two jointly-exceeding reservations may succeed")

	spent, err := l.Spent("contoso")
	require.NoError(t, err)
	assert.Equal(t, int64(700), spent)
}

func TestRelease_ReturnsReservation(t *testing.T) {
	l := newTestLedger(t, 1000)

	ok, err := l.TryReserve("contoso", 800)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Release("contoso", 800))

	ok, err = l.TryReserve("contoso", 1000)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTryReserve_DisabledCap(t *testing.T) {
	l := newTestLedger(t, 0)

	ok, err := l.TryReserve("contoso", 1<<40)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDayKey_RollsOverAtMidnight(t *testing.T) {
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })

	l := NewLedger(s, 100)
	day := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return day }

	ok, err := l.TryReserve("contoso", 100)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.TryReserve("contoso", 1)
	require.NoError(t, err)
	require.False(t, ok)

	// The next day starts with a fresh counter.
	l.now = func() time.Time { return day.Add(2 * time.Hour) }
	ok, err = l.TryReserve("contoso", 100)
	require.NoError(t, err)
	assert.True(t, ok)
}
