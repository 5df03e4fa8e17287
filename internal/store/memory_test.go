package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMemoryStore_SetGet tests basic set and get operations
func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "test_key"
	value := []byte("test_value")

	err := store.Set(key, value, 0)
	require.NoError(t, err)

	retrieved, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, retrieved)
}

// TestMemoryStore_GetNonExistent tests getting a non-existent key
func TestMemoryStore_GetNonExistent(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	_, err := store.Get("non_existent")
	assert.Equal(t, ErrNotFound, err)
}

// TestMemoryStore_SetWithTTL tests set with TTL
func TestMemoryStore_SetWithTTL(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "ttl_key"
	value := []byte("ttl_value")
	ttl := 100 * time.Millisecond

	err := store.Set(key, value, ttl)
	require.NoError(t, err)

	retrieved, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, retrieved)

	// Wait for expiration using Eventually to avoid flakiness
	require.Eventually(t, func() bool {
		_, err = store.Get(key)
		return err == ErrNotFound
	}, time.Second, 10*time.Millisecond, "Key should expire after TTL")
}

// TestMemoryStore_Delete tests delete operation
func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "delete_key"

	err := store.Set(key, []byte("delete_value"), 0)
	require.NoError(t, err)

	err = store.Delete(key)
	require.NoError(t, err)

	_, err = store.Get(key)
	assert.Equal(t, ErrNotFound, err)
}

// TestMemoryStore_Exists tests exists operation
func TestMemoryStore_Exists(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "exists_key"

	exists, err := store.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Set(key, []byte("exists_value"), 0)
	require.NoError(t, err)

	exists, err = store.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)
}

// TestMemoryStore_SetNX tests set-if-not-exists semantics
func TestMemoryStore_SetNX(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "setnx_key"

	ok, err := store.SetNX(key, []byte("first"), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetNX(key, []byte("second"), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	value, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), value)
}

// TestMemoryStore_SetNXAfterExpiry tests that SetNX succeeds once the previous
// value has expired
func TestMemoryStore_SetNXAfterExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "setnx_expiry_key"

	ok, err := store.SetNX(key, []byte("first"), 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Eventually(t, func() bool {
		ok, err := store.SetNX(key, []byte("second"), 0)
		return err == nil && ok
	}, time.Second, 10*time.Millisecond, "SetNX should succeed after expiry")
}

// TestMemoryStore_IncrBy tests counter increments
func TestMemoryStore_IncrBy(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "counter_key"

	total, err := store.IncrBy(key, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	total, err = store.IncrBy(key, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)

	// Negative delta rolls the counter back
	total, err = store.IncrBy(key, -8, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

// TestMemoryStore_IncrByZeroReads tests that a zero delta reads the counter
// without changing it
func TestMemoryStore_IncrByZeroReads(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "counter_read_key"

	_, err := store.IncrBy(key, 42, 0)
	require.NoError(t, err)

	total, err := store.IncrBy(key, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
}

// TestMemoryStore_IncrByTTLOnCreate tests that the TTL applies only when the
// counter is first created
func TestMemoryStore_IncrByTTLOnCreate(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	key := "counter_ttl_key"

	_, err := store.IncrBy(key, 1, 50*time.Millisecond)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		total, err := store.IncrBy(key, 1, 50*time.Millisecond)
		return err == nil && total == 1
	}, time.Second, 10*time.Millisecond, "Counter should restart after expiry")
}

// TestMemoryStore_TypeMismatch tests value/counter type confusion
func TestMemoryStore_TypeMismatch(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	err := store.Set("value_key", []byte("value"), 0)
	require.NoError(t, err)
	_, err = store.IncrBy("value_key", 1, 0)
	assert.Error(t, err)

	_, err = store.IncrBy("counter_key", 1, 0)
	require.NoError(t, err)
	_, err = store.Get("counter_key")
	assert.Error(t, err)
}

// TestMemoryStore_Clear tests removing all data
func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Set("a", []byte("1"), 0))
	require.NoError(t, store.Set("b", []byte("2"), 0))

	err := store.Clear()
	require.NoError(t, err)

	_, err = store.Get("a")
	assert.Equal(t, ErrNotFound, err)
	_, err = store.Get("b")
	assert.Equal(t, ErrNotFound, err)
}

// TestMemoryStore_ConcurrentIncrBy tests that concurrent increments do not
// lose updates
func TestMemoryStore_ConcurrentIncrBy(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	const goroutines = 20
	const perGoroutine = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				_, err := store.IncrBy("shared_counter", 1, 0)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	total, err := store.IncrBy("shared_counter", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*perGoroutine), total)
}

// TestMemoryStore_CloseIdempotent tests that Close can be called repeatedly
func TestMemoryStore_CloseIdempotent(t *testing.T) {
	store := NewMemoryStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
