package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// memoryItem holds a value and its expiration timestamp.
type memoryItem struct {
	value     []byte
	counter   int64
	isCounter bool
	expiresAt int64 // Unix-nano timestamp. 0 for no expiry.
}

func (it memoryItem) expired(now int64) bool {
	return it.expiresAt > 0 && now > it.expiresAt
}

// MemoryStore is an in-memory Store implementation safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	data        map[string]memoryItem
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewMemoryStore creates a MemoryStore and starts its background cleanup
// goroutine so expired entries that are never read again do not accumulate.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		data:        make(map[string]memoryItem),
		stopCleanup: make(chan struct{}),
	}
	go s.cleanupExpiredItems()
	return s
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// Set stores a key-value pair.
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().UnixNano() + ttl.Nanoseconds()
	}
	s.data[key] = memoryItem{value: value, expiresAt: expiresAt}
	return nil
}

// Get retrieves a value by its key.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	item, exists := s.data[key]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}
	if item.expired(time.Now().UnixNano()) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if item.isCounter {
		return nil, fmt.Errorf("type mismatch: key '%s' holds a counter", key)
	}
	return item.value, nil
}

// Delete removes a value by its key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Exists checks if a key exists.
func (s *MemoryStore) Exists(key string) (bool, error) {
	s.mu.RLock()
	item, exists := s.data[key]
	s.mu.RUnlock()

	if !exists {
		return false, nil
	}
	if item.expired(time.Now().UnixNano()) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// SetNX sets a key-value pair if the key does not already exist.
func (s *MemoryStore) SetNX(key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, exists := s.data[key]; exists && !item.expired(time.Now().UnixNano()) {
		return false, nil
	}

	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().UnixNano() + ttl.Nanoseconds()
	}
	s.data[key] = memoryItem{value: value, expiresAt: expiresAt}
	return true, nil
}

// IncrBy atomically adds delta to a counter. The check-then-commit runs under
// the store mutex, which is the atomicity the budget ledger relies on.
func (s *MemoryStore) IncrBy(key string, delta int64, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixNano()
	item, exists := s.data[key]
	if exists && item.expired(now) {
		exists = false
	}

	if !exists {
		var expiresAt int64
		if ttl > 0 {
			expiresAt = now + ttl.Nanoseconds()
		}
		s.data[key] = memoryItem{counter: delta, isCounter: true, expiresAt: expiresAt}
		return delta, nil
	}

	if !item.isCounter {
		return 0, fmt.Errorf("type mismatch: key '%s' does not hold a counter", key)
	}
	item.counter += delta
	s.data[key] = item
	return item.counter, nil
}

// Clear removes all data.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]memoryItem)
	return nil
}

// cleanupExpiredItems periodically removes expired items from the store.
func (s *MemoryStore) cleanupExpiredItems() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performCleanup()
		case <-s.stopCleanup:
			logrus.Debug("MemoryStore cleanup goroutine stopped")
			return
		}
	}
}

// performCleanup scans the store and removes expired items.
func (s *MemoryStore) performCleanup() {
	now := time.Now().UnixNano()
	expiredKeys := make([]string, 0, 64)

	s.mu.RLock()
	for key, item := range s.data {
		if item.expired(now) {
			expiredKeys = append(expiredKeys, key)
		}
	}
	s.mu.RUnlock()

	if len(expiredKeys) == 0 {
		return
	}

	removed := 0
	s.mu.Lock()
	for _, key := range expiredKeys {
		// Re-check under the write lock; the entry may have been replaced.
		if item, exists := s.data[key]; exists && item.expired(now) {
			delete(s.data, key)
			removed++
		}
	}
	s.mu.Unlock()

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("MemoryStore cleanup: removed %d expired items", removed)
	}
}
