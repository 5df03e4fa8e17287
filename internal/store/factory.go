package store

import (
	"lingo-load/internal/types"

	"github.com/sirupsen/logrus"
)

// NewStore creates a Store based on the configuration. When REDIS_DSN is set
// the Redis implementation is used so cache, budget, and rate state are
// shared across nodes; otherwise the process-local memory store is used.
func NewStore(configManager types.ConfigManager) (Store, error) {
	redisDSN := configManager.GetRedisDSN()

	if redisDSN != "" {
		logrus.Info("Using Redis store")
		return NewRedisStore(redisDSN)
	}

	logrus.Info("Using in-memory store")
	return NewMemoryStore(), nil
}
