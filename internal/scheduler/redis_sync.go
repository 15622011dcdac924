package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/jaayvee/internal/index"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	redisstore "github.com/MrSnakeDoc/jaayvee/internal/store/redis"
)

// RedisSyncer warms the memory index from the Redis mirror on startup, so
// ventures soft-disabled by a previous process are still known (and
// eventually collected) after a restart.
type RedisSyncer struct {
	store  *redisstore.Store
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		index:  idx,
		logger: log,
	}
}

// Sync loads ventures from Redis into the memory index.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	mirrored, err := rs.store.GetAllVentures(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync ventures from redis: %w", err)
	}

	if len(mirrored) == 0 {
		rs.logger.Info("no ventures found in redis")
		return nil
	}

	rs.index.UpdateVentures(mirrored)
	rs.logger.Info("synced ventures from redis",
		logger.Int("count", len(mirrored)))
	return nil
}
