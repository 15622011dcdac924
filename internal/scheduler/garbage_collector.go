package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/jaayvee/internal/index"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	redisstore "github.com/MrSnakeDoc/jaayvee/internal/store/redis"
)

const (
	// DefaultGCThreshold is how long a venture stays disabled before deletion
	DefaultGCThreshold = 30 * 24 * time.Hour // 30 days
)

// GarbageCollector deletes ventures that have been disabled for too long,
// along with their click counters.
type GarbageCollector struct {
	store     *redisstore.Store
	index     *index.MemoryIndex
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		store:     store,
		index:     idx,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) {
	gc.Collect(ctx)

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect(ctx)
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect removes disabled ventures older than the threshold and returns
// how many were deleted. Ventures with no UpdatedAt are kept.
func (gc *GarbageCollector) Collect(ctx context.Context) int {
	now := gc.now()
	deleted := 0

	for _, v := range gc.index.GetAllVentures() {
		if !v.Disabled || v.UpdatedAt.IsZero() {
			continue
		}
		disabledFor := now.Sub(v.UpdatedAt)
		if disabledFor < gc.threshold {
			continue
		}

		gc.index.DeleteVenture(v.ID)

		if gc.store != nil {
			if err := gc.store.DeleteVenture(ctx, v.ID); err != nil {
				gc.logger.Warn("failed to delete venture from redis",
					logger.String("venture_id", v.ID),
					logger.Error(err))
			}
		}

		gc.logger.Info("garbage collected disabled venture",
			logger.String("venture_id", v.ID),
			logger.String("name", v.Name),
			logger.String("disabled_for", disabledFor.String()))
		deleted++
	}

	if deleted == 0 {
		gc.logger.Debug("no ventures to garbage collect")
	}
	return deleted
}
