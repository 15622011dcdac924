package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/jaayvee/internal/domain"
	"github.com/MrSnakeDoc/jaayvee/internal/index"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/sources/ventures"
	redisstore "github.com/MrSnakeDoc/jaayvee/internal/store/redis"
)

// VenturesReloader keeps the in-memory catalogue in sync with the
// ventures file, periodically and on manual trigger.
type VenturesReloader struct {
	loader        *ventures.Loader
	mapper        *ventures.Mapper
	store         *redisstore.Store
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewVenturesReloader creates a reloader. store may be nil.
func NewVenturesReloader(
	venturesFile string,
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *VenturesReloader {
	return &VenturesReloader{
		loader:        ventures.NewLoader(venturesFile),
		mapper:        ventures.NewMapper(),
		store:         store,
		index:         idx,
		logger:        log,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalogue once, then keeps reloading in the background.
func (vr *VenturesReloader) Start(ctx context.Context) error {
	if err := vr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	ticker := time.NewTicker(vr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := vr.Reload(ctx); err != nil {
					vr.logger.Error("failed to reload ventures", logger.Error(err))
				}
			case <-vr.manualTrigger:
				vr.logger.Info("manual reload triggered")
				if err := vr.Reload(ctx); err != nil {
					vr.logger.Error("failed to reload ventures", logger.Error(err))
				}
			case <-vr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (vr *VenturesReloader) Stop() {
	close(vr.stopCh)
}

// Reload reads the catalogue file and replaces the index content. Ventures
// dropped from the file stay in the index, disabled, until the garbage
// collector removes them. A file yielding no valid venture leaves the
// current catalogue untouched.
func (vr *VenturesReloader) Reload(ctx context.Context) error {
	file, err := vr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load ventures: %w", err)
	}

	fresh, problems := vr.mapper.MapVentures(file)
	for _, p := range problems {
		vr.logger.Warn("skipping catalogue entry", logger.Error(p))
	}
	if len(fresh) == 0 {
		return fmt.Errorf("failed to map ventures: %w", errors.Join(problems...))
	}

	now := vr.now()
	current := make(map[string]bool, len(fresh))
	for _, v := range fresh {
		current[v.ID] = true
		if prev, ok := vr.index.GetVenture(v.ID); ok && !prev.CreatedAt.IsZero() {
			v.CreatedAt = prev.CreatedAt
		}
	}

	var dropped []*domain.Venture
	for _, existing := range vr.index.GetAllVentures() {
		if current[existing.ID] || !fromCatalogue(existing) {
			continue
		}
		gone := *existing
		if !gone.Disabled {
			gone.Disabled = true
			gone.UpdatedAt = now
		}
		gone.Position = len(fresh) + len(dropped)
		dropped = append(dropped, &gone)
	}
	if len(dropped) > 0 {
		vr.logger.Info("marking removed ventures as disabled",
			logger.Int("count", len(dropped)))
	}

	all := append(fresh, dropped...)
	vr.index.UpdateVentures(all)

	vr.logger.Info("ventures catalogue loaded",
		logger.Int("enabled", len(fresh)),
		logger.Int("disabled", len(dropped)))

	// Redis is a mirror; the memory index stays authoritative.
	if vr.store != nil {
		if err := vr.store.SaveVenturesMany(ctx, all); err != nil {
			vr.logger.Warn("failed to save ventures to redis", logger.Error(err))
		}
	}

	return nil
}

func fromCatalogue(v *domain.Venture) bool {
	for _, s := range v.Sources {
		if s == ventures.SourceCatalogue {
			return true
		}
	}
	return false
}
