package scheduler

import (
	"context"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/logger"
)

// IndexPruner removes index entries that point at deleted notes.
type IndexPruner interface {
	PruneOwnerIndexes(ctx context.Context) (int, error)
}

// IndexGC periodically cleans owner indexes of the redis store
type IndexGC struct {
	pruner   IndexPruner
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewIndexGC creates a new index garbage collector
func NewIndexGC(pruner IndexPruner, log logger.Logger, interval time.Duration) *IndexGC {
	return &IndexGC{
		pruner:   pruner,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a first collection and then one per interval.
func (gc *IndexGC) Start(ctx context.Context) {
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial index collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("index collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the garbage collector
func (gc *IndexGC) Stop() {
	close(gc.stopCh)
}

// Collect prunes dangling index entries once.
func (gc *IndexGC) Collect(ctx context.Context) error {
	removed, err := gc.pruner.PruneOwnerIndexes(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		gc.logger.Info("pruned dangling note index entries",
			logger.Int("removed", removed))
	} else {
		gc.logger.Debug("no index entries to prune")
	}
	return nil
}
