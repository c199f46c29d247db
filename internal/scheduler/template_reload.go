package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/logger"
	"github.com/cloudnotes/cloudnotes/internal/templates"
)

// TemplateReloader handles periodic reloading of note templates
type TemplateReloader struct {
	loader        *templates.Loader
	mapper        *templates.Mapper
	catalog       *templates.Catalog
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewTemplateReloader creates a new template reloader. A send on
// manualTrigger forces a reload between ticks.
func NewTemplateReloader(
	templateFile string,
	catalog *templates.Catalog,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *TemplateReloader {
	return &TemplateReloader{
		loader:        templates.NewLoader(templateFile),
		mapper:        templates.NewMapper(),
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads templates once and then keeps reloading them in the background.
// A failing initial load is fatal; later failures keep the previous set.
func (tr *TemplateReloader) Start(ctx context.Context) error {
	if err := tr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	ticker := time.NewTicker(tr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := tr.Reload(ctx); err != nil {
					tr.logger.Error("failed to reload templates",
						logger.Error(err))
				}
			case <-tr.manualTrigger:
				tr.logger.Info("manual reload triggered")
				if err := tr.Reload(ctx); err != nil {
					tr.logger.Error("failed to reload templates",
						logger.Error(err))
				}
			case <-tr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (tr *TemplateReloader) Stop() {
	close(tr.stopCh)
}

// Reload parses the template source and swaps the catalog contents.
func (tr *TemplateReloader) Reload(_ context.Context) error {
	config, err := tr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	list, err := tr.mapper.MapTemplates(config)
	if err != nil {
		return fmt.Errorf("failed to map templates: %w", err)
	}

	tr.catalog.Replace(list)
	tr.logger.Info("templates loaded",
		logger.String("source", tr.loader.Source()),
		logger.Int("count", len(list)))
	return nil
}
