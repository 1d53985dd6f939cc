package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RefreshTimeout bounds a single scheduled catalog reload.
const RefreshTimeout = 30 * time.Second

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Reloader refreshes the in-memory catalog from the store.
type Reloader interface {
	ReloadCatalog(ctx context.Context) error
}

// StartCatalogRefresh schedules periodic catalog reloads. An empty spec
// disables the job and returns a nil scheduler.
func StartCatalogRefresh(spec string, reloader Reloader) (*cron.Cron, error) {
	if spec == "" {
		zap.S().Info("catalog refresh job disabled")
		return nil, nil
	}

	sched := cron.New(cron.WithParser(cronParser))
	if _, err := sched.AddFunc(spec, func() { RefreshCatalog(reloader) }); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_REFRESH spec %q: %w", spec, err)
	}
	sched.Start()
	zap.S().Infof("catalog refresh scheduled: %s", spec)
	return sched, nil
}

// RefreshCatalog runs one reload and logs the outcome.
func RefreshCatalog(reloader Reloader) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Errorf("catalog refresh panicked: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), RefreshTimeout)
	defer cancel()

	start := time.Now()
	if err := reloader.ReloadCatalog(ctx); err != nil {
		zap.S().Warnf("catalog refresh failed: %v", err)
		return
	}
	zap.S().Debugf("catalog refreshed in %s", time.Since(start))
}
