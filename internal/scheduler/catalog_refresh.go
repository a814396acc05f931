package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CatalogRefresher refreshes the mutual-fund scheme catalog.
type CatalogRefresher interface {
	RefreshCatalog(ctx context.Context) (int, error)
}

// CatalogRefreshJob keeps the fund catalog warm. It runs once at startup
// and then every 24 hours; a failed refresh leaves the previous catalog in
// place and is retried at the next tick.
type CatalogRefreshJob struct {
	refresher CatalogRefresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewCatalogRefreshJob creates the catalog refresh job.
func NewCatalogRefreshJob(refresher CatalogRefresher, log zerolog.Logger) *CatalogRefreshJob {
	return &CatalogRefreshJob{
		refresher: refresher,
		timeout:   5 * time.Minute,
		log:       log.With().Str("job", "catalog_refresh").Logger(),
	}
}

// Name returns the job name
func (j *CatalogRefreshJob) Name() string {
	return "catalog_refresh"
}

// Run fetches the full catalog and replaces the cached copy.
func (j *CatalogRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	count, err := j.refresher.RefreshCatalog(ctx)
	if err != nil {
		return err
	}

	j.log.Info().Int("schemes", count).Msg("Catalog refresh complete")
	return nil
}
