package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/trogers1052/bond-curve-service/internal/builder"
	"github.com/trogers1052/bond-curve-service/internal/cache"
	"github.com/trogers1052/bond-curve-service/internal/config"
	"github.com/trogers1052/bond-curve-service/internal/fred"
	"github.com/trogers1052/bond-curve-service/internal/models"
)

// RefreshLogStore records refresh runs. *database.DB satisfies it.
type RefreshLogStore interface {
	CreateRefreshLog(l *models.RefreshLog) error
	FinishRefreshLog(l *models.RefreshLog) error
}

// EventPublisher publishes refresh outcomes. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishRefreshCompleted(ctx context.Context, curveType string, successful, failed int) error
}

// Scheduler runs the daily curve refresh: fetch raw yields from FRED, rebuild
// both curve families over the lookback window, and derive spread curves.
// It also backs the manual refresh endpoint.
type Scheduler struct {
	fred      *fred.Client
	treasury  *builder.CurveBuilder
	corporate *builder.CorporateCurveBuilder
	logs      RefreshLogStore
	publisher EventPublisher
	cache     *cache.Cache

	schedule     string
	lookbackDays int
	ratings      []string

	cron *cron.Cron
}

// New creates a Scheduler. publisher and logs may be nil; cache may be a nil
// (disabled) cache.
func New(client *fred.Client, treasury *builder.CurveBuilder, corporate *builder.CorporateCurveBuilder, logs RefreshLogStore, publisher EventPublisher, c *cache.Cache, cfg config.CurveConfig) *Scheduler {
	return &Scheduler{
		fred:         client,
		treasury:     treasury,
		corporate:    corporate,
		logs:         logs,
		publisher:    publisher,
		cache:        c,
		schedule:     cfg.RefreshSchedule,
		lookbackDays: cfg.LookbackDays,
		ratings:      config.SpreadRatings(),
	}
}

// Start registers the refresh job and starts the cron loop
func (s *Scheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Scheduled curve refresh: %s (lookback %d days)", s.schedule, s.lookbackDays)
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) runScheduled() {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -s.lookbackDays)
	if _, _, err := s.refresh("scheduled", start, end); err != nil {
		log.Printf("Scheduled refresh failed: %v", err)
	}
}

// RunInitialLoad fetches and builds the full history back to startDate. Used
// on first deployment against an empty database.
func (s *Scheduler) RunInitialLoad(startDate time.Time) error {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	_, _, err := s.refresh("initial_load", startDate, end)
	return err
}

// Refresh rebuilds both curve families over [start, end]. It implements the
// manual refresh endpoint.
func (s *Scheduler) Refresh(start, end time.Time) (successful, failed int, err error) {
	return s.refresh("manual", start, end)
}

func (s *Scheduler) refresh(updateType string, start, end time.Time) (successful, failed int, err error) {
	ctx := context.Background()

	entry := &models.RefreshLog{
		UpdateType: updateType,
		Status:     models.RefreshStatusRunning,
		StartTime:  time.Now(),
	}
	if s.logs != nil {
		if err := s.logs.CreateRefreshLog(entry); err != nil {
			log.Printf("Failed to create refresh log: %v", err)
		}
	}

	processed, fetchErr := s.ingest(ctx, start, end)
	entry.RecordsProcessed = processed

	tSuccessful, tFailed, tErr := s.treasury.BuildCurvesForDateRange(start, end)
	cSuccessful, cFailed, cErr := s.corporate.BuildCurvesForDateRange(start, end)
	successful = tSuccessful + cSuccessful
	failed = tFailed + cFailed

	spreads := s.buildSpreads(start, end)
	log.Printf("Refresh %s: %d curves built, %d failed, %d spread curves stored", updateType, successful, failed, spreads)

	entry.RecordsUpdated = successful
	entry.RecordsFailed = failed
	switch {
	case tErr != nil || cErr != nil:
		err = tErr
		if err == nil {
			err = cErr
		}
		entry.Status = models.RefreshStatusFailed
		entry.ErrorMessage = err.Error()
	case fetchErr != nil || failed > 0:
		entry.Status = models.RefreshStatusPartial
		if fetchErr != nil {
			entry.ErrorMessage = fetchErr.Error()
		}
	default:
		entry.Status = models.RefreshStatusSuccess
	}

	if s.logs != nil && entry.ID != 0 {
		if logErr := s.logs.FinishRefreshLog(entry); logErr != nil {
			log.Printf("Failed to finish refresh log: %v", logErr)
		}
	}

	if err != nil {
		return successful, failed, err
	}

	s.publish(ctx, tSuccessful, tFailed, cSuccessful, cFailed)
	s.invalidateCache(ctx)
	return successful, failed, nil
}

// ingest fetches raw yields from FRED for both families and stores them.
// Returns the number of observations upserted and the first fetch error, if
// any; partial data is still stored.
func (s *Scheduler) ingest(ctx context.Context, start, end time.Time) (int, error) {
	processed := 0

	treasuryObs, tErr := s.fred.FetchAll(ctx, config.TreasurySeries(), models.DataTypeTreasury, start, end)
	if len(treasuryObs) > 0 {
		n, err := s.treasury.StoreRawData(treasuryObs)
		if err != nil {
			return processed, err
		}
		processed += n
	}

	corporateObs, cErr := s.fred.FetchAll(ctx, config.CorporateSeries(), models.DataTypeCorporate, start, end)
	if len(corporateObs) > 0 {
		n, err := s.corporate.StoreRawData(corporateObs)
		if err != nil {
			return processed, err
		}
		processed += n
	}

	if tErr != nil {
		return processed, tErr
	}
	return processed, cErr
}

func (s *Scheduler) buildSpreads(start, end time.Time) int {
	stored := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		n, err := s.corporate.BuildSpreadCurvesForDate(s.ratings, d)
		if err != nil {
			log.Printf("Failed to build spread curves for %s: %v", d.Format("2006-01-02"), err)
			continue
		}
		stored += n
	}
	return stored
}

func (s *Scheduler) publish(ctx context.Context, tSuccessful, tFailed, cSuccessful, cFailed int) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRefreshCompleted(ctx, models.DataTypeTreasury, tSuccessful, tFailed); err != nil {
		log.Printf("Failed to publish treasury refresh event: %v", err)
	}
	if err := s.publisher.PublishRefreshCompleted(ctx, models.DataTypeCorporate, cSuccessful, cFailed); err != nil {
		log.Printf("Failed to publish corporate refresh event: %v", err)
	}
}

func (s *Scheduler) invalidateCache(ctx context.Context) {
	keys := []string{
		cache.LatestCurveKey(models.DataTypeTreasury),
		cache.LatestCurveKey(models.DataTypeCorporate),
	}
	for _, rating := range s.ratings {
		keys = append(keys, cache.LatestSpreadKey(rating))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		log.Printf("Failed to invalidate cache: %v", err)
	}
}
