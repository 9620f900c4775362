package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/metoffice-weather/internal/weather"
)

const fetchTimeout = 30 * time.Second

// Refresher refreshes the stored snapshot for one location.
type Refresher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically refreshes forecasts for configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	locations []weather.Location
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(locations []weather.Location, interval time.Duration, refresher Refresher, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		locations: locations,
		interval:  interval,
		logger:    logger.With(zap.String("component", "scheduler")),
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The first run
// happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("no locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	s.logger.Info("running forecast refresh job", zap.Int("locations", len(s.locations)))

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			if err := s.refresher.FetchAndStore(ctx, loc); err != nil {
				s.logger.Error("refresh failed", zap.String("location", loc.Key()), zap.Error(err))
			}
		}()
	}
	wg.Wait()
	s.logger.Info("completed forecast refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
