package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler re-runs the forecast on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	schedule string
	timeout  time.Duration
	logger   *logrus.Logger
}

// NewScheduler registers a forecast job on schedule, a standard five-field
// cron expression. Each run is cancelled after timeout when it is positive.
func NewScheduler(service *Service, schedule string, timeout time.Duration, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.VerbosePrintfLogger(logger))),
		service:  service,
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.runJob); err != nil {
		return nil, fmt.Errorf("adding forecast job %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	entries := s.cron.Entries()
	fields := logrus.Fields{"component": "scheduler", "schedule": s.schedule}
	if len(entries) > 0 {
		fields["next_run"] = entries[0].Next
	}
	s.logger.WithFields(fields).Info("Forecast scheduler started")
}

// Stop halts the scheduler and waits for a running job, up to the context
// deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.WithField("component", "scheduler").Info("Forecast scheduler stopped")
	case <-ctx.Done():
		s.logger.WithField("component", "scheduler").Warn("Forecast scheduler stop timed out")
	}
}

func (s *Scheduler) runJob() {
	log := s.logger.WithField("component", "scheduler")
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Scheduled forecast panicked")
		}
	}()

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.service.Forecast(ctx, Params{})
	if err != nil {
		log.WithError(err).Error("Scheduled forecast failed")
		return
	}
	log.WithFields(logrus.Fields{
		"forecast_id": res.ID.String(),
		"duration":    time.Since(start),
	}).Info("Scheduled forecast finished")
}
