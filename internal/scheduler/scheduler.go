package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-co-op/gocron/v2"
	"github.com/omarshaarawi/ffdata/internal/config"
	"github.com/omarshaarawi/ffdata/internal/logging"
	"github.com/robfig/cron/v3"
)

// Puller is the season pull the scheduler runs.
type Puller interface {
	PullSeason(ctx context.Context) (string, error)
}

type Scheduler struct {
	s           gocron.Scheduler
	cfg         config.Schedule
	puller      Puller
	sendMessage func(string) error
	logger      *logging.Logger

	// ctx bounds scheduled pulls and is cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler validates the cron expression up front so a typo fails at
// startup instead of silently never running. sendMessage may be nil.
func NewScheduler(cfg config.Schedule, puller Puller, sendMessage func(string) error, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if _, err := cron.ParseStandard(cfg.PullCron); err != nil {
		return nil, errors.Wrapf(err, "invalid pull schedule %q", cfg.PullCron)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("Failed to load location, using UTC", "timezone", cfg.Timezone, "error", err)
		location = time.UTC
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scheduler")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:         ctx,
		cancel:      cancel,
		s:           s,
		cfg:         cfg,
		puller:      puller,
		sendMessage: sendMessage,
		logger:      logger,
	}, nil
}

func (s *Scheduler) Start() error {
	// Season re-pull, default Tuesday 08:00 once Monday night scores are final.
	_, err := s.s.NewJob(
		gocron.CronJob(s.cfg.PullCron, false),
		gocron.NewTask(s.pullSeason),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create season pull job")
	}

	s.s.Start()
	s.logger.Info("Scheduler started", "schedule", s.cfg.PullCron, "timezone", s.cfg.Timezone)
	return nil
}

// Stop cancels an in-flight pull, then waits for the scheduler to shut down.
func (s *Scheduler) Stop() error {
	s.cancel()
	return s.s.Shutdown()
}

func (s *Scheduler) pullSeason() {
	path, err := s.puller.PullSeason(s.ctx)
	if err != nil {
		s.logger.Error("Scheduled season pull failed", "error", err)
		s.notify(fmt.Sprintf("⚠️ Scheduled pull failed: %v", err))
		return
	}
	s.logger.Info("Scheduled season pull saved", "path", path)
	s.notify(fmt.Sprintf("✅ Scheduled pull saved to `%s`.", path))
}

func (s *Scheduler) notify(text string) {
	if s.sendMessage == nil {
		return
	}
	if err := s.sendMessage(text); err != nil {
		s.logger.Error("Failed to send scheduler message", "error", err)
	}
}
