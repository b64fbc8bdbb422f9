package jobs

import (
	"context"
	"time"

	"github.com/proposalhub/proposalhub-api/internal/config"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs recurring maintenance jobs on cron schedules.
type Scheduler struct {
	cfg              *config.JobsConfig
	cron             *cron.Cron
	webauthnSessions *repository.WebauthnSessionRepository
	linkedInSessions *repository.LinkedInSessionRepository
	logger           *zap.Logger
}

func NewScheduler(
	cfg *config.JobsConfig,
	webauthnSessions *repository.WebauthnSessionRepository,
	linkedInSessions *repository.LinkedInSessionRepository,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:              cfg,
		cron:             cron.New(),
		webauthnSessions: webauthnSessions,
		linkedInSessions: linkedInSessions,
		logger:           logger,
	}
}

// Start registers the jobs and starts the cron loop. It is a no-op when
// jobs are disabled in configuration.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("Background jobs disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.SessionSweepSchedule, s.sweepExpiredSessions); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Background jobs started",
		zap.String("session_sweep_schedule", s.cfg.SessionSweepSchedule),
	)
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Background jobs stopped")
}

// sweepExpiredSessions deletes webauthn ceremony sessions and LinkedIn
// sessions that are past their expiry.
func (s *Scheduler) sweepExpiredSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()

	ceremonies, err := s.webauthnSessions.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error("Failed to sweep expired webauthn sessions", zap.Error(err))
	}

	linkedIn, err := s.linkedInSessions.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error("Failed to sweep expired LinkedIn sessions", zap.Error(err))
	}

	if ceremonies > 0 || linkedIn > 0 {
		s.logger.Info("Swept expired sessions",
			zap.Int64("webauthn_sessions", ceremonies),
			zap.Int64("linkedin_sessions", linkedIn),
		)
	}
}
