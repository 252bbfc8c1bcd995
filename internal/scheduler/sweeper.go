package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rvworks/servicedesk/internal/service"
)

// Sweeper runs the daily maintenance jobs, currently just clearing expired
// approval tokens so stale links stop resolving.
type Sweeper struct {
	approvals *service.ApprovalService
	cron      *cron.Cron
	log       zerolog.Logger
}

func NewSweeper(approvals *service.ApprovalService, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		approvals: approvals,
		cron:      cron.New(),
		log:       log,
	}
}

// Start registers the jobs and launches the cron loop. Runs the sweep once
// at startup so a restart never leaves expired tokens live for a day.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("0 3 * * *", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	go s.sweep()
	s.log.Info().Msg("scheduler started")
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.approvals.SweepExpiredTokens(ctx); err != nil {
		s.log.Error().Err(err).Msg("expired token sweep failed")
	}
}
