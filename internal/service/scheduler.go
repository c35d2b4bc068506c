package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/config"
)

// Scheduler runs the background jobs: retrying queued settlements and
// refreshing the materialized asset summaries.
type Scheduler struct {
	cron       *cron.Cron
	settlement *SettlementService
	snapshot   *SnapshotService
}

// NewScheduler creates a scheduler with both jobs registered on the
// configured cron specs.
func NewScheduler(cfg config.SchedulerConfig, settlement *SettlementService, snapshot *SnapshotService) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		settlement: settlement,
		snapshot:   snapshot,
	}

	if _, err := s.cron.AddFunc(cfg.SettlementRetrySpec, s.runSettlementRetry); err != nil {
		return nil, fmt.Errorf("invalid settlement retry spec %q: %w", cfg.SettlementRetrySpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.SnapshotRefreshSpec, s.runSnapshotRefresh); err != nil {
		return nil, fmt.Errorf("invalid snapshot refresh spec %q: %w", cfg.SnapshotRefreshSpec, err)
	}

	return s, nil
}

// Start begins running the scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and returns a context that is done when all
// running jobs have completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runSettlementRetry() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	attempted, settled, err := s.settlement.RetryPending(ctx)
	if err != nil {
		log.Printf("scheduler: settlement retry failed: %v", err)
		return
	}
	if attempted > 0 {
		log.Printf("scheduler: retried %d queued settlements, %d settled", attempted, settled)
	}
}

func (s *Scheduler) runSnapshotRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.snapshot.RefreshAll(ctx); err != nil {
		log.Printf("scheduler: summary refresh failed: %v", err)
	}
}
