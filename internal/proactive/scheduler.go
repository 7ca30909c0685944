// internal/proactive/scheduler.go
package proactive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// titleRefreshSpec fires the nightly title pass at 23:55 local time.
const titleRefreshSpec = "55 23 * * *"

// Scheduler drives the proactive passes on a cron ticker.
type Scheduler struct {
	service  *Service
	cron     *cron.Cron
	interval time.Duration
}

// NewScheduler creates a Scheduler that runs follow-ups every interval and
// title refreshes nightly. A zero interval uses the default.
func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = Interval
	}
	return &Scheduler{
		service:  service,
		cron:     cron.New(),
		interval: interval,
	}
}

// Start registers the cron entries and starts the ticker.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), func() {
		if err := s.service.FollowUp(ctx); err != nil {
			slog.Error("follow-up pass failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule follow-up pass: %w", err)
	}

	_, err = s.cron.AddFunc(titleRefreshSpec, func() {
		if err := s.service.RefreshTitles(ctx); err != nil {
			slog.Error("title refresh pass failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule title refresh: %w", err)
	}

	s.cron.Start()
	slog.Info("proactive scheduler started", "follow_up_interval", s.interval.String())
	return nil
}

// Stop stops the ticker and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
