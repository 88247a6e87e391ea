// Package scheduler fires one scan batch per day at a fixed local time.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"rentwatch/internal/config"
	"rentwatch/internal/scan"
)

type Scheduler struct {
	hour   int
	minute int
	runner *scan.Runner
	logger *zap.Logger
}

// New parses the daily trigger time ("HH:MM").
func New(clock string, runner *scan.Runner, logger *zap.Logger) (*Scheduler, error) {
	hour, minute, err := config.ParseClock(clock)
	if err != nil {
		return nil, err
	}
	return &Scheduler{hour: hour, minute: minute, runner: runner, logger: logger}, nil
}

// Start blocks until ctx is cancelled, running a batch each day at the
// configured time. A trigger that lands while a manual scan is running is
// skipped; the batch entry point is serialized either way.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("daily scan scheduled",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
	)
	for {
		next := NextRun(time.Now(), s.hour, s.minute)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := s.runner.Run(ctx); err != nil {
			if errors.Is(err, scan.ErrScanInProgress) {
				s.logger.Warn("scheduled scan skipped, batch already running")
				continue
			}
			s.logger.Error("scheduled scan failed", zap.Error(err))
		}
	}
}

// NextRun returns the first instant strictly after now that falls on the
// configured wall-clock time.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
