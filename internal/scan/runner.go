// Package scan runs one complete pipeline batch: scrape every enabled site,
// upsert and classify the drafts, age out stale listings, then dispatch
// notifications for pending ones.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"rentwatch/internal/domain"
	"rentwatch/internal/monitoring"
	"rentwatch/internal/notify"
	"rentwatch/internal/scraper"
	"rentwatch/internal/sites"
)

// ErrScanInProgress is returned when a trigger arrives while a batch is
// already running. The trigger is rejected, never interleaved.
var ErrScanInProgress = errors.New("scan already in progress")

const lockTTL = 30 * time.Minute

// Store is the persistence contract the runner depends on. The Postgres
// implementation lives in internal/storage; tests substitute a stub.
type Store interface {
	UpsertListing(ctx context.Context, l domain.Listing) (isNew bool, err error)
	MarkInactiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	FetchPending(ctx context.Context, limit int) ([]domain.StoredListing, error)
	MarkNotified(ctx context.Context, id int64) error
}

// Locker serializes batches across processes. Optional; the in-process
// guard alone covers single-instance deployments.
type Locker interface {
	AcquireScanLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseScanLock(ctx context.Context) error
}

// Runner owns the batch entry point shared by the scheduler and the
// on-demand API trigger.
type Runner struct {
	registry    *sites.Registry
	scraper     *scraper.Scraper
	store       Store
	notifier    notify.Notifier
	locker      Locker // nil when Redis is not configured
	metrics     *monitoring.Metrics
	logger      *zap.Logger
	agingWindow time.Duration
	batchCap    int
	busy        atomic.Bool
}

func NewRunner(
	registry *sites.Registry,
	sc *scraper.Scraper,
	store Store,
	notifier notify.Notifier,
	locker Locker,
	m *monitoring.Metrics,
	l *zap.Logger,
	agingWindow time.Duration,
	batchCap int,
) *Runner {
	return &Runner{
		registry:    registry,
		scraper:     sc,
		store:       store,
		notifier:    notifier,
		locker:      locker,
		metrics:     m,
		logger:      l,
		agingWindow: agingWindow,
		batchCap:    batchCap,
	}
}

// Busy reports whether a batch is currently running.
func (r *Runner) Busy() bool {
	return r.busy.Load()
}

// Run executes one scan batch. Store failures abort the batch since dedupe
// correctness depends on them; fetch, extraction and dispatch failures are
// isolated to the site, candidate or record they occurred on.
func (r *Runner) Run(ctx context.Context) (*domain.ScanReport, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer r.busy.Store(false)

	if r.locker != nil {
		ok, err := r.locker.AcquireScanLock(ctx, lockTTL)
		if err != nil {
			// Lock store unavailable: proceed on the in-process guard alone.
			r.logger.Warn("scan lock unavailable", zap.Error(err))
		} else if !ok {
			return nil, ErrScanInProgress
		} else {
			defer func() {
				if err := r.locker.ReleaseScanLock(context.WithoutCancel(ctx)); err != nil {
					r.logger.Warn("failed to release scan lock", zap.Error(err))
				}
			}()
		}
	}

	start := time.Now()
	r.metrics.IncScansTotal()
	r.logger.Info("scan batch starting")

	drafts := r.scraper.ScrapeAll(ctx, r.registry.All())

	newCount := 0
	for _, d := range drafts {
		isNew, err := r.store.UpsertListing(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("upsert %s: %w", d.ExternalID, err)
		}
		if isNew {
			newCount++
			r.metrics.IncNewTotal()
		}
	}
	r.logger.Info("drafts classified",
		zap.Int("scraped", len(drafts)),
		zap.Int("new", newCount),
	)

	cutoff := time.Now().UTC().Add(-r.agingWindow)
	aged, err := r.store.MarkInactiveOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if aged > 0 {
		r.logger.Info("aged out stale listings", zap.Int64("count", aged))
	}

	notified, overflow, err := r.dispatch(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.ScanReport{
		StartedAt: start,
		Duration:  time.Since(start).Round(time.Millisecond).String(),
		Scraped:   len(drafts),
		New:       newCount,
		Notified:  notified,
		Overflow:  overflow,
	}
	r.logger.Info("scan batch complete",
		zap.Int("scraped", report.Scraped),
		zap.Int("new", report.New),
		zap.Int("notified", report.Notified),
		zap.Int("overflow", report.Overflow),
		zap.String("duration", report.Duration),
	)
	return report, nil
}

// dispatch sends the header plus one message per pending listing, capped at
// the batch size. A record is marked notified only after its message was
// handed to the channel successfully; on failure it stays pending so the
// next batch re-sends it.
func (r *Runner) dispatch(ctx context.Context) (notified, overflow int, err error) {
	pending, err := r.store.FetchPending(ctx, 0)
	if err != nil {
		return 0, 0, err
	}
	if len(pending) == 0 {
		r.logger.Info("no new listings to notify")
		return 0, 0, nil
	}

	toSend := pending
	if len(pending) > r.batchCap {
		toSend = pending[:r.batchCap]
		overflow = len(pending) - r.batchCap
	}

	if err := r.notifier.Send(ctx, notify.FormatHeader(len(pending))); err != nil {
		// Channel looks down; keep everything pending for the next batch.
		r.metrics.IncErrorsTotal("dispatch")
		r.logger.Error("header dispatch failed", zap.Error(err))
		return 0, overflow, nil
	}

	for _, l := range toSend {
		if err := r.notifier.Send(ctx, notify.FormatListing(l)); err != nil {
			r.metrics.IncErrorsTotal("dispatch")
			r.logger.Error("listing dispatch failed",
				zap.String("external_id", l.ExternalID),
				zap.Error(err),
			)
			continue
		}
		if err := r.store.MarkNotified(ctx, l.ID); err != nil {
			return notified, overflow, err
		}
		notified++
		r.metrics.IncNotifiedTotal()
	}

	if overflow > 0 {
		if err := r.notifier.Send(ctx, notify.FormatOverflow(overflow)); err != nil {
			r.logger.Warn("overflow notice failed", zap.Error(err))
		}
	}
	return notified, overflow, nil
}
