// Package jobs contains the scheduled jobs of the hub.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pathwise/pathwise-hub/internal/domain/archive"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
	"github.com/pathwise/pathwise-hub/pkg/logger"
	"github.com/pathwise/pathwise-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ARCHIVE EXPORT JOB
// Выгружает данные всех пользователей в архив. Только экспорт: архив никогда
// не читается обратно, источником истины остаётся память процесса.
// ══════════════════════════════════════════════════════════════════════════════

// BundleSource lists everything to export.
type BundleSource interface {
	Bundles(ctx context.Context) ([]archive.UserBundle, error)
}

// ArchiveExportConfig contains configuration for the export job.
type ArchiveExportConfig struct {
	// Concurrency is the number of bundles written in parallel.
	Concurrency int

	// Timeout is the maximum duration of one run.
	Timeout time.Duration
}

// DefaultArchiveExportConfig returns sensible defaults.
func DefaultArchiveExportConfig() ArchiveExportConfig {
	return ArchiveExportConfig{
		Concurrency: 4,
		Timeout:     10 * time.Minute,
	}
}

// ArchiveExportJob writes every user bundle through an archive.Writer.
type ArchiveExportJob struct {
	source BundleSource
	writer archive.Writer
	events shared.EventPublisher
	clock  timeutil.Clock
	log    *logger.Logger
	config ArchiveExportConfig

	lastReport atomic.Pointer[archive.Report]
}

// NewArchiveExportJob creates a new archive export job.
func NewArchiveExportJob(
	source BundleSource,
	writer archive.Writer,
	events shared.EventPublisher,
	clock timeutil.Clock,
	log *logger.Logger,
	config ArchiveExportConfig,
) *ArchiveExportJob {
	if events == nil {
		events = shared.NoopPublisher{}
	}
	if clock == nil {
		clock = timeutil.NewSystemClock(time.UTC)
	}
	if log == nil {
		log = logger.Nop()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &ArchiveExportJob{
		source: source,
		writer: writer,
		events: events,
		clock:  clock,
		log:    log.With(logger.Component("archive_export")),
		config: config,
	}
}

// Name implements scheduler.Job.
func (j *ArchiveExportJob) Name() string { return "archive_export" }

// Description implements scheduler.Job.
func (j *ArchiveExportJob) Description() string {
	return "Exports accounts, activities, skills, achievements and goals to the snapshot archive"
}

// Run implements scheduler.Job. A failing bundle does not stop the others;
// the run fails if any bundle failed.
func (j *ArchiveExportJob) Run(ctx context.Context) error {
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	started := j.clock.Now()
	t0 := time.Now()

	bundles, err := j.source.Bundles(ctx)
	if err != nil {
		return fmt.Errorf("archive export: %w", err)
	}

	var (
		mu     sync.Mutex
		rows   int
		failed []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.config.Concurrency)
	for _, b := range bundles {
		b := b
		g.Go(func() error {
			if err := j.writer.WriteBundle(gctx, b); err != nil {
				mu.Lock()
				failed = append(failed, fmt.Errorf("%s: %w", b.Account.Username, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			rows += b.Rows()
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report := &archive.Report{
		Users:     len(bundles),
		Rows:      rows,
		Failed:    len(failed),
		StartedAt: started,
		Duration:  time.Since(t0),
	}
	if len(failed) > 0 {
		report.FirstError = failed[0].Error()
	}
	j.lastReport.Store(report)

	if err := j.events.Publish(shared.NewArchiveCompletedEvent(report.Users, report.Rows, report.Duration, j.clock.Now())); err != nil {
		j.log.Warn("failed to publish archive event", logger.Err(err))
	}

	j.log.Info("archive export finished",
		logger.Int("users", report.Users),
		logger.Int("rows", report.Rows),
		logger.Int("failed", report.Failed),
		logger.Latency(report.Duration),
	)
	return errors.Join(failed...)
}

// LastReport returns the report of the most recent run, or nil.
func (j *ArchiveExportJob) LastReport() *archive.Report {
	return j.lastReport.Load()
}
