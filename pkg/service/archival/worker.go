// Package archival moves fragments through retention tiers in the
// background: active fragments unaccessed for the active window are
// archived, archived fragments past the total retention window expire, and
// expired fragments are hard-deleted together with their vectors.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Tier writes race only with access bumps; optimistic version checks
//   resolve the race by skipping the fragment until the next cycle
package archival

import (
	"context"
	"errors"
	"time"

	"github.com/mnemo-ai/mnemo/pkg/domain/interfaces"
	"github.com/mnemo-ai/mnemo/pkg/domain/model"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
	"github.com/mnemo-ai/mnemo/pkg/utils/logging"
	"github.com/mnemo-ai/mnemo/pkg/utils/retry"
)

const (
	// DefaultActiveWindow is how long a fragment stays active without access
	DefaultActiveWindow = 90 * 24 * time.Hour
	// DefaultRetentionWindow is the total lifetime without access before
	// expiry (active + archive)
	DefaultRetentionWindow = 365 * 24 * time.Hour
	// DefaultInterval is the cadence of the background job
	DefaultInterval = 24 * time.Hour
	// DefaultBatchSize bounds one candidate listing
	DefaultBatchSize = 200
)

// Worker is the periodic archival job. It communicates with request paths
// only through the store interfaces, never through shared in-process state.
type Worker struct {
	repo      interfaces.Repository
	index     interfaces.SemanticIndex
	interval  time.Duration
	batchSize int
	active    time.Duration
	retention time.Duration
	retryCfg  retry.Config
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Option customizes the worker
type Option func(*Worker)

// WithInterval sets the background cadence
func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithBatchSize bounds candidate listings
func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithWindows sets the active and total retention windows
func WithWindows(active, retention time.Duration) Option {
	return func(w *Worker) {
		if active > 0 {
			w.active = active
		}
		if retention > active {
			w.retention = retention
		}
	}
}

// WithClock injects a clock for simulated-time tests
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		w.now = now
	}
}

// New creates an archival worker
func New(repo interfaces.Repository, index interfaces.SemanticIndex, opts ...Option) *Worker {
	w := &Worker{
		repo:      repo,
		index:     index,
		interval:  DefaultInterval,
		batchSize: DefaultBatchSize,
		active:    DefaultActiveWindow,
		retention: DefaultRetentionWindow,
		retryCfg:  retry.DefaultConfig,
		now:       func() time.Time { return time.Now().UTC() },
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background loop. It does not block.
func (w *Worker) Start(ctx context.Context) {
	logging.From(ctx).Info("archival worker starting",
		"interval", w.interval.String(),
		"active_window", w.active.String(),
		"retention_window", w.retention.String())

	go w.run(ctx)
}

// Stop signals the worker to stop and waits for completion
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("archival worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Initial cycle runs immediately so a restart does not defer overdue
	// transitions by a full interval.
	w.cycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.cycle(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *Worker) cycle(ctx context.Context) {
	stats, err := w.RunOnce(ctx)
	if err != nil {
		logging.From(ctx).Error("archival cycle failed", "error", err.Error())
		return
	}
	logging.From(ctx).Info("archival cycle completed",
		"scanned", stats.Scanned,
		"archived", stats.Archived,
		"expired", stats.Expired,
		"deleted", stats.Deleted,
		"conflicts", stats.Conflicts,
		"duration", stats.Duration.String())
}

// RunOnce performs a single archival cycle and returns its stats. It is
// idempotent: a second run with no intervening access performs no further
// transitions. Per-fragment failures are counted, never escalated.
func (w *Worker) RunOnce(ctx context.Context) (*model.ArchiveStats, error) {
	start := w.now()
	stats := &model.ArchiveStats{StartedAt: start}

	w.archivePass(ctx, stats)
	w.expirePass(ctx, stats)
	w.reconcilePass(ctx, stats)

	stats.Duration = w.now().Sub(start)
	return stats, nil
}

// archivePass moves active fragments unaccessed for the active window to
// the archive tier
func (w *Worker) archivePass(ctx context.Context, stats *model.ArchiveStats) {
	cutoff := w.now().Add(-w.active)

	w.eachCandidate(ctx, stats, types.TierActive, cutoff, func(fragment *model.Fragment) bool {
		err := w.repo.Fragment().UpdateTier(ctx, fragment.ID, types.TierArchive, fragment.Version)
		switch {
		case err == nil:
			stats.Archived++
			return true
		case errors.Is(err, types.ErrArchivalConflict):
			// A concurrent access bump won; retry next cycle.
			stats.Conflicts++
			return false
		default:
			stats.Errors++
			logging.From(ctx).Warn("failed to archive fragment",
				"fragment_id", fragment.ID, "error", err.Error())
			return false
		}
	})
}

// expirePass moves archived fragments past the total retention window to
// the expired tier and immediately attempts the two-step delete
func (w *Worker) expirePass(ctx context.Context, stats *model.ArchiveStats) {
	cutoff := w.now().Add(-w.retention)

	w.eachCandidate(ctx, stats, types.TierArchive, cutoff, func(fragment *model.Fragment) bool {
		err := w.repo.Fragment().UpdateTier(ctx, fragment.ID, types.TierExpired, fragment.Version)
		switch {
		case errors.Is(err, types.ErrArchivalConflict):
			stats.Conflicts++
			return false
		case err != nil:
			stats.Errors++
			logging.From(ctx).Warn("failed to expire fragment",
				"fragment_id", fragment.ID, "error", err.Error())
			return false
		}

		stats.Expired++
		if w.deleteExpired(ctx, fragment) {
			stats.Deleted++
		} else {
			// Fragment stays in the expired tier; reconciliation retries
			// the delete on the next cycle.
			stats.Errors++
		}
		return true
	})
}

// reconcilePass retries deletes that failed in earlier cycles, leaving no
// expired fragments behind
func (w *Worker) reconcilePass(ctx context.Context, stats *model.ArchiveStats) {
	w.eachCandidate(ctx, stats, types.TierExpired, w.now().Add(time.Second), func(fragment *model.Fragment) bool {
		if w.deleteExpired(ctx, fragment) {
			stats.Deleted++
			return true
		}
		stats.Errors++
		return false
	})
}

// deleteExpired removes the vector first, then the fragment document. The
// fragment row is only removed after its vector is gone so that a failed
// second step never strands an unreferenced vector.
func (w *Worker) deleteExpired(ctx context.Context, fragment *model.Fragment) bool {
	if fragment.EmbeddingRef != "" {
		if err := w.index.Delete(ctx, fragment.EmbeddingRef); err != nil {
			logging.From(ctx).Warn("failed to delete vector, will reconcile next cycle",
				"fragment_id", fragment.ID,
				"vector_id", fragment.EmbeddingRef,
				"error", err.Error())
			return false
		}
	}

	if err := w.repo.Fragment().Delete(ctx, fragment.ID); err != nil {
		logging.From(ctx).Warn("failed to delete expired fragment, will reconcile next cycle",
			"fragment_id", fragment.ID, "error", err.Error())
		return false
	}
	return true
}

// eachCandidate lists candidates in batches and applies process to each.
// Listing is retried with bounded backoff; a batch that exhausts retries is
// logged and skipped. The loop stops when a batch makes no progress, so
// conflicting fragments cannot spin the worker.
func (w *Worker) eachCandidate(ctx context.Context, stats *model.ArchiveStats, tier types.Tier, cutoff time.Time, process func(*model.Fragment) bool) {
	for {
		var batch []*model.Fragment
		err := retry.Do(ctx, w.retryCfg, func() error {
			var listErr error
			batch, listErr = w.repo.Fragment().ListByTierLastAccessedBefore(ctx, tier, cutoff, w.batchSize)
			return listErr
		})
		if err != nil {
			stats.Errors++
			logging.From(ctx).Error("failed to list archival candidates, skipping batch",
				"tier", tier, "error", err.Error())
			return
		}
		if len(batch) == 0 {
			return
		}

		progressed := 0
		for _, fragment := range batch {
			stats.Scanned++
			if process(fragment) {
				progressed++
			}
		}
		if progressed == 0 || len(batch) < w.batchSize {
			return
		}
	}
}
