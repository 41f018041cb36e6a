package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/server/blob"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/files"
)

var (
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycloud_sweep_runs_total",
		Help: "Total number of retention sweep passes.",
	})
	sweepOrphansDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycloud_sweep_orphans_deleted_total",
		Help: "Total number of file records deleted because their blob was missing.",
	})
	sweepLinksClearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycloud_sweep_links_cleared_total",
		Help: "Total number of expired share links cleared.",
	})
	sweepDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mycloud_sweep_duration_seconds",
		Help:    "Duration of a retention sweep pass in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// SweepResult is the outcome of one retention pass.
type SweepResult struct {
	OrphanedFilesDeleted int
	ExpiredLinksCleared  int
}

// SweeperService is the periodic retention job: it deletes records whose
// backing blob is gone and clears expired share links. A pass is idempotent;
// running it twice on the same state finds nothing new the second time.
type SweeperService struct {
	fileRepo files.Repository
	blobs    blob.Store
	quota    *QuotaService
	logger   logging.Logger
}

func NewSweeperService(fileRepo files.Repository, blobs blob.Store, quota *QuotaService, logger logging.Logger) *SweeperService {
	return &SweeperService{
		fileRepo: fileRepo,
		blobs:    blobs,
		quota:    quota,
		logger:   logger,
	}
}

// Sweep runs one pass. Per-file failures are collected and the pass keeps
// going; the aggregate error is logged and returned so the external
// scheduler can alert or retry. Never swallows failures.
func (s *SweeperService) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	sweepRunsTotal.Inc()
	s.logger.Info(ctx, "starting retention sweep")

	var result SweepResult
	var errs []error

	stored, err := s.fileRepo.ListStored(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("list stored files: %w", err))
	}

	for _, file := range stored {
		exists, err := s.blobs.Exists(ctx, file.StorageKey)
		if err != nil {
			errs = append(errs, fmt.Errorf("check blob %s: %w", file.StorageKey, err))
			continue
		}
		if exists {
			continue
		}

		// blob is gone: delete defensively in case Exists raced a partial
		// write, then drop the record
		if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
			s.logger.Warn(ctx, "defensive blob delete failed", "key", file.StorageKey, "error", err.Error())
		}

		if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete orphaned record %s: %w", file.ID, err))
			continue
		}

		s.quota.Invalidate(file.UserID)
		result.OrphanedFilesDeleted++
	}

	cleared, err := s.fileRepo.ClearExpiredShares(ctx, time.Now())
	if err != nil {
		errs = append(errs, fmt.Errorf("clear expired shares: %w", err))
	}
	result.ExpiredLinksCleared = int(cleared)

	sweepOrphansDeletedTotal.Add(float64(result.OrphanedFilesDeleted))
	sweepLinksClearedTotal.Add(float64(result.ExpiredLinksCleared))
	sweepDurationSeconds.Observe(time.Since(start).Seconds())

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logger.Error(ctx, "retention sweep finished with errors",
			"orphaned_files_deleted", result.OrphanedFilesDeleted,
			"expired_links_cleared", result.ExpiredLinksCleared,
			"error", err.Error())
		return result, err
	}

	s.logger.Info(ctx, "retention sweep complete",
		"orphaned_files_deleted", result.OrphanedFilesDeleted,
		"expired_links_cleared", result.ExpiredLinksCleared)
	return result, nil
}
