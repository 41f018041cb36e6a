// Package services contains the business logic of the storage core: quota
// accounting, share link lifecycle, upload/download flows, user accounts
// and the retention sweep.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/server/cache"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/files"
)

// QuotaService tracks how many bytes each user has consumed and gates
// uploads against the user's ceiling. It owns the usage cache; everything
// that mutates a user's file set calls Invalidate.
type QuotaService struct {
	fileRepo files.Repository
	cache    *cache.UsageCache
	logger   logging.Logger
}

func NewQuotaService(fileRepo files.Repository, cache *cache.UsageCache, logger logging.Logger) *QuotaService {
	return &QuotaService{
		fileRepo: fileRepo,
		cache:    cache,
		logger:   logger,
	}
}

// usage returns the user's total stored bytes, from cache when fresh,
// otherwise recomputed from the durable store and cached.
func (s *QuotaService) usage(ctx context.Context, userID string) (int64, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}

	total, err := s.fileRepo.SumSizeByOwner(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("sum size: %w", err)
	}

	s.cache.Set(userID, total)
	return total, nil
}

// GetUsage returns the user's total stored bytes. On a backend failure it
// logs and returns 0: the display path favors availability over exactness.
// Admission does not share this degradation, see Admit.
func (s *QuotaService) GetUsage(ctx context.Context, userID string) int64 {
	total, err := s.usage(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "usage lookup failed, degrading to 0", "user_id", userID, "error", err.Error())
		return 0
	}
	return total
}

// GetUsagePercent returns the used share of the user's ceiling, 0 when the
// ceiling is 0.
func (s *QuotaService) GetUsagePercent(ctx context.Context, user *models.User) float64 {
	if user.MaxStorage == 0 {
		return 0
	}
	return float64(s.GetUsage(ctx, user.ID)) / float64(user.MaxStorage) * 100
}

// Admit is the single admission gate, evaluated synchronously right before
// the blob write. A cache hit within TTL is acceptable staleness; two
// concurrent uploads can both pass on a stale figure, which bounds the
// overshoot by the in-flight upload volume.
//
// Returns common.ErrQuotaExceeded when the upload would pass the ceiling
// (exactly reaching it is admitted), or common.ErrBackendUnavailable when
// usage cannot be read: a write is never admitted on a failed read.
func (s *QuotaService) Admit(ctx context.Context, user *models.User, additionalBytes int64) error {
	total, err := s.usage(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	if total+additionalBytes > user.MaxStorage {
		return common.ErrQuotaExceeded
	}

	return nil
}

// Invalidate drops the cached usage snapshot for a user, forcing the next
// reader to recompute from the durable store.
func (s *QuotaService) Invalidate(userID string) {
	s.cache.Delete(userID)
}
