package files

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

// Repository is the durable store of file metadata. Blob bytes live in
// object storage; this table is the single source of truth for ownership,
// sizes and share state.
type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetByShareToken(ctx context.Context, token string) (*models.File, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.File, error)
	UpdateComment(ctx context.Context, id string, comment string) error
	SetShare(ctx context.Context, id string, token string, expiry time.Time) error
	ClearShare(ctx context.Context, id string) error
	UpdateLastDownload(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	SumSizeByOwner(ctx context.Context, userID string) (int64, error)
	ListStored(ctx context.Context) ([]*models.File, error)
	ClearExpiredShares(ctx context.Context, now time.Time) (int64, error)
}
