package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/server/blob"
	"github.com/dmitrijs2005/mycloud/internal/server/cache"
	sc "github.com/dmitrijs2005/mycloud/internal/server/config"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/files"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/users"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	return cfg
}

func testCache() *cache.UsageCache {
	return cache.NewUsageCache(16, time.Minute)
}

// fakeFilesRepo embeds the interface so only the methods a test overrides
// need stubs; calling anything else panics and points at the gap.
type fakeFilesRepo struct {
	files.Repository

	createFn             func(ctx context.Context, file *models.File) (*models.File, error)
	getByIDFn            func(ctx context.Context, id string) (*models.File, error)
	getByShareTokenFn    func(ctx context.Context, token string) (*models.File, error)
	listByOwnerFn        func(ctx context.Context, userID string) ([]*models.File, error)
	updateCommentFn      func(ctx context.Context, id string, comment string) error
	setShareFn           func(ctx context.Context, id string, token string, expiry time.Time) error
	clearShareFn         func(ctx context.Context, id string) error
	updateLastDownloadFn func(ctx context.Context, id string, at time.Time) error
	deleteFn             func(ctx context.Context, id string) error
	sumSizeByOwnerFn     func(ctx context.Context, userID string) (int64, error)
	listStoredFn         func(ctx context.Context) ([]*models.File, error)
	clearExpiredSharesFn func(ctx context.Context, now time.Time) (int64, error)
}

func (f *fakeFilesRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	return f.createFn(ctx, file)
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeFilesRepo) GetByShareToken(ctx context.Context, token string) (*models.File, error) {
	return f.getByShareTokenFn(ctx, token)
}

func (f *fakeFilesRepo) ListByOwner(ctx context.Context, userID string) ([]*models.File, error) {
	return f.listByOwnerFn(ctx, userID)
}

func (f *fakeFilesRepo) UpdateComment(ctx context.Context, id string, comment string) error {
	return f.updateCommentFn(ctx, id, comment)
}

func (f *fakeFilesRepo) SetShare(ctx context.Context, id string, token string, expiry time.Time) error {
	return f.setShareFn(ctx, id, token, expiry)
}

func (f *fakeFilesRepo) ClearShare(ctx context.Context, id string) error {
	return f.clearShareFn(ctx, id)
}

func (f *fakeFilesRepo) UpdateLastDownload(ctx context.Context, id string, at time.Time) error {
	return f.updateLastDownloadFn(ctx, id, at)
}

func (f *fakeFilesRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeFilesRepo) SumSizeByOwner(ctx context.Context, userID string) (int64, error) {
	return f.sumSizeByOwnerFn(ctx, userID)
}

func (f *fakeFilesRepo) ListStored(ctx context.Context) ([]*models.File, error) {
	return f.listStoredFn(ctx)
}

func (f *fakeFilesRepo) ClearExpiredShares(ctx context.Context, now time.Time) (int64, error) {
	return f.clearExpiredSharesFn(ctx, now)
}

type fakeBlobStore struct {
	blob.Store

	putFn    func(ctx context.Context, key string, r io.Reader, size int64) error
	getFn    func(ctx context.Context, key string) (io.ReadCloser, int64, error)
	deleteFn func(ctx context.Context, key string) error
	existsFn func(ctx context.Context, key string) (bool, error)
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	return f.putFn(ctx, key, r, size)
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	return f.getFn(ctx, key)
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	return f.deleteFn(ctx, key)
}

func (f *fakeBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	return f.existsFn(ctx, key)
}

type fakeUsersRepo struct {
	users.Repository

	createFn     func(ctx context.Context, user *models.User) (*models.User, error)
	getByLoginFn func(ctx context.Context, userName string) (*models.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return f.createFn(ctx, user)
}

func (f *fakeUsersRepo) GetByLogin(ctx context.Context, userName string) (*models.User, error) {
	return f.getByLoginFn(ctx, userName)
}
