package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/dbx"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/server/blob"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/files"
)

// FileService implements the upload, download and deletion flows around the
// record store and the blob store. Authorization is owner-or-admin on the
// direct path and token-based on the shared path.
type FileService struct {
	db       *sql.DB
	newRepo  func(dbx.DBTX) files.Repository
	fileRepo files.Repository
	blobs    blob.Store
	quota    *QuotaService
	share    *ShareService
	logger   logging.Logger
}

func NewFileService(db *sql.DB, newRepo func(dbx.DBTX) files.Repository, blobs blob.Store, quota *QuotaService, share *ShareService, logger logging.Logger) *FileService {
	return &FileService{
		db:       db,
		newRepo:  newRepo,
		fileRepo: newRepo(db),
		blobs:    blobs,
		quota:    quota,
		share:    share,
		logger:   logger,
	}
}

// makeStorageKey builds the blob key for a new upload: a per-user namespace
// directory plus a fresh random identifier with the original extension. The
// display name never becomes a path component.
func makeStorageKey(userID, originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("user_%s_storage/%s%s", userID, uuid.NewString(), ext)
}

// Upload admits the request against the user's quota, stores the bytes,
// creates the metadata record and invalidates the usage snapshot. The size
// recorded is the declared blob length passed to the blob store, captured
// exactly once here.
//
// Admission runs twice: a cheap cache-backed check before the bytes move,
// and a recheck against the durable store inside the transaction that
// creates the record, so concurrent uploads cannot stack on one stale
// snapshot.
func (s *FileService) Upload(ctx context.Context, user *models.User, originalName, comment string, r io.Reader, size int64) (*models.File, error) {

	if err := s.quota.Admit(ctx, user, size); err != nil {
		return nil, err
	}

	key := makeStorageKey(user.ID, originalName)

	if err := s.blobs.Put(ctx, key, r, size); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	file := &models.File{
		UserID:       user.ID,
		OriginalName: originalName,
		StorageKey:   key,
		Size:         size,
		Comment:      comment,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)

		total, err := repo.SumSizeByOwner(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
		}
		if total+size > user.MaxStorage {
			return common.ErrQuotaExceeded
		}

		file, err = repo.Create(ctx, file)
		if err != nil {
			return fmt.Errorf("create file record: %w", err)
		}
		return nil
	})
	if err != nil {
		// don't leave the blob orphaned if the record never existed
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "failed to clean up blob after create error", "key", key, "error", delErr.Error())
		}
		return nil, err
	}

	s.quota.Invalidate(user.ID)

	return file, nil
}

// authorize enforces the owner-or-admin rule for direct file access.
// A mismatch is an authorization failure, not a not-found.
func (s *FileService) authorize(requester *models.User, file *models.File) error {
	if requester.IsAdmin || file.UserID == requester.ID {
		return nil
	}
	return common.ErrorForbidden
}

// Download authorizes a direct download by file id and opens the blob.
// The last-download timestamp update is best-effort: its failure never
// aborts the transfer.
func (s *FileService) Download(ctx context.Context, requester *models.User, fileID string) (*models.File, io.ReadCloser, int64, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, 0, err
	}

	if err := s.authorize(requester, file); err != nil {
		return nil, nil, 0, err
	}

	rc, size, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, 0, common.ErrorNotFound
		}
		return nil, nil, 0, fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	s.recordDownload(ctx, file)

	return file, rc, size, nil
}

// DownloadShared resolves a public token and opens the blob. Expired links
// yield common.ErrShareExpired so the boundary can answer "gone" instead of
// a generic failure.
func (s *FileService) DownloadShared(ctx context.Context, token string) (*models.File, io.ReadCloser, int64, error) {
	file, err := s.share.ValidateAccess(ctx, token)
	if err != nil {
		return nil, nil, 0, err
	}

	rc, size, err := s.blobs.Get(ctx, file.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, 0, common.ErrorNotFound
		}
		return nil, nil, 0, fmt.Errorf("%w: %w", common.ErrBackendUnavailable, err)
	}

	s.recordDownload(ctx, file)

	return file, rc, size, nil
}

func (s *FileService) recordDownload(ctx context.Context, file *models.File) {
	now := time.Now()
	if err := s.fileRepo.UpdateLastDownload(ctx, file.ID, now); err != nil {
		s.logger.Warn(ctx, "failed to record last download", "file_id", file.ID, "error", err.Error())
		return
	}
	file.LastDownload = &now
}

// Delete removes the blob and then the record. A blob-store failure is a
// logged warning and the record is removed anyway, so a record can never
// get stuck undeletable behind a storage-layer failure.
func (s *FileService) Delete(ctx context.Context, requester *models.User, fileID string) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.authorize(requester, file); err != nil {
		return err
	}

	if file.StorageKey != "" {
		if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
			s.logger.Warn(ctx, "failed to delete blob, removing record anyway",
				"file_id", file.ID, "key", file.StorageKey, "error", err.Error())
		}
	}

	if err := s.fileRepo.Delete(ctx, file.ID); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}

	s.quota.Invalidate(file.UserID)

	return nil
}

// List returns the files owned by ownerID. Only admins may list another
// user's files; ownerID == "" means the requester's own.
func (s *FileService) List(ctx context.Context, requester *models.User, ownerID string) ([]*models.File, error) {
	if ownerID == "" || ownerID == requester.ID {
		return s.fileRepo.ListByOwner(ctx, requester.ID)
	}

	if !requester.IsAdmin {
		return nil, common.ErrorForbidden
	}

	return s.fileRepo.ListByOwner(ctx, ownerID)
}

// UpdateComment edits the free-text comment. Size is immutable, so the
// usage snapshot stays valid.
func (s *FileService) UpdateComment(ctx context.Context, requester *models.User, fileID string, comment string) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(requester, file); err != nil {
		return nil, err
	}

	if err := s.fileRepo.UpdateComment(ctx, file.ID, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	file.Comment = comment
	return file, nil
}
