package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/dbx"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

const fileColumns = `id, user_id, original_name, storage_key, size, upload_date, last_download, comment, shared_link, shared_expiry`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanFile(row interface {
	Scan(dest ...any) error
}) (*models.File, error) {
	f := &models.File{}
	var lastDownload, sharedExpiry sql.NullTime
	var sharedLink sql.NullString

	err := row.Scan(&f.ID, &f.UserID, &f.OriginalName, &f.StorageKey, &f.Size,
		&f.UploadDate, &lastDownload, &f.Comment, &sharedLink, &sharedExpiry)
	if err != nil {
		return nil, err
	}

	if lastDownload.Valid {
		t := lastDownload.Time
		f.LastDownload = &t
	}
	if sharedLink.Valid {
		s := sharedLink.String
		f.SharedLink = &s
	}
	if sharedExpiry.Valid {
		t := sharedExpiry.Time
		f.SharedExpiry = &t
	}

	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {

	query :=
		`INSERT INTO files (user_id, original_name, storage_key, size, comment)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, upload_date
		 `

	err := r.db.QueryRowContext(ctx, query,
		file.UserID, file.OriginalName, file.StorageKey, file.Size, file.Comment).
		Scan(&file.ID, &file.UploadDate)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) GetByShareToken(ctx context.Context, token string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE shared_link = $1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE user_id = $1 ORDER BY upload_date`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}

	var result []*models.File

	defer rows.Close()
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) UpdateComment(ctx context.Context, id string, comment string) error {
	query := `UPDATE files SET comment = $2 WHERE id = $1`
	return r.execExpectingOneRow(ctx, query, id, comment)
}

func (r *PostgresRepository) SetShare(ctx context.Context, id string, token string, expiry time.Time) error {
	query := `UPDATE files SET shared_link = $2, shared_expiry = $3 WHERE id = $1`
	return r.execExpectingOneRow(ctx, query, id, token, expiry)
}

func (r *PostgresRepository) ClearShare(ctx context.Context, id string) error {
	query := `UPDATE files SET shared_link = NULL, shared_expiry = NULL WHERE id = $1`
	return r.execExpectingOneRow(ctx, query, id)
}

func (r *PostgresRepository) UpdateLastDownload(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE files SET last_download = $2 WHERE id = $1`
	return r.execExpectingOneRow(ctx, query, id, at)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`
	return r.execExpectingOneRow(ctx, query, id)
}

// SumSizeByOwner returns the total stored bytes for a user. Zero when the
// user has no files.
func (r *PostgresRepository) SumSizeByOwner(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COALESCE(SUM(size), 0) FROM files WHERE user_id = $1`

	var total int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

// ListStored returns every record that points at a blob, for the retention
// sweep. Only id, user_id and storage_key are populated.
func (r *PostgresRepository) ListStored(ctx context.Context) ([]*models.File, error) {
	query := `SELECT id, user_id, storage_key FROM files WHERE storage_key <> ''`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}

	var result []*models.File

	defer rows.Close()
	for rows.Next() {
		f := &models.File{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.StorageKey); err != nil {
			return nil, err
		}
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ClearExpiredShares bulk-clears every share whose expiry is in the past and
// returns the number of links cleared.
func (r *PostgresRepository) ClearExpiredShares(ctx context.Context, now time.Time) (int64, error) {
	query :=
		`UPDATE files SET shared_link = NULL, shared_expiry = NULL
		 WHERE shared_link IS NOT NULL AND shared_expiry < $1
		 `

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) execExpectingOneRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
