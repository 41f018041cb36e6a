package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mycloud/internal/common"
	sc "github.com/dmitrijs2005/mycloud/internal/server/config"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/files"
)

// ShareService manages public download tokens and their expiry windows.
// Tokens are random uuid4 values: 122 random bits, unguessable and
// non-sequential, the sole public-facing download credential.
type ShareService struct {
	fileRepo files.Repository
	quota    *QuotaService
	config   *sc.Config
}

func NewShareService(fileRepo files.Repository, quota *QuotaService, config *sc.Config) *ShareService {
	return &ShareService{
		fileRepo: fileRepo,
		quota:    quota,
		config:   config,
	}
}

// CreateOrRenew ensures the file has a usable share link.
//
// With expiryDays set, the expiry is always rewritten to now+days (bounded
// to the configured range) even if the current link had more time left; the
// token is kept while the link is live and regenerated once it has lapsed,
// so URLs circulated before the expiry stay dead. With expiryDays nil the
// call only heals: a missing or expired link gets a fresh token plus the
// default window, while an already-live link is left untouched, so "ensure
// link exists" never invalidates links already shared elsewhere.
func (s *ShareService) CreateOrRenew(ctx context.Context, file *models.File, expiryDays *int) (*models.File, error) {
	now := time.Now()

	var token string
	var expiry time.Time

	if expiryDays != nil {
		if *expiryDays < s.config.MinShareDays || *expiryDays > s.config.MaxShareDays {
			return nil, fmt.Errorf("expiry days must be between %d and %d",
				s.config.MinShareDays, s.config.MaxShareDays)
		}
		expiry = now.AddDate(0, 0, *expiryDays)
		if file.HasLiveShare(now) {
			token = *file.SharedLink
		} else {
			token = uuid.NewString()
		}
	} else {
		if file.HasLiveShare(now) {
			// idempotent: nothing to heal
			return file, nil
		}
		expiry = now.AddDate(0, 0, s.config.DefaultShareDays)
		token = uuid.NewString()
	}

	if err := s.fileRepo.SetShare(ctx, file.ID, token, expiry); err != nil {
		return nil, fmt.Errorf("set share: %w", err)
	}

	file.SharedLink = &token
	file.SharedExpiry = &expiry

	s.quota.Invalidate(file.UserID)

	return file, nil
}

// Revoke clears both token and expiry unconditionally.
func (s *ShareService) Revoke(ctx context.Context, file *models.File) error {
	if err := s.fileRepo.ClearShare(ctx, file.ID); err != nil {
		return fmt.Errorf("clear share: %w", err)
	}

	file.SharedLink = nil
	file.SharedExpiry = nil

	s.quota.Invalidate(file.UserID)

	return nil
}

// ValidateAccess resolves a public token to its file. Returns
// common.ErrorNotFound when the token resolves to nothing and
// common.ErrShareExpired when the window has passed. A token with no expiry
// validates forever; the manager always sets the pair together, so that
// state only occurs for rows predating this core.
func (s *ShareService) ValidateAccess(ctx context.Context, token string) (*models.File, error) {
	// tokens are uuid4; anything else can never match a stored link, and
	// must not reach the uuid-typed column as a bind parameter
	if _, err := uuid.Parse(token); err != nil {
		return nil, common.ErrorNotFound
	}

	file, err := s.fileRepo.GetByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("share lookup: %w", err)
	}

	if file.IsShareExpired(time.Now()) {
		return nil, common.ErrShareExpired
	}

	return file, nil
}
