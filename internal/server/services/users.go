package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/mycloud/internal/common"
	sc "github.com/dmitrijs2005/mycloud/internal/server/config"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/users"
)

// loginPattern: latin letter first, then letters and digits, 4-20 total.
var loginPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{3,19}$`)

// UserService creates accounts and verifies passwords. Ceilings are
// assigned here once at creation and never changed through normal flows.
type UserService struct {
	userRepo users.Repository
	config   *sc.Config
}

func NewUserService(userRepo users.Repository, config *sc.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		config:   config,
	}
}

// Register creates a regular account with the default ceiling, clamped to
// the configured floor.
func (s *UserService) Register(ctx context.Context, userName, email, fullName, password string) (*models.User, error) {
	return s.register(ctx, userName, email, fullName, password, false)
}

// RegisterAdmin creates an elevated account with the fixed admin ceiling.
func (s *UserService) RegisterAdmin(ctx context.Context, userName, email, fullName, password string) (*models.User, error) {
	return s.register(ctx, userName, email, fullName, password, true)
}

func (s *UserService) register(ctx context.Context, userName, email, fullName, password string, isAdmin bool) (*models.User, error) {

	if !loginPattern.MatchString(userName) {
		return nil, common.ErrorInvalidLogin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	maxStorage := s.config.DefaultUserBytes
	if isAdmin {
		maxStorage = s.config.AdminUserBytes
	}
	if maxStorage < s.config.MinUserBytes {
		maxStorage = s.config.MinUserBytes
	}

	user := &models.User{
		UserName:     userName,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		MaxStorage:   maxStorage,
	}

	user, err = s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a login/password pair. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, userName, password string) (*models.User, error) {
	user, err := s.userRepo.GetByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}
