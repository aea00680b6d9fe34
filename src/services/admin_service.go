package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/khabaroff/metrology-license-registry/src/logging"
	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxUsernameLength = 80
	minPasswordLength = 8
)

// AdminService handles admin user operations
type AdminService struct {
	repo      repositories.AdminRepository
	logger    zerolog.Logger
	dummyHash []byte
}

// NewAdminService creates a new admin service
func NewAdminService(repo repositories.AdminRepository) *AdminService {
	// Compared against when the username is unknown so both paths pay the bcrypt cost
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return &AdminService{
		repo:      repo,
		logger:    logging.NewLogger("admin_service"),
		dummyHash: dummy,
	}
}

// CreateAdminUser creates a new admin user with hashed password
func (as *AdminService) CreateAdminUser(ctx context.Context, username, password string) (*models.AdminUser, error) {
	if len(username) < 1 || len(username) > maxUsernameLength {
		return nil, newValidationError("username", fmt.Sprintf("username must be between 1 and %d characters", maxUsernameLength))
	}
	if len(password) < minPasswordLength {
		return nil, newValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := as.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	as.logger.Info().Int64("admin_id", admin.ID).Str("username", admin.Username).Msg("admin user created")
	return admin, nil
}

// HasAdmins checks if any admin users exist in the database
func (as *AdminService) HasAdmins(ctx context.Context) (bool, error) {
	count, err := as.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check admin users: %w", err)
	}
	return count > 0, nil
}

// EnsureAdmin creates the first admin when none exists yet.
// It reports whether an account was created.
func (as *AdminService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	hasAdmins, err := as.HasAdmins(ctx)
	if err != nil {
		return false, err
	}
	if hasAdmins {
		return false, nil
	}
	if _, err := as.CreateAdminUser(ctx, username, password); err != nil {
		return false, err
	}
	return true, nil
}

// AuthenticateAdmin verifies username and password.
// Usernames are matched exactly, including case.
func (as *AdminService) AuthenticateAdmin(ctx context.Context, username, password string) (*models.AdminUser, error) {
	admin, err := as.repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to load admin user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(as.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// GetAdminByID retrieves admin user by ID
func (as *AdminService) GetAdminByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	admin, err := as.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load admin user: %w", err)
	}
	return admin, nil
}

// AdminExists reports whether an admin account with the ID is still stored
func (as *AdminService) AdminExists(ctx context.Context, id int64) (bool, error) {
	if _, err := as.GetAdminByID(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
