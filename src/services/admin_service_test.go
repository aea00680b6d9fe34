package services

import (
	"context"
	"errors"
	"testing"

	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_CreateAdminUser(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password", func(t *testing.T) {
		repo := mock.NewAdminRepository()
		service := NewAdminService(repo)

		admin, err := service.CreateAdminUser(ctx, "admin", "s3cret-pass")
		require.NoError(t, err)
		assert.NotZero(t, admin.ID)
		assert.NotEqual(t, "s3cret-pass", admin.PasswordHash)
		assert.Len(t, repo.Calls["Create"], 1)
	})

	t.Run("rejects short password", func(t *testing.T) {
		service := NewAdminService(mock.NewAdminRepository())

		_, err := service.CreateAdminUser(ctx, "admin", "short")
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "password", verr.Field)
	})

	t.Run("rejects empty username", func(t *testing.T) {
		service := NewAdminService(mock.NewAdminRepository())

		_, err := service.CreateAdminUser(ctx, "", "long-enough")
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "username", verr.Field)
	})

	t.Run("reports existing username", func(t *testing.T) {
		service := NewAdminService(mock.NewAdminRepository())

		_, err := service.CreateAdminUser(ctx, "admin", "long-enough")
		require.NoError(t, err)
		_, err = service.CreateAdminUser(ctx, "admin", "another-pass")
		assert.ErrorIs(t, err, ErrAdminExists)
	})
}

func TestAdminService_AuthenticateAdmin(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewAdminRepository()
	service := NewAdminService(repo)

	created, err := service.CreateAdminUser(ctx, "admin", "correct-horse")
	require.NoError(t, err)

	t.Run("accepts correct password", func(t *testing.T) {
		admin, err := service.AuthenticateAdmin(ctx, "admin", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, created.ID, admin.ID)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := service.AuthenticateAdmin(ctx, "admin", "wrong-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		_, err := service.AuthenticateAdmin(ctx, "nobody", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("username is case-sensitive", func(t *testing.T) {
		_, err := service.AuthenticateAdmin(ctx, "ADMIN", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("surfaces storage failures", func(t *testing.T) {
		failing := mock.NewAdminRepository()
		failing.GetByUsernameFunc = func(ctx context.Context, username string) (*models.AdminUser, error) {
			return nil, errors.New("connection refused")
		}
		_, err := NewAdminService(failing).AuthenticateAdmin(ctx, "admin", "correct-horse")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAdminService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewAdminRepository()
	service := NewAdminService(repo)

	created, err := service.EnsureAdmin(ctx, "admin", "first-password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = service.EnsureAdmin(ctx, "other", "second-password")
	require.NoError(t, err)
	assert.False(t, created)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAdminService_GetAdminByID(t *testing.T) {
	ctx := context.Background()
	service := NewAdminService(mock.NewAdminRepository())

	created, err := service.CreateAdminUser(ctx, "admin", "long-enough")
	require.NoError(t, err)

	admin, err := service.GetAdminByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)

	_, err = service.GetAdminByID(ctx, created.ID+1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_AdminExists(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewAdminRepository()
	service := NewAdminService(repo)

	created, err := service.CreateAdminUser(ctx, "admin", "long-enough")
	require.NoError(t, err)

	exists, err := service.AdminExists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = service.AdminExists(ctx, created.ID+1)
	require.NoError(t, err)
	assert.False(t, exists)

	repo.GetByIDFunc = func(ctx context.Context, id int64) (*models.AdminUser, error) {
		return nil, errors.New("connection reset")
	}
	_, err = service.AdminExists(ctx, created.ID)
	assert.Error(t, err)
}
