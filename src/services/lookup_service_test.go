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

func seedLicense(repo *mock.LicenseRepository, serial, number, brand string) *models.License {
	issued, _ := models.ParseDate("2024-01-01")
	expires, _ := models.ParseDate("2030-01-01")
	l := &models.License{
		SerialNumber:  serial,
		LicenseNumber: number,
		Brand:         models.OptionalString(brand),
		LicenseDate:   issued,
		ExpiryDate:    expires,
	}
	repo.Seed(l)
	return l
}

func TestLookupService_FindByExactSerial(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewLicenseRepository()
	seedLicense(repo, "BB123", "LIC-1", "Acme")
	service := NewLookupService(repo)

	t.Run("matches ignoring case and surrounding spaces", func(t *testing.T) {
		license, found, err := service.FindByExactSerial(ctx, " bb123 ")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "BB123", license.SerialNumber)
	})

	t.Run("never matches substrings or superstrings", func(t *testing.T) {
		for _, serial := range []string{"BB1234", "xBB123x", "BB12", "B"} {
			license, found, err := service.FindByExactSerial(ctx, serial)
			require.NoError(t, err)
			assert.False(t, found, "serial %q", serial)
			assert.Nil(t, license)
		}
	})

	t.Run("blank serial is not found without a query", func(t *testing.T) {
		calls := len(repo.Calls["FindBySerialNumber"])
		_, found, err := service.FindByExactSerial(ctx, "   ")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Len(t, repo.Calls["FindBySerialNumber"], calls)
	})

	t.Run("storage failure is an error", func(t *testing.T) {
		failing := mock.NewLicenseRepository()
		failing.FindBySerialNumberFunc = func(ctx context.Context, serial string) (*models.License, error) {
			return nil, errors.New("connection reset")
		}
		_, found, err := NewLookupService(failing).FindByExactSerial(ctx, "BB123")
		assert.Error(t, err)
		assert.False(t, found)
	})
}
