package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/khabaroff/metrology-license-registry/src/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a write violates a uniqueness constraint
	ErrDuplicateKey = errors.New("duplicate key")
)

// Columns guarded by uniqueness constraints
const (
	ColumnUsername      = "username"
	ColumnSerialNumber  = "serial_number"
	ColumnLicenseNumber = "license_number"
)

// DuplicateKeyError carries the column whose uniqueness constraint was violated.
// Column is empty when the constraint could not be identified.
type DuplicateKeyError struct {
	Column     string
	Constraint string
}

func (e *DuplicateKeyError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("duplicate key violates constraint %q", e.Constraint)
	}
	return fmt.Sprintf("duplicate key on %s", e.Column)
}

// Is makes errors.Is(err, ErrDuplicateKey) match
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// AdminRepository defines the interface for admin data access
type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	GetByID(ctx context.Context, id int64) (*models.AdminUser, error)
	Count(ctx context.Context) (int, error)
}

// LicenseFilter selects a page of license records
type LicenseFilter struct {
	// Search is matched as a case-insensitive substring of serial number,
	// license number or brand. Empty means no filter.
	Search string
	Limit  int
	Offset int
}

// LicenseRepository defines the interface for license data access
type LicenseRepository interface {
	// FindBySerialNumber is a case-insensitive exact match
	FindBySerialNumber(ctx context.Context, serialNumber string) (*models.License, error)
	// FindByLicenseNumber is a case-insensitive exact match
	FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.License, error)
	GetByID(ctx context.Context, id int64) (*models.License, error)

	// List returns records ordered newest first and the total count matching the filter
	List(ctx context.Context, filter LicenseFilter) ([]models.License, int, error)

	Create(ctx context.Context, license *models.License) error
	Update(ctx context.Context, license *models.License) error
	Delete(ctx context.Context, id int64) error
}
