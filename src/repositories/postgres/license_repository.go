package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
)

const licenseColumns = `id, serial_number, license_number, brand, model,
	license_date, expiry_date, notes, created_at, updated_at`

// LicenseRepository stores license records in the licenses table
type LicenseRepository struct {
	pool *pgxpool.Pool
}

// NewLicenseRepository creates a new license repository
func NewLicenseRepository(pool *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{pool: pool}
}

// FindBySerialNumber matches the whole serial number, ignoring case only
func (r *LicenseRepository) FindBySerialNumber(ctx context.Context, serialNumber string) (*models.License, error) {
	return r.getOne(ctx, `
		SELECT `+licenseColumns+`
		FROM licenses
		WHERE LOWER(serial_number) = LOWER($1)
		LIMIT 1
	`, serialNumber)
}

// FindByLicenseNumber matches the whole license number, ignoring case only
func (r *LicenseRepository) FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.License, error) {
	return r.getOne(ctx, `
		SELECT `+licenseColumns+`
		FROM licenses
		WHERE LOWER(license_number) = LOWER($1)
		LIMIT 1
	`, licenseNumber)
}

// GetByID loads a license by ID
func (r *LicenseRepository) GetByID(ctx context.Context, id int64) (*models.License, error) {
	return r.getOne(ctx, `
		SELECT `+licenseColumns+`
		FROM licenses
		WHERE id = $1
	`, id)
}

// List returns one page of licenses, newest first, plus the total matching count
func (r *LicenseRepository) List(ctx context.Context, filter repositories.LicenseFilter) ([]models.License, int, error) {
	var (
		where string
		args  []interface{}
	)
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		where = `WHERE serial_number ILIKE $1 OR license_number ILIKE $1 OR brand ILIKE $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM licenses `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count licenses: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM licenses
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, licenseColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list licenses: %w", err)
	}
	defer rows.Close()

	licenses := []models.License{}
	for rows.Next() {
		license, err := scanLicense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan license: %w", err)
		}
		licenses = append(licenses, *license)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate licenses: %w", err)
	}

	return licenses, total, nil
}

// Create inserts a license and fills in ID and timestamps
func (r *LicenseRepository) Create(ctx context.Context, license *models.License) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO licenses (serial_number, license_number, brand, model,
			license_date, expiry_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`,
		license.SerialNumber, license.LicenseNumber, license.Brand, license.Model,
		license.LicenseDate, license.ExpiryDate, license.Notes,
	).Scan(&license.ID, &license.CreatedAt, &license.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert license: %w", translateError(err))
	}
	return nil
}

// Update replaces every editable field and refreshes updated_at
func (r *LicenseRepository) Update(ctx context.Context, license *models.License) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE licenses
		SET serial_number = $2,
		    license_number = $3,
		    brand = $4,
		    model = $5,
		    license_date = $6,
		    expiry_date = $7,
		    notes = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`,
		license.ID, license.SerialNumber, license.LicenseNumber, license.Brand, license.Model,
		license.LicenseDate, license.ExpiryDate, license.Notes,
	).Scan(&license.CreatedAt, &license.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update license %d: %w", license.ID, translateError(err))
	}
	return nil
}

// Delete removes a license permanently
func (r *LicenseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM licenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete license %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *LicenseRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.License, error) {
	license, err := scanLicense(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load license: %w", err)
	}
	return license, nil
}

func scanLicense(row pgx.Row) (*models.License, error) {
	l := &models.License{}
	err := row.Scan(
		&l.ID, &l.SerialNumber, &l.LicenseNumber, &l.Brand, &l.Model,
		&l.LicenseDate, &l.ExpiryDate, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// escapeLike makes the search term match literally inside an ILIKE pattern
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

var _ repositories.LicenseRepository = (*LicenseRepository)(nil)
