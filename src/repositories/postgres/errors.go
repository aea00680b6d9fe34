package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
)

// SQLSTATE unique_violation
const uniqueViolation = "23505"

var constraintColumns = map[string]string{
	"users_username_key":                repositories.ColumnUsername,
	"licenses_serial_number_key":        repositories.ColumnSerialNumber,
	"licenses_serial_number_lower_key":  repositories.ColumnSerialNumber,
	"licenses_license_number_key":       repositories.ColumnLicenseNumber,
	"licenses_license_number_lower_key": repositories.ColumnLicenseNumber,
}

// translateError maps driver errors onto repository sentinels
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &repositories.DuplicateKeyError{
			Column:     constraintColumns[pgErr.ConstraintName],
			Constraint: pgErr.ConstraintName,
		}
	}
	return err
}
