package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
)

// AdminRepository stores admin users in the users table
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// Create inserts the admin and fills in ID and CreatedAt
func (r *AdminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, admin.Username, admin.PasswordHash).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert admin user: %w", translateError(err))
	}
	return nil
}

// GetByUsername looks up an admin by exact, case-sensitive username
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return r.getOne(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username)
}

// GetByID looks up an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	return r.getOne(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)
}

// Count returns the number of admin users
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return count, nil
}

func (r *AdminRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return admin, nil
}

var _ repositories.AdminRepository = (*AdminRepository)(nil)
