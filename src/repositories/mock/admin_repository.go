package mock

import (
	"context"
	"sync"
	"time"

	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
)

// AdminRepository is a mock implementation of repositories.AdminRepository.
// Without a stub, calls fall back to an in-memory store.
type AdminRepository struct {
	// Function stubs that can be overridden in tests
	CreateFunc        func(ctx context.Context, admin *models.AdminUser) error
	GetByUsernameFunc func(ctx context.Context, username string) (*models.AdminUser, error)
	GetByIDFunc       func(ctx context.Context, id int64) (*models.AdminUser, error)
	CountFunc         func(ctx context.Context) (int, error)

	// Call tracking
	Calls map[string][]interface{}

	mu     sync.Mutex
	nextID int64
	admins map[int64]models.AdminUser
}

// NewAdminRepository creates a new mock admin repository
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{
		Calls:  make(map[string][]interface{}),
		admins: make(map[int64]models.AdminUser),
	}
}

func (m *AdminRepository) track(name string, arg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name] = append(m.Calls[name], arg)
}

func (m *AdminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	m.track("Create", admin)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, admin)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.admins {
		if existing.Username == admin.Username {
			return &repositories.DuplicateKeyError{Column: repositories.ColumnUsername}
		}
	}
	m.nextID++
	admin.ID = m.nextID
	admin.CreatedAt = time.Now().UTC()
	m.admins[admin.ID] = *admin
	return nil
}

func (m *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	m.track("GetByUsername", username)
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, admin := range m.admins {
		if admin.Username == username {
			found := admin
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *AdminRepository) GetByID(ctx context.Context, id int64) (*models.AdminUser, error) {
	m.track("GetByID", id)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.admins[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &admin, nil
}

func (m *AdminRepository) Count(ctx context.Context) (int, error) {
	m.track("Count", nil)
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.admins), nil
}

// Ensure AdminRepository implements the interface
var _ repositories.AdminRepository = (*AdminRepository)(nil)
