package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
)

// LicenseRepository is a mock implementation of repositories.LicenseRepository.
// Without a stub, calls fall back to an in-memory store with the same
// uniqueness and search rules as the Postgres repository.
type LicenseRepository struct {
	// Function stubs that can be overridden in tests
	FindBySerialNumberFunc  func(ctx context.Context, serialNumber string) (*models.License, error)
	FindByLicenseNumberFunc func(ctx context.Context, licenseNumber string) (*models.License, error)
	GetByIDFunc             func(ctx context.Context, id int64) (*models.License, error)
	ListFunc                func(ctx context.Context, filter repositories.LicenseFilter) ([]models.License, int, error)
	CreateFunc              func(ctx context.Context, license *models.License) error
	UpdateFunc              func(ctx context.Context, license *models.License) error
	DeleteFunc              func(ctx context.Context, id int64) error

	// Call tracking
	Calls map[string][]interface{}

	mu       sync.Mutex
	nextID   int64
	licenses map[int64]models.License
}

// NewLicenseRepository creates a new mock license repository
func NewLicenseRepository() *LicenseRepository {
	return &LicenseRepository{
		Calls:    make(map[string][]interface{}),
		licenses: make(map[int64]models.License),
	}
}

// Seed stores licenses directly, assigning IDs in order
func (m *LicenseRepository) Seed(licenses ...*models.License) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range licenses {
		m.insert(l)
	}
}

func (m *LicenseRepository) track(name string, arg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name] = append(m.Calls[name], arg)
}

func (m *LicenseRepository) FindBySerialNumber(ctx context.Context, serialNumber string) (*models.License, error) {
	m.track("FindBySerialNumber", serialNumber)
	if m.FindBySerialNumberFunc != nil {
		return m.FindBySerialNumberFunc(ctx, serialNumber)
	}
	return m.find(func(l models.License) bool {
		return strings.EqualFold(l.SerialNumber, serialNumber)
	})
}

func (m *LicenseRepository) FindByLicenseNumber(ctx context.Context, licenseNumber string) (*models.License, error) {
	m.track("FindByLicenseNumber", licenseNumber)
	if m.FindByLicenseNumberFunc != nil {
		return m.FindByLicenseNumberFunc(ctx, licenseNumber)
	}
	return m.find(func(l models.License) bool {
		return strings.EqualFold(l.LicenseNumber, licenseNumber)
	})
}

func (m *LicenseRepository) GetByID(ctx context.Context, id int64) (*models.License, error) {
	m.track("GetByID", id)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return m.find(func(l models.License) bool { return l.ID == id })
}

func (m *LicenseRepository) List(ctx context.Context, filter repositories.LicenseFilter) ([]models.License, int, error) {
	m.track("List", filter)
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	term := strings.ToLower(filter.Search)
	matched := []models.License{}
	for _, l := range m.licenses {
		if term == "" ||
			strings.Contains(strings.ToLower(l.SerialNumber), term) ||
			strings.Contains(strings.ToLower(l.LicenseNumber), term) ||
			strings.Contains(strings.ToLower(models.StringValue(l.Brand)), term) {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func (m *LicenseRepository) Create(ctx context.Context, license *models.License) error {
	m.track("Create", license)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, license)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(license); err != nil {
		return err
	}
	m.insert(license)
	return nil
}

func (m *LicenseRepository) Update(ctx context.Context, license *models.License) error {
	m.track("Update", license)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, license)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.licenses[license.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if err := m.checkUnique(license); err != nil {
		return err
	}
	license.CreatedAt = existing.CreatedAt
	license.UpdatedAt = time.Now().UTC()
	m.licenses[license.ID] = *license
	return nil
}

func (m *LicenseRepository) Delete(ctx context.Context, id int64) error {
	m.track("Delete", id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.licenses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.licenses, id)
	return nil
}

// Len returns the number of stored licenses
func (m *LicenseRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.licenses)
}

func (m *LicenseRepository) find(match func(models.License) bool) (*models.License, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.licenses {
		if match(l) {
			found := l
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// insert must be called with mu held
func (m *LicenseRepository) insert(license *models.License) {
	m.nextID++
	now := time.Now().UTC()
	license.ID = m.nextID
	license.CreatedAt = now
	license.UpdatedAt = now
	m.licenses[license.ID] = *license
}

// checkUnique must be called with mu held
func (m *LicenseRepository) checkUnique(license *models.License) error {
	for id, l := range m.licenses {
		if id == license.ID {
			continue
		}
		if strings.EqualFold(l.SerialNumber, license.SerialNumber) {
			return &repositories.DuplicateKeyError{Column: repositories.ColumnSerialNumber}
		}
		if strings.EqualFold(l.LicenseNumber, license.LicenseNumber) {
			return &repositories.DuplicateKeyError{Column: repositories.ColumnLicenseNumber}
		}
	}
	return nil
}

// Ensure LicenseRepository implements the interface
var _ repositories.LicenseRepository = (*LicenseRepository)(nil)
