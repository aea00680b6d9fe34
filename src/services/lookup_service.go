package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
)

// LookupService answers public serial number lookups
type LookupService struct {
	repo repositories.LicenseRepository
}

// NewLookupService creates a new lookup service
func NewLookupService(repo repositories.LicenseRepository) *LookupService {
	return &LookupService{repo: repo}
}

// FindByExactSerial returns the license whose serial number equals serial ignoring case.
// A missing license is reported through found, not as an error.
func (s *LookupService) FindByExactSerial(ctx context.Context, serial string) (license *models.License, found bool, err error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, false, nil
	}

	license, err = s.repo.FindBySerialNumber(ctx, serial)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up serial number: %w", err)
	}
	return license, true, nil
}
