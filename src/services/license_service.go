package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/khabaroff/metrology-license-registry/src/logging"
	"github.com/khabaroff/metrology-license-registry/src/models"
	"github.com/khabaroff/metrology-license-registry/src/repositories"
	"github.com/rs/zerolog"
)

// LicenseInput holds the raw form fields of a license
type LicenseInput struct {
	SerialNumber  string
	LicenseNumber string
	Brand         string
	Model         string
	LicenseDate   string
	ExpiryDate    string
	Notes         string
}

// normalize trims every field, uppercases the identifiers, checks lengths and parses the dates
func (in LicenseInput) normalize() (*models.License, error) {
	serial := strings.ToUpper(strings.TrimSpace(in.SerialNumber))
	number := strings.ToUpper(strings.TrimSpace(in.LicenseNumber))
	if serial == "" || number == "" {
		field := "serial_number"
		if serial != "" {
			field = "license_number"
		}
		return nil, newValidationError(field, MsgRequiredFields)
	}

	brand := strings.TrimSpace(in.Brand)
	model := strings.TrimSpace(in.Model)
	for _, f := range []struct{ field, label, value string }{
		{"serial_number", "Serial number", serial},
		{"license_number", "License number", number},
		{"brand", "Brand", brand},
		{"model", "Model", model},
	} {
		if utf8.RuneCountInString(f.value) > MaxFieldLength {
			return nil, newValidationError(f.field, fieldTooLongMessage(f.label))
		}
	}

	licenseDate, err := models.ParseDate(strings.TrimSpace(in.LicenseDate))
	if err != nil {
		return nil, newValidationError("license_date", MsgInvalidDate)
	}
	expiryDate, err := models.ParseDate(strings.TrimSpace(in.ExpiryDate))
	if err != nil {
		return nil, newValidationError("expiry_date", MsgInvalidDate)
	}

	return &models.License{
		SerialNumber:  serial,
		LicenseNumber: number,
		Brand:         models.OptionalString(brand),
		Model:         models.OptionalString(model),
		LicenseDate:   licenseDate,
		ExpiryDate:    expiryDate,
		Notes:         models.OptionalString(strings.TrimSpace(in.Notes)),
	}, nil
}

// InputFromLicense fills form fields from a stored license
func InputFromLicense(l *models.License) LicenseInput {
	return LicenseInput{
		SerialNumber:  l.SerialNumber,
		LicenseNumber: l.LicenseNumber,
		Brand:         models.StringValue(l.Brand),
		Model:         models.StringValue(l.Model),
		LicenseDate:   models.FormatDate(l.LicenseDate),
		ExpiryDate:    models.FormatDate(l.ExpiryDate),
		Notes:         models.StringValue(l.Notes),
	}
}

// LicensePage is one page of the admin license list
type LicensePage struct {
	Licenses []models.License
	Search   string
	Page     int
	PerPage  int
	Total    int
	Pages    int
}

// HasPrev reports whether a previous page exists
func (p *LicensePage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists
func (p *LicensePage) HasNext() bool { return p.Page < p.Pages }

// PrevPage returns the previous page number
func (p *LicensePage) PrevPage() int { return p.Page - 1 }

// NextPage returns the next page number
func (p *LicensePage) NextPage() int { return p.Page + 1 }

// DuplicateCheck is the result of a duplicate check
type DuplicateCheck struct {
	SerialExists  bool `json:"serial_exists"`
	LicenseExists bool `json:"license_exists"`
}

// LicenseService implements admin operations on license records
type LicenseService struct {
	repo   repositories.LicenseRepository
	logger zerolog.Logger
}

// NewLicenseService creates a new license service
func NewLicenseService(repo repositories.LicenseRepository) *LicenseService {
	return &LicenseService{
		repo:   repo,
		logger: logging.NewLogger("license_service"),
	}
}

// List returns a page of licenses, newest first. Pages below 1 are treated as 1;
// pages past the end are empty.
func (s *LicenseService) List(ctx context.Context, page int, search string) (*LicensePage, error) {
	if page < 1 {
		page = 1
	}
	search = strings.TrimSpace(search)

	licenses, total, err := s.repo.List(ctx, repositories.LicenseFilter{
		Search: search,
		Limit:  models.LicensesPerPage,
		Offset: (page - 1) * models.LicensesPerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list licenses: %w", err)
	}

	return &LicensePage{
		Licenses: licenses,
		Search:   search,
		Page:     page,
		PerPage:  models.LicensesPerPage,
		Total:    total,
		Pages:    (total + models.LicensesPerPage - 1) / models.LicensesPerPage,
	}, nil
}

// Get loads a license by ID
func (s *LicenseService) Get(ctx context.Context, id int64) (*models.License, error) {
	license, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load license %d: %w", id, err)
	}
	return license, nil
}

// Create validates the input, checks for duplicates and stores a new license
func (s *LicenseService) Create(ctx context.Context, in LicenseInput) (*models.License, error) {
	license, err := in.normalize()
	if err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, license.SerialNumber, license.LicenseNumber, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, license); err != nil {
		return nil, translateWriteError(err)
	}

	s.logger.Info().
		Int64("license_id", license.ID).
		Str("serial_number", license.SerialNumber).
		Msg("license created")
	return license, nil
}

// Update replaces every field of an existing license.
// Unchanged identifiers are not re-checked; changed ones are checked against all other records.
func (s *LicenseService) Update(ctx context.Context, id int64, in LicenseInput) (*models.License, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	license, err := in.normalize()
	if err != nil {
		return nil, err
	}
	license.ID = id

	serial, number := license.SerialNumber, license.LicenseNumber
	if serial == existing.SerialNumber {
		serial = ""
	}
	if number == existing.LicenseNumber {
		number = ""
	}
	if err := s.ensureUnique(ctx, serial, number, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, license); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, translateWriteError(err)
	}

	s.logger.Info().Int64("license_id", id).Msg("license updated")
	return license, nil
}

// Delete permanently removes a license
func (s *LicenseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete license %d: %w", id, err)
	}

	s.logger.Info().Int64("license_id", id).Msg("license deleted")
	return nil
}

// CheckDuplicate reports whether another license already uses the serial or license number.
// Empty values are not checked; a match on excludeID does not count.
func (s *LicenseService) CheckDuplicate(ctx context.Context, serialNumber, licenseNumber string, excludeID int64) (DuplicateCheck, error) {
	var result DuplicateCheck

	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber != "" {
		taken, err := s.taken(ctx, s.repo.FindBySerialNumber, serialNumber, excludeID)
		if err != nil {
			return result, err
		}
		result.SerialExists = taken
	}

	licenseNumber = strings.TrimSpace(licenseNumber)
	if licenseNumber != "" {
		taken, err := s.taken(ctx, s.repo.FindByLicenseNumber, licenseNumber, excludeID)
		if err != nil {
			return result, err
		}
		result.LicenseExists = taken
	}

	return result, nil
}

// ensureUnique fails with a duplicate error when a non-empty identifier belongs to
// a license other than excludeID
func (s *LicenseService) ensureUnique(ctx context.Context, serialNumber, licenseNumber string, excludeID int64) error {
	check, err := s.CheckDuplicate(ctx, serialNumber, licenseNumber, excludeID)
	if err != nil {
		return err
	}
	if check.SerialExists {
		return ErrDuplicateSerial
	}
	if check.LicenseExists {
		return ErrDuplicateLicenseNumber
	}
	return nil
}

type findFunc func(ctx context.Context, value string) (*models.License, error)

func (s *LicenseService) taken(ctx context.Context, find findFunc, value string, excludeID int64) (bool, error) {
	existing, err := find(ctx, value)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check duplicates: %w", err)
	}
	return existing.ID != excludeID, nil
}

// translateWriteError maps a storage uniqueness violation onto ErrDuplicate
func translateWriteError(err error) error {
	var dup *repositories.DuplicateKeyError
	if errors.As(err, &dup) {
		return fmt.Errorf("%w: %s", ErrDuplicate, dup.Error())
	}
	return fmt.Errorf("failed to save license: %w", err)
}
