package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for explicit error handling.
// Callers distinguish failure modes with errors.Is / errors.As.

var (
	// ErrNotFound indicates the requested license does not exist
	ErrNotFound = errors.New("license not found")

	// ErrDuplicate indicates a uniqueness violation caught by the storage constraint
	ErrDuplicate = errors.New("duplicate data")

	// ErrDuplicateSerial indicates another license already uses the serial number
	ErrDuplicateSerial = fmt.Errorf("%w: serial number already exists", ErrDuplicate)

	// ErrDuplicateLicenseNumber indicates another license already uses the license number
	ErrDuplicateLicenseNumber = fmt.Errorf("%w: license number already exists", ErrDuplicate)

	// ErrUserNotFound indicates the admin user does not exist
	ErrUserNotFound = errors.New("admin user not found")

	// ErrInvalidCredentials indicates authentication failed
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAdminExists indicates the username is already taken
	ErrAdminExists = errors.New("admin user already exists")
)

// Validation messages shown to admins
const (
	MsgRequiredFields = "Serial number and license number are required."
	MsgInvalidDate    = "Invalid date format."
)

// MaxFieldLength is the longest serial number, license number, brand or model accepted
const MaxFieldLength = 100

// fieldTooLongMessage names the field that exceeded MaxFieldLength
func fieldTooLongMessage(label string) string {
	return fmt.Sprintf("%s must be at most %d characters.", label, MaxFieldLength)
}

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
