package models

// LicenseStatus is the derived state of a license record
type LicenseStatus string

const (
	// StatusActive means the expiry date is today or later
	StatusActive LicenseStatus = "Active"
	// StatusExpired means the expiry date is strictly in the past
	StatusExpired LicenseStatus = "Expired"
)

// DateLayout is the only accepted format for license and expiry dates
const DateLayout = "2006-01-02"

// LicensesPerPage is the admin dashboard page size
const LicensesPerPage = 20
