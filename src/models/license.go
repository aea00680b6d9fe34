package models

import "time"

// License is an equipment license/certification record
type License struct {
	ID            int64     `json:"id"`
	SerialNumber  string    `json:"serial_number"`
	LicenseNumber string    `json:"license_number"`
	Brand         *string   `json:"brand"`
	Model         *string   `json:"model"`
	LicenseDate   time.Time `json:"license_date"`
	ExpiryDate    time.Time `json:"expiry_date"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsExpired reports whether the license has expired as of the current local date
func (l License) IsExpired() bool {
	return l.IsExpiredOn(time.Now())
}

// IsExpiredOn reports whether the calendar date of now is strictly after the expiry date.
// A license expiring today is still active.
func (l License) IsExpiredOn(now time.Time) bool {
	return CalendarDate(now).After(CalendarDate(l.ExpiryDate))
}

// Status returns the derived status as of the current local date
func (l License) Status() LicenseStatus {
	return l.StatusOn(time.Now())
}

// StatusOn returns the derived status as of now
func (l License) StatusOn(now time.Time) LicenseStatus {
	if l.IsExpiredOn(now) {
		return StatusExpired
	}
	return StatusActive
}

// CalendarDate strips the clock and zone from t, keeping the date as seen in t's location
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return CalendarDate(t).Format(DateLayout)
}

// StringValue dereferences an optional text column
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OptionalString maps an empty string to NULL
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
