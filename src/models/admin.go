package models

import "time"

// AdminUser represents an admin account allowed to manage license records
type AdminUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose
	CreatedAt    time.Time `json:"created_at"`
}
