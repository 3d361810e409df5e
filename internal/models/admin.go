package models

import (
	"time"
)

// Admin roles
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Admin account statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Admin is an administrator account. The ID doubles as the login
// identifier and is unique across the collection.
type Admin struct {
	ID           string
	PasswordHash string
	Name         string
	Email        string
	Role         string // "admin", "super_admin"
	Status       string // "active", "inactive"
	CreatedAt    time.Time
	LastLoginAt  *time.Time
	LoginCount   int
}
