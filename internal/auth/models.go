// Package auth manages officer accounts and API token issuance.
package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Auth errors.
var (
	ErrOfficerNotFound    = errors.New("officer not found")
	ErrBadgeAlreadyTaken  = errors.New("badge number already registered")
	ErrInvalidCredentials = errors.New("invalid badge number or password")
	ErrStoreUnavailable   = errors.New("auth store unavailable")
)

// Role determines what an authenticated officer may do.
type Role string

const (
	// RoleOfficer can submit reports and query hotspots and alerts.
	RoleOfficer Role = "officer"
	// RoleAdmin can additionally trigger hotspot rebuilds.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleOfficer || r == RoleAdmin
}

// Officer is a registered traffic officer account.
type Officer struct {
	ID           uuid.UUID
	BadgeNumber  string
	Name         string
	PasswordHash string
	Role         Role
	Station      string
	CreatedAt    time.Time
}

// RegisterInput is the payload for creating an officer account.
type RegisterInput struct {
	BadgeNumber string
	Name        string
	Password    string
	Station     string
	Role        Role
}

// LoginInput is the payload for authenticating an officer.
type LoginInput struct {
	BadgeNumber string
	Password    string
}

// Session is the result of a successful login or registration.
type Session struct {
	Officer     *Officer
	AccessToken string
	ExpiresAt   time.Time
}
