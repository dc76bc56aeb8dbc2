package models

import (
	"strings"
	"time"

	"electromart/pkg/apperr"
)

// Role of a user. New accounts start as USER; ADMIN is only ever assigned
// out-of-band.
type Role string

const (
	RoleUser        Role = "USER"
	RoleBrandSeller Role = "BRAND_SELLER"
	RoleAdmin       Role = "ADMIN"
)

// ParseRole validates a role string coming off the wire.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleBrandSeller:
		return RoleBrandSeller, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", apperr.Errorf(apperr.ErrBadRequest, "invalid role %q", s)
	}
}

// AuthProvider identifies how the account authenticates. Immutable after
// creation.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
	ProviderGithub AuthProvider = "GITHUB"
)

// User is the canonical identity record. The store service keeps a shadow
// copy of it, fed by the sync channel.
type User struct {
	ID            string       `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email         string       `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Name          string       `json:"name" gorm:"type:varchar(255)" validate:"required,min=2,max=255"`
	Password      string       `json:"-" gorm:"type:varchar(255)"`
	Role          Role         `json:"role" gorm:"type:varchar(32)"`
	Provider      AuthProvider `json:"provider" gorm:"type:varchar(32)"`
	ProviderID    string       `json:"-" gorm:"type:varchar(255)"`
	EmailVerified bool         `json:"emailVerified"`
	ImageURL      string       `json:"imageUrl"`
	TokenVersion  int          `json:"tokenVersion"`
	Deleted       bool         `json:"deleted"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// TableName keeps the table name aligned with the persisted layout.
func (User) TableName() string { return "users" }
