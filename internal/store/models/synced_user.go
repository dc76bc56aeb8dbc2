package models

import (
	"strings"
	"time"

	"electromart/pkg/apperr"
)

// Role mirrors the role enum of the user-management service.
type Role string

const (
	RoleUser        Role = "USER"
	RoleBrandSeller Role = "BRAND_SELLER"
	RoleAdmin       Role = "ADMIN"
)

// ParseRole validates a role string coming off the sync channel.
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

// SyncedUser is the store-local shadow of an identity record, extended with
// an optional brand link. The id is owned by the user-management service.
// Invariant: BrandID != nil implies Role == BRAND_SELLER.
type SyncedUser struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Name         string    `json:"name"`
	Role         Role      `json:"role" gorm:"type:varchar(32)"`
	TokenVersion int       `json:"tokenVersion"`
	Deleted      bool      `json:"deleted"`
	BrandID      *string   `json:"brandId,omitempty" gorm:"type:varchar(36)"`
	Brand        *Brand    `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName keeps the table name aligned with the persisted layout.
func (SyncedUser) TableName() string { return "synced_users" }

// IsActiveBrandSellerOf reports whether this shadow can act as the seller of
// the given brand.
func (u *SyncedUser) IsActiveBrandSellerOf(brandID string) bool {
	return !u.Deleted &&
		u.Role == RoleBrandSeller &&
		u.BrandID != nil &&
		*u.BrandID == brandID
}
