package models

import (
	"strings"
	"time"

	"electromart/pkg/apperr"
)

// RequestStatus is the state of a brand request. PENDING is the only
// non-terminal state.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// ParseRequestStatus validates a status filter string.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch RequestStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", apperr.Errorf(apperr.ErrBadRequest, "invalid status %q", s)
	}
}

// BrandRequest is a seller's application for a new brand. Transitions only
// PENDING→APPROVED or PENDING→REJECTED; terminal states are immutable apart
// from the review fields set at transition time.
type BrandRequest struct {
	ID              string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ApplicantID     string        `json:"applicantId" gorm:"type:varchar(36);index"`
	Name            string        `json:"name" gorm:"type:varchar(255)"`
	Slug            string        `json:"slug" gorm:"type:varchar(255)"`
	LogoURL         string        `json:"logoUrl"`
	Status          RequestStatus `json:"status" gorm:"type:varchar(16);index"`
	Reason          string        `json:"reason,omitempty"`
	ReviewedBy      string        `json:"reviewedBy,omitempty"`
	ApprovedBrandID string        `json:"approvedBrandId,omitempty" gorm:"type:varchar(36)"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// TableName keeps the table name aligned with the persisted layout.
func (BrandRequest) TableName() string { return "brand_requests" }
