package repositories

import (
	"errors"
	"fmt"
	"strings"

	"electromart/internal/store/models"
	"electromart/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBrandRequestRepository is a GORM implementation of BrandRequestRepository.
type GORMBrandRequestRepository struct {
	db *gorm.DB
}

// NewGORMBrandRequestRepository creates a new instance of GORMBrandRequestRepository.
func NewGORMBrandRequestRepository(db *gorm.DB) *GORMBrandRequestRepository {
	return &GORMBrandRequestRepository{db: db}
}

// Create inserts a new request.
func (r *GORMBrandRequestRepository) Create(req *models.BrandRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if err := r.db.Create(req).Error; err != nil {
		return fmt.Errorf("failed to create brand request: %w", err)
	}
	return nil
}

// Save persists changes to an existing request.
func (r *GORMBrandRequestRepository) Save(req *models.BrandRequest) error {
	if err := r.db.Save(req).Error; err != nil {
		return fmt.Errorf("failed to save brand request %s: %w", req.ID, err)
	}
	return nil
}

// FindByID looks up a request by id.
func (r *GORMBrandRequestRepository) FindByID(id string) (*models.BrandRequest, error) {
	var req models.BrandRequest
	if err := r.db.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "brand request %s not found", id)
		}
		return nil, fmt.Errorf("failed to get brand request %s: %w", id, err)
	}
	return &req, nil
}

// FindActiveByApplicant returns the applicant's non-REJECTED request, if any.
// An applicant holds at most one such request at a time.
func (r *GORMBrandRequestRepository) FindActiveByApplicant(applicantID string) (*models.BrandRequest, error) {
	var req models.BrandRequest
	err := r.db.
		Where("applicant_id = ? AND status <> ?", applicantID, models.StatusRejected).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "no active request for applicant %s", applicantID)
		}
		return nil, fmt.Errorf("failed to get active request for %s: %w", applicantID, err)
	}
	return &req, nil
}

// FindLatestByApplicant returns the applicant's most recent request of any
// status.
func (r *GORMBrandRequestRepository) FindLatestByApplicant(applicantID string) (*models.BrandRequest, error) {
	var req models.BrandRequest
	err := r.db.
		Where("applicant_id = ?", applicantID).
		Order("created_at desc").
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "no request for applicant %s", applicantID)
		}
		return nil, fmt.Errorf("failed to get latest request for %s: %w", applicantID, err)
	}
	return &req, nil
}

// FindPendingBySlug returns a PENDING request with this slug, case-insensitively.
func (r *GORMBrandRequestRepository) FindPendingBySlug(slug string) (*models.BrandRequest, error) {
	return r.findPending("LOWER(slug) = ?", strings.ToLower(strings.TrimSpace(slug)))
}

// FindPendingByName returns a PENDING request with this name, case-insensitively.
func (r *GORMBrandRequestRepository) FindPendingByName(name string) (*models.BrandRequest, error) {
	return r.findPending("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
}

func (r *GORMBrandRequestRepository) findPending(cond string, arg string) (*models.BrandRequest, error) {
	var req models.BrandRequest
	err := r.db.
		Where("status = ?", models.StatusPending).
		Where(cond, arg).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "no pending request matches")
		}
		return nil, fmt.Errorf("failed to get pending request: %w", err)
	}
	return &req, nil
}

// List returns requests, optionally filtered by status, newest first.
func (r *GORMBrandRequestRepository) List(status *models.RequestStatus) ([]models.BrandRequest, error) {
	var reqs []models.BrandRequest
	query := r.db.Order("created_at desc")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("failed to list brand requests: %w", err)
	}
	return reqs, nil
}
