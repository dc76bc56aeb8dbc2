package services

import (
	"errors"
	"log"
	"regexp"
	"strings"

	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/pkg/apperr"

	"gorm.io/gorm"
)

// slugPattern is the accepted shape of a brand slug. Non-ASCII slugs are
// rejected so case folding stays well-defined on both services.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// BrandRequestService drives the seller-onboarding state machine:
// PENDING → APPROVED | REJECTED. Approval creates the brand, binds the
// applicant to it and raises the applicant's role, all in one transaction;
// the role change is then propagated back to the user-management service
// best-effort.
type BrandRequestService struct {
	db           *gorm.DB
	logos        *LogoStore
	roleNotifier RoleNotifier
}

// NewBrandRequestService creates a new BrandRequestService. roleNotifier may
// be nil, in which case no reverse sync is attempted.
func NewBrandRequestService(db *gorm.DB, logos *LogoStore, roleNotifier RoleNotifier) *BrandRequestService {
	return &BrandRequestService{db: db, logos: logos, roleNotifier: roleNotifier}
}

// Submit files a new PENDING request for the applicant.
func (s *BrandRequestService) Submit(applicantID, name, slug, logoURL string) (*models.BrandRequest, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" || slug == "" {
		return nil, apperr.Errorf(apperr.ErrBadRequest, "name and slug are required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, apperr.Errorf(apperr.ErrBadRequest, "slug must match [a-z0-9-] and start with a letter or digit")
	}

	var created *models.BrandRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := repositories.NewGORMSyncedUserRepository(tx)
		brands := repositories.NewGORMBrandRepository(tx)
		requests := repositories.NewGORMBrandRequestRepository(tx)

		applicant, err := users.FindByID(applicantID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Errorf(apperr.ErrBadRequest, "applicant %s is not a synced user", applicantID)
			}
			return err
		}
		if applicant.Deleted {
			return apperr.Errorf(apperr.ErrBadRequest, "applicant is deleted")
		}
		if applicant.BrandID != nil {
			return apperr.Errorf(apperr.ErrBadRequest, "applicant is already associated to a brand")
		}

		if _, err := requests.FindActiveByApplicant(applicantID); err == nil {
			return apperr.Errorf(apperr.ErrBadRequest, "applicant already has an active brand request")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		if taken, err := brands.ExistsByName(name); err != nil {
			return err
		} else if taken {
			return apperr.Errorf(apperr.ErrConflict, "brand with that name already exists")
		}
		if taken, err := brands.ExistsBySlug(slug); err != nil {
			return err
		} else if taken {
			return apperr.Errorf(apperr.ErrConflict, "brand with that slug already exists")
		}

		if _, err := requests.FindPendingByName(name); err == nil {
			return apperr.Errorf(apperr.ErrConflict, "a pending request with that name already exists")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if _, err := requests.FindPendingBySlug(slug); err == nil {
			return apperr.Errorf(apperr.ErrConflict, "a pending request with that slug already exists")
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		created = &models.BrandRequest{
			ApplicantID: applicantID,
			Name:        name,
			Slug:        slug,
			LogoURL:     logoURL,
			Status:      models.StatusPending,
		}
		return requests.Create(created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AttachLogo stores an uploaded logo for a request. Only the applicant or an
// admin may upload.
func (s *BrandRequestService) AttachLogo(requestID string, data []byte, contentType, actorID string, actorIsAdmin bool) error {
	requests := repositories.NewGORMBrandRequestRepository(s.db)
	req, err := requests.FindByID(requestID)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return apperr.Errorf(apperr.ErrBadRequest, "empty file")
	}
	if !actorIsAdmin && actorID != req.ApplicantID {
		return apperr.Errorf(apperr.ErrForbidden, "only the applicant or an admin may upload the logo")
	}
	return s.logos.Put(requestID, data, contentType)
}

// GetLogo returns the uploaded logo for a request.
func (s *BrandRequestService) GetLogo(requestID string) (StoredLogo, error) {
	logo, ok := s.logos.Get(requestID)
	if !ok {
		return StoredLogo{}, apperr.Errorf(apperr.ErrNotFound, "no logo uploaded for request %s", requestID)
	}
	return logo, nil
}

// Approve transitions a PENDING request to APPROVED: it creates the brand,
// binds the applicant to it and raises the applicant's role, in a single
// transaction. Approving a request that already left PENDING returns it
// unchanged. If the brand name or slug was taken between submit and approve,
// the call fails with Conflict and the request stays PENDING.
func (s *BrandRequestService) Approve(requestID, adminID string) (*models.BrandRequest, error) {
	var (
		approved  *models.BrandRequest
		applicant string
		brand     *models.Brand
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := repositories.NewGORMSyncedUserRepository(tx)
		brands := repositories.NewGORMBrandRepository(tx)
		requests := repositories.NewGORMBrandRequestRepository(tx)

		req, err := requests.FindByID(requestID)
		if err != nil {
			return err
		}
		if req.Status != models.StatusPending {
			approved = req
			return nil
		}

		user, err := users.FindByID(req.ApplicantID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Errorf(apperr.ErrBadRequest, "applicant %s is not a synced user", req.ApplicantID)
			}
			return err
		}
		if user.Deleted {
			return apperr.Errorf(apperr.ErrBadRequest, "applicant is deleted")
		}
		if user.BrandID != nil {
			return apperr.Errorf(apperr.ErrBadRequest, "applicant is already associated to a brand")
		}

		created := &models.Brand{Name: req.Name, Slug: req.Slug, LogoURL: req.LogoURL}
		if err := brands.Create(created); err != nil {
			return err
		}

		user.BrandID = &created.ID
		user.Role = models.RoleBrandSeller
		user.Brand = nil
		if err := users.Save(user); err != nil {
			return err
		}

		req.Status = models.StatusApproved
		req.ReviewedBy = adminID
		req.ApprovedBrandID = created.ID
		if err := requests.Save(req); err != nil {
			return err
		}

		approved = req
		applicant = user.ID
		brand = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reverse sync runs strictly after commit and never rolls it back.
	if brand != nil && s.roleNotifier != nil {
		if err := s.roleNotifier.NotifyRole(applicant, models.RoleBrandSeller, brand); err != nil {
			log.Printf("Reverse sync of role for user %s failed: %v", applicant, err)
		}
	}
	return approved, nil
}

// Reject transitions a PENDING request to REJECTED with a reason. Rejecting a
// request that already left PENDING returns it unchanged. The uploaded logo
// is evicted.
func (s *BrandRequestService) Reject(requestID, reason, adminID string) (*models.BrandRequest, error) {
	requests := repositories.NewGORMBrandRequestRepository(s.db)
	req, err := requests.FindByID(requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return req, nil
	}

	req.Status = models.StatusRejected
	req.Reason = reason
	req.ReviewedBy = adminID
	if err := requests.Save(req); err != nil {
		return nil, err
	}
	s.logos.Delete(requestID)
	return req, nil
}

// EnsureApprovedRecordFor is the idempotent repair used by the bootstrap
// seeder for sellers that are already bound to a brand. Whatever state the
// applicant's latest request is in, the outcome is an APPROVED record
// pointing at the given brand, with the applicant bound as its seller.
func (s *BrandRequestService) EnsureApprovedRecordFor(applicantID string, brand *models.Brand, adminID string) (*models.BrandRequest, error) {
	var result *models.BrandRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := repositories.NewGORMSyncedUserRepository(tx)
		requests := repositories.NewGORMBrandRequestRepository(tx)

		req, err := requests.FindLatestByApplicant(applicantID)
		switch {
		case err == nil && req.Status == models.StatusApproved && req.ApprovedBrandID == brand.ID:
			result = req
		case err == nil:
			// Any other state, including an approval of a stale brand id
			// after a reset, is rewritten in place.
			req.Name = brand.Name
			req.Slug = brand.Slug
			req.LogoURL = brand.LogoURL
			req.Status = models.StatusApproved
			req.Reason = ""
			req.ReviewedBy = adminID
			req.ApprovedBrandID = brand.ID
			if err := requests.Save(req); err != nil {
				return err
			}
			result = req
		case errors.Is(err, apperr.ErrNotFound):
			result = &models.BrandRequest{
				ApplicantID:     applicantID,
				Name:            brand.Name,
				Slug:            brand.Slug,
				LogoURL:         brand.LogoURL,
				Status:          models.StatusApproved,
				ReviewedBy:      adminID,
				ApprovedBrandID: brand.ID,
			}
			if err := requests.Create(result); err != nil {
				return err
			}
		default:
			return err
		}

		user, err := users.FindByID(applicantID)
		if err != nil {
			return err
		}
		if user.BrandID == nil || *user.BrandID != brand.ID || user.Role != models.RoleBrandSeller {
			user.BrandID = &brand.ID
			user.Role = models.RoleBrandSeller
			user.Brand = nil
			if err := users.Save(user); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns requests, optionally filtered by status.
func (s *BrandRequestService) List(status *models.RequestStatus) ([]models.BrandRequest, error) {
	return repositories.NewGORMBrandRequestRepository(s.db).List(status)
}

// FindMine returns the applicant's most recent request.
func (s *BrandRequestService) FindMine(applicantID string) (*models.BrandRequest, error) {
	return repositories.NewGORMBrandRequestRepository(s.db).FindLatestByApplicant(applicantID)
}
