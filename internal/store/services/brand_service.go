package services

import (
	"errors"
	"log"
	"strings"

	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/pkg/apperr"

	"gorm.io/gorm"
)

// BrandService covers the brand surface: direct admin creation, public
// lookups and seller binding maintenance.
type BrandService struct {
	db           *gorm.DB
	roleNotifier RoleNotifier
}

func NewBrandService(db *gorm.DB, roleNotifier RoleNotifier) *BrandService {
	return &BrandService{db: db, roleNotifier: roleNotifier}
}

// Create adds a brand directly, bypassing the request flow. Admin only.
func (s *BrandService) Create(name, slug, logoURL string) (*models.Brand, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" || slug == "" {
		return nil, apperr.Errorf(apperr.ErrBadRequest, "name and slug are required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, apperr.Errorf(apperr.ErrBadRequest, "slug must match [a-z0-9-] and start with a letter or digit")
	}
	brand := &models.Brand{Name: name, Slug: slug, LogoURL: logoURL}
	if err := repositories.NewGORMBrandRepository(s.db).Create(brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// GetBySlug returns a brand by its slug, case-insensitive.
func (s *BrandService) GetBySlug(slug string) (*models.Brand, error) {
	return repositories.NewGORMBrandRepository(s.db).FindBySlug(strings.ToLower(strings.TrimSpace(slug)))
}

// Search returns brands whose name or slug contains the query. An empty
// query returns all brands.
func (s *BrandService) Search(query string) ([]models.Brand, error) {
	return repositories.NewGORMBrandRepository(s.db).Search(strings.TrimSpace(query))
}

// AssignSeller binds a synced user to a brand as its seller. The user must
// not be deleted and must not belong to another brand already.
func (s *BrandService) AssignSeller(brandID, userID string) (*models.SyncedUser, error) {
	var bound *models.SyncedUser
	var brand *models.Brand

	err := s.db.Transaction(func(tx *gorm.DB) error {
		brands := repositories.NewGORMBrandRepository(tx)
		users := repositories.NewGORMSyncedUserRepository(tx)

		b, err := brands.FindByID(brandID)
		if err != nil {
			return err
		}
		user, err := users.FindByID(userID)
		if err != nil {
			return err
		}
		if user.Deleted {
			return apperr.Errorf(apperr.ErrBadRequest, "user is deleted")
		}
		if user.BrandID != nil && *user.BrandID != b.ID {
			return apperr.Errorf(apperr.ErrBadRequest, "user is already associated to another brand")
		}

		user.BrandID = &b.ID
		user.Role = models.RoleBrandSeller
		user.Brand = nil
		if err := users.Save(user); err != nil {
			return err
		}
		bound = user
		brand = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.roleNotifier != nil {
		if err := s.roleNotifier.NotifyRole(bound.ID, models.RoleBrandSeller, brand); err != nil {
			log.Printf("Reverse sync of role for user %s failed: %v", bound.ID, err)
		}
	}
	return bound, nil
}

// ClearSeller detaches a user from the given brand and demotes them back to
// USER. The user must currently be the seller of exactly that brand.
func (s *BrandService) ClearSeller(brandID, userID string) (*models.SyncedUser, error) {
	var cleared *models.SyncedUser

	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := repositories.NewGORMSyncedUserRepository(tx)

		user, err := users.FindByID(userID)
		if err != nil {
			return err
		}
		if user.BrandID == nil || *user.BrandID != brandID {
			return apperr.Errorf(apperr.ErrBadRequest, "user is not the seller of that brand")
		}

		user.BrandID = nil
		user.Role = models.RoleUser
		user.Brand = nil
		if err := users.Save(user); err != nil {
			return err
		}
		cleared = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.roleNotifier != nil {
		if err := s.roleNotifier.NotifyRole(cleared.ID, models.RoleUser, nil); err != nil {
			log.Printf("Reverse sync of role for user %s failed: %v", cleared.ID, err)
		}
	}
	return cleared, nil
}

// SellerBrandOf resolves the brand a user sells for, for the public lookup
// endpoint. Unknown or non-seller users yield NotFound; an active seller
// without a brand yields a nil brand.
func (s *BrandService) SellerBrandOf(userID string) (*models.Brand, error) {
	user, err := repositories.NewGORMSyncedUserRepository(s.db).FindByIDWithBrand(userID)
	if err != nil {
		return nil, err
	}
	if user.Deleted || user.Role != models.RoleBrandSeller {
		return nil, apperr.Errorf(apperr.ErrNotFound, "user %s is not an active brand seller", userID)
	}
	if user.BrandID == nil {
		return nil, nil
	}
	if user.Brand != nil {
		return user.Brand, nil
	}
	brand, err := repositories.NewGORMBrandRepository(s.db).FindByID(*user.BrandID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return brand, err
}
