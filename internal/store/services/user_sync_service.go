package services

import (
	"errors"
	"regexp"
	"strings"

	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/pkg/apperr"
	"electromart/pkg/syncwire"

	"gorm.io/gorm"
)

// sellerEmailPattern captures the brand slug out of the seed-time seller
// email convention <slug>-seller@noreply.local.
var sellerEmailPattern = regexp.MustCompile(`^([a-z0-9][a-z0-9-]*)-seller@noreply\.local$`)

// UserSyncService maintains the shadow copies of identity records pushed by
// the user-management service, and enforces the role/brand invariants on
// them.
type UserSyncService struct {
	db *gorm.DB
}

// NewUserSyncService creates a new UserSyncService.
func NewUserSyncService(db *gorm.DB) *UserSyncService {
	return &UserSyncService{db: db}
}

// Upsert applies an inbound sync message. Rules:
//   - Creates the shadow if missing, otherwise updates it.
//   - Only fields present in the message are applied; absent fields keep
//     their prior value, so the sender can push narrow deltas.
//   - A BRAND_SELLER without a brand gets one inferred from the seller email
//     convention; the brand is created on the fly if unknown.
//   - Invariant repair: a shadow holding a brand is coerced to BRAND_SELLER.
//
// Applying the same message twice has the same observable effect as applying
// it once.
func (s *UserSyncService) Upsert(msg syncwire.UserUpsert) error {
	if strings.TrimSpace(msg.ID) == "" {
		return apperr.Errorf(apperr.ErrBadRequest, "missing user id")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		users := repositories.NewGORMSyncedUserRepository(tx)
		brands := repositories.NewGORMBrandRepository(tx)

		user, err := users.FindByID(msg.ID)
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				return err
			}
			user = &models.SyncedUser{ID: msg.ID, Role: models.RoleUser}
		}

		if msg.Email != nil {
			user.Email = strings.ToLower(*msg.Email)
		}
		if msg.Name != nil {
			user.Name = *msg.Name
		}
		if msg.Role != nil {
			role, err := models.ParseRole(*msg.Role)
			if err != nil {
				return err
			}
			user.Role = role
		}
		if msg.TokenVersion != nil {
			user.TokenVersion = *msg.TokenVersion
		}
		if msg.Deleted != nil {
			user.Deleted = *msg.Deleted
		}

		if msg.BrandID != nil {
			brand, err := brands.FindByID(*msg.BrandID)
			if err != nil {
				return err
			}
			user.BrandID = &brand.ID
		}

		if user.BrandID == nil && user.Role == models.RoleBrandSeller {
			if err := s.maybeAttachBrandFromEmail(user, brands); err != nil {
				return err
			}
		}

		if user.BrandID != nil && user.Role != models.RoleBrandSeller {
			user.Role = models.RoleBrandSeller
		}

		user.Brand = nil // persist the FK, not a stale association
		return users.Save(user)
	})
}

// maybeAttachBrandFromEmail binds the shadow to the brand named by its email
// if the email matches the seller convention. The lookup and creation are
// deterministic: the same email always resolves to the same brand.
func (s *UserSyncService) maybeAttachBrandFromEmail(user *models.SyncedUser, brands repositories.BrandRepository) error {
	match := sellerEmailPattern.FindStringSubmatch(strings.ToLower(user.Email))
	if match == nil {
		return nil
	}
	slug := match[1]

	brand, err := brands.FindBySlug(slug)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		brand = &models.Brand{
			Slug: slug,
			Name: capitalizeWords(strings.ReplaceAll(slug, "-", " ")),
		}
		if err := brands.Create(brand); err != nil {
			return err
		}
	}

	user.BrandID = &brand.ID
	return nil
}

// MarkDeleted soft-deletes a shadow. The brand link is kept so past orders
// stay resolvable. A missing id is treated as already gone.
func (s *UserSyncService) MarkDeleted(id string) error {
	users := repositories.NewGORMSyncedUserRepository(s.db)
	user, err := users.FindByID(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}
	user.Deleted = true
	user.Brand = nil
	return users.Save(user)
}

// AssignBrand binds a brand to a shadow, replacing any previous binding, and
// coerces the role to BRAND_SELLER.
func (s *UserSyncService) AssignBrand(userID, brandID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		users := repositories.NewGORMSyncedUserRepository(tx)
		brands := repositories.NewGORMBrandRepository(tx)

		user, err := users.FindByID(userID)
		if err != nil {
			return err
		}
		if user.Deleted {
			return apperr.Errorf(apperr.ErrBadRequest, "user is deleted")
		}
		brand, err := brands.FindByID(brandID)
		if err != nil {
			return err
		}

		user.BrandID = &brand.ID
		user.Role = models.RoleBrandSeller
		user.Brand = nil
		return users.Save(user)
	})
}

// DetachBrand removes the brand binding. The role is left untouched.
func (s *UserSyncService) DetachBrand(userID string) error {
	users := repositories.NewGORMSyncedUserRepository(s.db)
	user, err := users.FindByID(userID)
	if err != nil {
		return err
	}
	if user.Deleted {
		return apperr.Errorf(apperr.ErrBadRequest, "user is deleted")
	}
	user.BrandID = nil
	user.Brand = nil
	return users.Save(user)
}

// SetRole changes a shadow's role. A shadow holding a brand cannot leave
// BRAND_SELLER.
func (s *UserSyncService) SetRole(userID string, role models.Role) error {
	users := repositories.NewGORMSyncedUserRepository(s.db)
	user, err := users.FindByID(userID)
	if err != nil {
		return err
	}
	if user.Deleted {
		return apperr.Errorf(apperr.ErrBadRequest, "user is deleted")
	}
	if user.BrandID != nil && role != models.RoleBrandSeller {
		return apperr.Errorf(apperr.ErrBadRequest,
			"cannot set role to %s while user is associated to a brand", role)
	}
	user.Role = role
	user.Brand = nil
	return users.Save(user)
}

// Get returns a shadow by id.
func (s *UserSyncService) Get(id string) (*models.SyncedUser, error) {
	return repositories.NewGORMSyncedUserRepository(s.db).FindByID(id)
}

// GetWithBrand returns a shadow by id with its brand resolved.
func (s *UserSyncService) GetWithBrand(id string) (*models.SyncedUser, error) {
	return repositories.NewGORMSyncedUserRepository(s.db).FindByIDWithBrand(id)
}

// capitalizeWords upper-cases the first letter of each word. Used to derive a
// display name from a slug.
func capitalizeWords(s string) string {
	parts := strings.Fields(strings.TrimSpace(s))
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
