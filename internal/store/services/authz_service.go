package services

import (
	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/pkg/apperr"

	"gorm.io/gorm"
)

// AuthzService resolves JWT identities against the synced-user shadow table
// and answers the store's authorization questions.
type AuthzService struct {
	db *gorm.DB
}

func NewAuthzService(db *gorm.DB) *AuthzService {
	return &AuthzService{db: db}
}

// RequireByEmail resolves the token's email to an active synced user. A
// token whose user was never synced, or was deleted, is rejected.
func (s *AuthzService) RequireByEmail(email string) (*models.SyncedUser, error) {
	user, err := repositories.NewGORMSyncedUserRepository(s.db).FindByEmail(email)
	if err != nil {
		return nil, apperr.Errorf(apperr.ErrUnauthenticated, "unknown user")
	}
	if user.Deleted {
		return nil, apperr.Errorf(apperr.ErrUnauthenticated, "user is deleted")
	}
	return user, nil
}

func (s *AuthzService) IsAdmin(user *models.SyncedUser) bool {
	return user != nil && !user.Deleted && user.Role == models.RoleAdmin
}

// RequireAdmin fails with Forbidden unless the user is an active admin.
func (s *AuthzService) RequireAdmin(user *models.SyncedUser) error {
	if !s.IsAdmin(user) {
		return apperr.Errorf(apperr.ErrForbidden, "admin only")
	}
	return nil
}

// RequireBrandSellerForBrand fails with Forbidden unless the user is the
// active seller of the given brand. Admins pass.
func (s *AuthzService) RequireBrandSellerForBrand(user *models.SyncedUser, brandID string) error {
	if s.IsAdmin(user) {
		return nil
	}
	if user == nil || !user.IsActiveBrandSellerOf(brandID) {
		return apperr.Errorf(apperr.ErrForbidden, "not the seller of this brand")
	}
	return nil
}

// AuthorizeBrandAccess resolves a brand by slug and checks the user may
// manage it.
func (s *AuthzService) AuthorizeBrandAccess(user *models.SyncedUser, brandSlug string) (*models.Brand, error) {
	brand, err := repositories.NewGORMBrandRepository(s.db).FindBySlug(brandSlug)
	if err != nil {
		return nil, err
	}
	if err := s.RequireBrandSellerForBrand(user, brand.ID); err != nil {
		return nil, err
	}
	return brand, nil
}
