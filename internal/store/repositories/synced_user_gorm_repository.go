package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"electromart/internal/store/models"
	"electromart/pkg/apperr"

	"gorm.io/gorm"
)

// GORMSyncedUserRepository is a GORM implementation of SyncedUserRepository.
type GORMSyncedUserRepository struct {
	db *gorm.DB
}

// NewGORMSyncedUserRepository creates a new instance of GORMSyncedUserRepository.
func NewGORMSyncedUserRepository(db *gorm.DB) *GORMSyncedUserRepository {
	return &GORMSyncedUserRepository{db: db}
}

// Save upserts the shadow row. The id comes from the user-management service,
// never generated here.
func (r *GORMSyncedUserRepository) Save(user *models.SyncedUser) error {
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = time.Now()
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to save synced user %s: %w", user.ID, err)
	}
	return nil
}

// FindByID looks up a shadow by id.
func (r *GORMSyncedUserRepository) FindByID(id string) (*models.SyncedUser, error) {
	var user models.SyncedUser
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "synced user %s not found", id)
		}
		return nil, fmt.Errorf("failed to get synced user %s: %w", id, err)
	}
	return &user, nil
}

// FindByIDWithBrand looks up a shadow by id with the brand resolved.
func (r *GORMSyncedUserRepository) FindByIDWithBrand(id string) (*models.SyncedUser, error) {
	var user models.SyncedUser
	if err := r.db.Preload("Brand").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "synced user %s not found", id)
		}
		return nil, fmt.Errorf("failed to get synced user %s: %w", id, err)
	}
	return &user, nil
}

// FindByEmail looks up a shadow by email, case-insensitively.
func (r *GORMSyncedUserRepository) FindByEmail(email string) (*models.SyncedUser, error) {
	var user models.SyncedUser
	if err := r.db.First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "synced user with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to get synced user by email %s: %w", email, err)
	}
	return &user, nil
}

// FindByEmailWithBrand looks up a shadow by email with the brand resolved.
func (r *GORMSyncedUserRepository) FindByEmailWithBrand(email string) (*models.SyncedUser, error) {
	var user models.SyncedUser
	if err := r.db.Preload("Brand").First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "synced user with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to get synced user by email %s: %w", email, err)
	}
	return &user, nil
}
