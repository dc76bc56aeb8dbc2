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

// GORMBrandRepository is a GORM implementation of BrandRepository.
type GORMBrandRepository struct {
	db *gorm.DB
}

// NewGORMBrandRepository creates a new instance of GORMBrandRepository.
func NewGORMBrandRepository(db *gorm.DB) *GORMBrandRepository {
	return &GORMBrandRepository{db: db}
}

// Create inserts a brand after verifying name and slug are unused
// case-insensitively. The unique indexes back the check, so of two racing
// creates at most one insert succeeds; the loser gets a Conflict.
func (r *GORMBrandRepository) Create(brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	brand.Slug = strings.ToLower(strings.TrimSpace(brand.Slug))
	brand.Name = strings.TrimSpace(brand.Name)

	if taken, err := r.ExistsByName(brand.Name); err != nil {
		return err
	} else if taken {
		return apperr.Errorf(apperr.ErrConflict, "brand name '%s' already exists", brand.Name)
	}
	if taken, err := r.ExistsBySlug(brand.Slug); err != nil {
		return err
	} else if taken {
		return apperr.Errorf(apperr.ErrConflict, "brand slug '%s' already exists", brand.Slug)
	}

	if err := r.db.Create(brand).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Errorf(apperr.ErrConflict, "brand '%s' already exists", brand.Slug)
		}
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

// UpsertBySlug creates the brand if its slug is unknown, otherwise updates
// name and logo in place. Used by the seeder.
func (r *GORMBrandRepository) UpsertBySlug(brand *models.Brand) error {
	existing, err := r.FindBySlug(brand.Slug)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return r.Create(brand)
		}
		return err
	}

	existing.Name = brand.Name
	existing.LogoURL = brand.LogoURL
	existing.Version++
	if err := r.db.Save(existing).Error; err != nil {
		return fmt.Errorf("failed to update brand %s: %w", existing.ID, err)
	}
	*brand = *existing
	return nil
}

// FindByID looks up a brand by id.
func (r *GORMBrandRepository) FindByID(id string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "brand %s not found", id)
		}
		return nil, fmt.Errorf("failed to get brand %s: %w", id, err)
	}
	return &brand, nil
}

// FindBySlug looks up a brand by slug, case-insensitively.
func (r *GORMBrandRepository) FindBySlug(slug string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.First(&brand, "LOWER(slug) = ?", strings.ToLower(slug)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "brand with slug %s not found", slug)
		}
		return nil, fmt.Errorf("failed to get brand by slug %s: %w", slug, err)
	}
	return &brand, nil
}

// ExistsByName reports whether a brand with this name exists, case-insensitively.
func (r *GORMBrandRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Brand{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check brand name: %w", err)
	}
	return count > 0, nil
}

// ExistsBySlug reports whether a brand with this slug exists, case-insensitively.
func (r *GORMBrandRepository) ExistsBySlug(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Brand{}).
		Where("LOWER(slug) = ?", strings.ToLower(strings.TrimSpace(slug))).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check brand slug: %w", err)
	}
	return count > 0, nil
}

// Search lists brands whose name or slug contains q; an empty q lists all.
func (r *GORMBrandRepository) Search(q string) ([]models.Brand, error) {
	var brands []models.Brand
	query := r.db.Order("name asc")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", like, like)
	}
	if err := query.Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to search brands: %w", err)
	}
	return brands, nil
}

// DeleteAll wipes the brand table. Seeder reset only.
func (r *GORMBrandRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.Brand{}).Error; err != nil {
		return fmt.Errorf("failed to clear brands: %w", err)
	}
	return nil
}

// isDuplicate detects unique-constraint violations across the postgres and
// sqlite drivers.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
