package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"electromart/internal/store/models"
	"electromart/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// Create inserts a new product.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Status == "" {
		product.Status = models.ProductActive
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update persists changes to an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	product.UpdatedAt = time.Now()
	if err := r.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	return nil
}

// FindByID looks up a product by id.
func (r *GORMProductRepository) FindByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Brand").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "product %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// ListPublic lists active, non-deleted products with optional brand-slug and
// category filters.
func (r *GORMProductRepository) ListPublic(brandSlug, category string) ([]models.Product, error) {
	var products []models.Product
	query := r.db.Preload("Brand").
		Where("deleted = ? AND status = ?", false, models.ProductActive).
		Order("name asc")
	if brandSlug = strings.TrimSpace(brandSlug); brandSlug != "" {
		query = query.Joins("JOIN brand ON brand.id = products.brand_id").
			Where("LOWER(brand.slug) = ?", strings.ToLower(brandSlug))
	}
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("category = ?", strings.ToUpper(category))
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListByBrand lists every product of a brand, including inactive ones.
func (r *GORMProductRepository) ListByBrand(brandID string) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("brand_id = ? AND deleted = ?", brandID, false).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products for brand %s: %w", brandID, err)
	}
	return products, nil
}

// Delete soft-deletes a product.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Model(&models.Product{}).Where("id = ?", id).Update("deleted", true)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Errorf(apperr.ErrNotFound, "product %s not found", id)
	}
	return nil
}

// DeleteAll wipes the product table. Seeder reset only.
func (r *GORMProductRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.Product{}).Error; err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	return nil
}

// GORMProductPhotoRepository is a GORM implementation of ProductPhotoRepository.
type GORMProductPhotoRepository struct {
	db *gorm.DB
}

// NewGORMProductPhotoRepository creates a new instance of GORMProductPhotoRepository.
func NewGORMProductPhotoRepository(db *gorm.DB) *GORMProductPhotoRepository {
	return &GORMProductPhotoRepository{db: db}
}

// Save inserts or replaces a photo row.
func (r *GORMProductPhotoRepository) Save(photo *models.ProductPhoto) error {
	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if err := r.db.Save(photo).Error; err != nil {
		return fmt.Errorf("failed to save product photo: %w", err)
	}
	return nil
}

// FindByID looks up a photo by id.
func (r *GORMProductPhotoRepository) FindByID(id string) (*models.ProductPhoto, error) {
	var photo models.ProductPhoto
	if err := r.db.First(&photo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.ErrNotFound, "photo %s not found", id)
		}
		return nil, fmt.Errorf("failed to get photo %s: %w", id, err)
	}
	return &photo, nil
}

// ListByProduct returns the photos of a product ordered by position.
func (r *GORMProductPhotoRepository) ListByProduct(productID string) ([]models.ProductPhoto, error) {
	var photos []models.ProductPhoto
	err := r.db.Where("product_id = ?", productID).Order("position asc").Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for product %s: %w", productID, err)
	}
	return photos, nil
}

// DeleteByProduct removes all photos of a product.
func (r *GORMProductPhotoRepository) DeleteByProduct(productID string) error {
	if err := r.db.Where("product_id = ?", productID).Delete(&models.ProductPhoto{}).Error; err != nil {
		return fmt.Errorf("failed to clear photos for product %s: %w", productID, err)
	}
	return nil
}

// DeleteAll wipes the photo table. Seeder reset only.
func (r *GORMProductPhotoRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.ProductPhoto{}).Error; err != nil {
		return fmt.Errorf("failed to clear product photos: %w", err)
	}
	return nil
}
