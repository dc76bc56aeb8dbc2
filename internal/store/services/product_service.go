package services

import (
	"strings"

	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/pkg/apperr"

	"gorm.io/gorm"
)

// ProductService is the catalogue surface. Writes are scoped to the owning
// brand; reads are public.
type ProductService struct {
	db    *gorm.DB
	authz *AuthzService
}

func NewProductService(db *gorm.DB, authz *AuthzService) *ProductService {
	return &ProductService{db: db, authz: authz}
}

// Create adds a product under a brand, on behalf of the brand's seller or an
// admin.
func (s *ProductService) Create(actor *models.SyncedUser, brandSlug string, product *models.Product) (*models.Product, error) {
	brand, err := s.authz.AuthorizeBrandAccess(actor, brandSlug)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return nil, apperr.Errorf(apperr.ErrBadRequest, "product name is required")
	}
	if product.Price <= 0 {
		return nil, apperr.Errorf(apperr.ErrBadRequest, "price must be positive")
	}
	product.BrandID = brand.ID
	product.Brand = nil
	product.Slug = slugify(product.Name)
	product.Category = strings.ToUpper(strings.TrimSpace(product.Category))
	if product.Currency == "" {
		product.Currency = "USD"
	}
	if product.Status == "" {
		product.Status = models.ProductActive
	}
	if err := repositories.NewGORMProductRepository(s.db).Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update modifies an existing product. Ownership is checked against the
// product's brand, not the request path.
func (s *ProductService) Update(actor *models.SyncedUser, productID string, patch *models.Product) (*models.Product, error) {
	products := repositories.NewGORMProductRepository(s.db)
	product, err := products.FindByID(productID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireBrandSellerForBrand(actor, product.BrandID); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(patch.Name); name != "" {
		product.Name = name
		product.Slug = slugify(name)
	}
	if patch.Description != "" {
		product.Description = patch.Description
	}
	if patch.Price > 0 {
		product.Price = patch.Price
	}
	if patch.Category != "" {
		product.Category = strings.ToUpper(strings.TrimSpace(patch.Category))
	}
	if patch.Status != "" {
		if patch.Status != models.ProductActive && patch.Status != models.ProductInactive {
			return nil, apperr.Errorf(apperr.ErrBadRequest, "unknown product status %q", patch.Status)
		}
		product.Status = patch.Status
	}
	product.Brand = nil
	if err := products.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(actor *models.SyncedUser, productID string) error {
	products := repositories.NewGORMProductRepository(s.db)
	product, err := products.FindByID(productID)
	if err != nil {
		return err
	}
	if err := s.authz.RequireBrandSellerForBrand(actor, product.BrandID); err != nil {
		return err
	}
	return products.Delete(productID)
}

// Get returns a single product.
func (s *ProductService) Get(productID string) (*models.Product, error) {
	return repositories.NewGORMProductRepository(s.db).FindByID(productID)
}

// ListPublic lists the public catalogue with optional brand and category
// filters.
func (s *ProductService) ListPublic(brandSlug, category string) ([]models.Product, error) {
	return repositories.NewGORMProductRepository(s.db).ListPublic(brandSlug, category)
}

// ListByBrand lists all products of a brand for its seller or an admin,
// inactive ones included.
func (s *ProductService) ListByBrand(actor *models.SyncedUser, brandSlug string) ([]models.Product, error) {
	brand, err := s.authz.AuthorizeBrandAccess(actor, brandSlug)
	if err != nil {
		return nil, err
	}
	return repositories.NewGORMProductRepository(s.db).ListByBrand(brand.ID)
}

// Photos returns the photos of a product ordered by position.
func (s *ProductService) Photos(productID string) ([]models.ProductPhoto, error) {
	return repositories.NewGORMProductPhotoRepository(s.db).ListByProduct(productID)
}

// Photo returns a single photo with its bytes.
func (s *ProductService) Photo(photoID string) (*models.ProductPhoto, error) {
	return repositories.NewGORMProductPhotoRepository(s.db).FindByID(photoID)
}

// AttachPhoto stores an uploaded product image.
func (s *ProductService) AttachPhoto(actor *models.SyncedUser, productID string, photo *models.ProductPhoto) error {
	products := repositories.NewGORMProductRepository(s.db)
	product, err := products.FindByID(productID)
	if err != nil {
		return err
	}
	if err := s.authz.RequireBrandSellerForBrand(actor, product.BrandID); err != nil {
		return err
	}
	if len(photo.Data) == 0 {
		return apperr.Errorf(apperr.ErrBadRequest, "empty file")
	}
	photo.ProductID = product.ID
	if photo.ContentType == "" {
		photo.ContentType = "application/octet-stream"
	}
	return repositories.NewGORMProductPhotoRepository(s.db).Save(photo)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
