package repositories

import "electromart/internal/store/models"

// BrandRepository is the authoritative registry of brands. Uniqueness of name
// and slug is enforced at the storage layer so concurrent creates cannot both
// succeed.
type BrandRepository interface {
	Create(brand *models.Brand) error
	UpsertBySlug(brand *models.Brand) error
	FindByID(id string) (*models.Brand, error)
	FindBySlug(slug string) (*models.Brand, error)
	ExistsByName(name string) (bool, error)
	ExistsBySlug(slug string) (bool, error)
	Search(q string) ([]models.Brand, error)
	DeleteAll() error
}

// BrandRequestRepository is the persistence of the onboarding state machine.
type BrandRequestRepository interface {
	Create(req *models.BrandRequest) error
	Save(req *models.BrandRequest) error
	FindByID(id string) (*models.BrandRequest, error)
	FindActiveByApplicant(applicantID string) (*models.BrandRequest, error)
	FindLatestByApplicant(applicantID string) (*models.BrandRequest, error)
	FindPendingBySlug(slug string) (*models.BrandRequest, error)
	FindPendingByName(name string) (*models.BrandRequest, error)
	List(status *models.RequestStatus) ([]models.BrandRequest, error)
}

// SyncedUserRepository stores the shadow copies of identity records.
type SyncedUserRepository interface {
	Save(user *models.SyncedUser) error
	FindByID(id string) (*models.SyncedUser, error)
	FindByIDWithBrand(id string) (*models.SyncedUser, error)
	FindByEmail(email string) (*models.SyncedUser, error)
	FindByEmailWithBrand(email string) (*models.SyncedUser, error)
}

// ProductRepository is the catalogue storage.
type ProductRepository interface {
	Create(product *models.Product) error
	Update(product *models.Product) error
	FindByID(id string) (*models.Product, error)
	ListPublic(brandSlug, category string) ([]models.Product, error)
	ListByBrand(brandID string) ([]models.Product, error)
	Delete(id string) error
	DeleteAll() error
}

// ProductPhotoRepository stores catalogue image bytes.
type ProductPhotoRepository interface {
	Save(photo *models.ProductPhoto) error
	FindByID(id string) (*models.ProductPhoto, error)
	ListByProduct(productID string) ([]models.ProductPhoto, error)
	DeleteByProduct(productID string) error
	DeleteAll() error
}

// OrderRepository stores customer orders.
type OrderRepository interface {
	Create(order *models.Order) error
	FindByID(id string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	List() ([]models.Order, error)
	UpdateStatus(id, status string) error
}
