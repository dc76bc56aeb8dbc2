package models

import "time"

// ProductStatus is the listing state of a product.
type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

// Product is a catalogue entry owned by a brand.
type Product struct {
	ID          string        `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	BrandID     string        `json:"brandId" gorm:"type:varchar(36);index"`
	Brand       *Brand        `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Name        string        `json:"name" validate:"required,min=2,max=255"`
	Slug        string        `json:"slug"`
	Description string        `json:"description" validate:"omitempty,max=2000"`
	Price       float64       `json:"price" validate:"required,gt=0"`
	Currency    string        `json:"currency" validate:"omitempty,len=3"`
	Category    string        `json:"category" validate:"required"`
	Status      ProductStatus `json:"status" gorm:"type:varchar(16)"`
	Deleted     bool          `json:"deleted"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ProductPhoto holds the raw bytes of one catalogue image. Photos are loaded
// by the seeder and served by id.
type ProductPhoto struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID   string `json:"productId" gorm:"type:varchar(36);index"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
	Position    int    `json:"position"`
	Primary     bool   `json:"primary" gorm:"column:is_primary"`
}
