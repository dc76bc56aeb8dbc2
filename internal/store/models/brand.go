package models

// Brand is the authoritative record of a brand sold in the store. Name and
// slug are unique case-insensitively and stable after creation; brands are
// never deleted by the onboarding workflow.
type Brand struct {
	ID      string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name    string `json:"name" gorm:"uniqueIndex;type:varchar(255)"`
	Slug    string `json:"slug" gorm:"uniqueIndex;type:varchar(255)"`
	LogoURL string `json:"logoUrl"`
	Version int64  `json:"-"` // bumped on seed upsert
}

// TableName keeps the table name aligned with the persisted layout.
func (Brand) TableName() string { return "brand" }
