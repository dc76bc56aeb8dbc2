package syncwire

// UserUpsert is the payload pushed from the identity service to the store
// service. Every field except ID is optional; an absent field means "do not
// change" on the receiving side, which lets the sender push narrow deltas
// such as a role-only update.
type UserUpsert struct {
	ID           string  `json:"id"`
	Email        *string `json:"email,omitempty"`
	Name         *string `json:"name,omitempty"`
	Role         *string `json:"role,omitempty"`
	TokenVersion *int    `json:"tokenVersion,omitempty"`
	Deleted      *bool   `json:"deleted,omitempty"`
	BrandID      *string `json:"brandId,omitempty"`
}

// RoleUpdate is the reverse-channel payload from the store service back to
// the identity service. Only the role is applied there; the brand fields are
// carried for future use and ignored by the receiver.
type RoleUpdate struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	BrandID   string `json:"brandId,omitempty"`
	BrandSlug string `json:"brandSlug,omitempty"`
}

// UserSnapshot is what the store service returns for an internal GET of a
// synced user.
type UserSnapshot struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Role         string         `json:"role"`
	TokenVersion int            `json:"tokenVersion"`
	Deleted      bool           `json:"deleted"`
	Brand        *BrandSnapshot `json:"brand,omitempty"`
}

// BrandSnapshot is the brand summary embedded in a UserSnapshot.
type BrandSnapshot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	LogoURL string `json:"logoUrl"`
}

// String helpers for building optional fields without temporaries at call sites.

func Str(s string) *string { return &s }
func Int(i int) *int       { return &i }
func Bool(b bool) *bool    { return &b }
