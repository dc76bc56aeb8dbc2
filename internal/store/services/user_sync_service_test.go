package services_test

import (
	"testing"

	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/internal/store/services"
	"electromart/pkg/apperr"
	"electromart/pkg/syncwire"

	"github.com/stretchr/testify/assert"
)

func TestUpsertCreatesShadow(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	err := svc.Upsert(syncwire.UserUpsert{
		ID:    "u-1",
		Email: syncwire.Str("Alice@Example.com"),
		Name:  syncwire.Str("Alice"),
		Role:  syncwire.Str("USER"),
	})
	assert.NoError(t, err)

	user, err := svc.Get("u-1")
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Nil(t, user.BrandID)
}

func TestUpsertAppliesOnlyPresentFields(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	assert.NoError(t, svc.Upsert(syncwire.UserUpsert{
		ID:           "u-1",
		Email:        syncwire.Str("bob@example.com"),
		Name:         syncwire.Str("Bob"),
		Role:         syncwire.Str("USER"),
		TokenVersion: syncwire.Int(3),
	}))

	// Role-only delta must not disturb the other fields.
	assert.NoError(t, svc.Upsert(syncwire.UserUpsert{
		ID:   "u-1",
		Role: syncwire.Str("ADMIN"),
	}))

	user, err := svc.Get("u-1")
	assert.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.Equal(t, "Bob", user.Name)
	assert.Equal(t, 3, user.TokenVersion)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestUpsertRejectsMissingIDAndBadRole(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	err := svc.Upsert(syncwire.UserUpsert{})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	err = svc.Upsert(syncwire.UserUpsert{ID: "u-1", Role: syncwire.Str("OVERLORD")})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestUpsertInfersBrandFromSellerEmail(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	err := svc.Upsert(syncwire.UserUpsert{
		ID:    "u-7",
		Email: syncwire.Str("volt-tech-seller@noreply.local"),
		Name:  syncwire.Str("Volt Tech Seller"),
		Role:  syncwire.Str("BRAND_SELLER"),
	})
	assert.NoError(t, err)

	user, err := svc.GetWithBrand("u-7")
	assert.NoError(t, err)
	if assert.NotNil(t, user.BrandID) && assert.NotNil(t, user.Brand) {
		assert.Equal(t, "volt-tech", user.Brand.Slug)
		assert.Equal(t, "Volt Tech", user.Brand.Name)
	}

	// Replaying the same message must resolve to the same brand, not a
	// duplicate one.
	assert.NoError(t, svc.Upsert(syncwire.UserUpsert{
		ID:    "u-7",
		Email: syncwire.Str("volt-tech-seller@noreply.local"),
		Role:  syncwire.Str("BRAND_SELLER"),
	}))
	brands, err := repositories.NewGORMBrandRepository(db).Search("volt")
	assert.NoError(t, err)
	assert.Len(t, brands, 1)
}

func TestUpsertNoInferenceForOrdinaryEmail(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	assert.NoError(t, svc.Upsert(syncwire.UserUpsert{
		ID:    "u-8",
		Email: syncwire.Str("carol@example.com"),
		Role:  syncwire.Str("BRAND_SELLER"),
	}))

	user, err := svc.Get("u-8")
	assert.NoError(t, err)
	assert.Nil(t, user.BrandID)
	assert.Equal(t, models.RoleBrandSeller, user.Role)
}

func TestUpsertRepairsRoleWhenBrandHeld(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	brand := &models.Brand{Name: "Acme", Slug: "acme"}
	assert.NoError(t, repositories.NewGORMBrandRepository(db).Create(brand))

	assert.NoError(t, svc.Upsert(syncwire.UserUpsert{
		ID:      "u-9",
		Email:   syncwire.Str("dan@example.com"),
		Role:    syncwire.Str("USER"),
		BrandID: syncwire.Str(brand.ID),
	}))

	user, err := svc.Get("u-9")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleBrandSeller, user.Role)
}

func TestUpsertUnknownBrandFails(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	err := svc.Upsert(syncwire.UserUpsert{
		ID:      "u-10",
		Email:   syncwire.Str("eve@example.com"),
		BrandID: syncwire.Str("no-such-brand"),
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkDeleted(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	assert.NoError(t, svc.Upsert(syncwire.UserUpsert{
		ID:    "u-11",
		Email: syncwire.Str("gone@example.com"),
	}))
	assert.NoError(t, svc.MarkDeleted("u-11"))

	user, err := svc.Get("u-11")
	assert.NoError(t, err)
	assert.True(t, user.Deleted)

	// Unknown ids are already gone.
	assert.NoError(t, svc.MarkDeleted("never-seen"))
}

func TestSetRoleGuardsBrandHolders(t *testing.T) {
	db := openTestDB(t)
	svc := services.NewUserSyncService(db)

	brand := &models.Brand{Name: "Acme", Slug: "acme"}
	assert.NoError(t, repositories.NewGORMBrandRepository(db).Create(brand))
	assert.NoError(t, svc.Upsert(syncwire.UserUpsert{
		ID:      "u-12",
		Email:   syncwire.Str("frank@example.com"),
		BrandID: syncwire.Str(brand.ID),
	}))

	err := svc.SetRole("u-12", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	assert.NoError(t, svc.DetachBrand("u-12"))
	assert.NoError(t, svc.SetRole("u-12", models.RoleUser))
}
