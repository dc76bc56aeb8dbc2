package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"electromart/internal/identity/handlers"
	"electromart/internal/identity/models"
	"electromart/internal/identity/services"
	"electromart/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testSharedSecret = "moldo"

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *mockUserRepo) Update(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *mockUserRepo) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) List() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func syncApp(repo *mockUserRepo) *fiber.App {
	app := fiber.New()
	handler := handlers.NewInternalSyncHandler(services.NewAdminService(repo, nil), testSharedSecret)
	handler.RegisterRoutes(app)
	return app
}

func roleUpdateRequest(bearer string, body map[string]any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/internal/sync/users", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	return req
}

func TestRoleUpdateRequiresBearer(t *testing.T) {
	app := syncApp(new(mockUserRepo))

	resp, err := app.Test(roleUpdateRequest("", map[string]any{"id": "u-1", "role": "BRAND_SELLER"}))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(roleUpdateRequest("Bearer nope", map[string]any{"id": "u-1", "role": "BRAND_SELLER"}))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRoleUpdateValidation(t *testing.T) {
	app := syncApp(new(mockUserRepo))

	resp, err := app.Test(roleUpdateRequest("Bearer "+testSharedSecret, map[string]any{"role": "ADMIN"}))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(roleUpdateRequest("Bearer "+testSharedSecret, map[string]any{"id": "u-1"}))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(roleUpdateRequest("Bearer "+testSharedSecret, map[string]any{"id": "u-1", "role": "OVERLORD"}))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoleUpdateApplied(t *testing.T) {
	repo := new(mockUserRepo)
	user := &models.User{ID: "u-1", Email: "seller@example.com", Role: models.RoleUser}
	repo.On("GetByID", "u-1").Return(user, nil)
	repo.On("Update", mock.AnythingOfType("*models.User")).Return(nil)

	app := syncApp(repo)
	resp, err := app.Test(roleUpdateRequest("Bearer "+testSharedSecret,
		map[string]any{"id": "u-1", "role": "BRAND_SELLER", "brandSlug": "volt-tech"}))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, models.RoleBrandSeller, user.Role)
	repo.AssertExpectations(t)
}

func TestRoleUpdateUnknownUser(t *testing.T) {
	repo := new(mockUserRepo)
	repo.On("GetByID", "ghost").Return(nil, apperr.Errorf(apperr.ErrNotFound, "user ghost not found"))

	app := syncApp(repo)
	resp, err := app.Test(roleUpdateRequest("Bearer "+testSharedSecret,
		map[string]any{"id": "ghost", "role": "BRAND_SELLER"}))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
