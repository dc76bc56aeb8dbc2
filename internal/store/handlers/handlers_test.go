package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"electromart/internal/store/handlers"
	"electromart/internal/store/middleware"
	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/internal/store/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret  = "test-jwt-secret"
	testSyncSecret = "test-sync-secret"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Brand{},
		&models.BrandRequest{},
		&models.SyncedUser{},
		&models.Product{},
		&models.ProductPhoto{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	logos := services.NewLogoStore()
	userSync := services.NewUserSyncService(db)
	authz := services.NewAuthzService(db)
	brandService := services.NewBrandService(db, nil)
	requestService := services.NewBrandRequestService(db, logos, nil)
	productService := services.NewProductService(db, authz)
	orderService := services.NewOrderService(db, nil)

	syncHandler := handlers.NewSyncHandler(userSync)
	brandHandler := handlers.NewBrandHandler(brandService, requestService, authz)
	productHandler := handlers.NewProductHandler(productService, authz)
	orderHandler := handlers.NewOrderHandler(orderService, authz)
	publicHandler := handlers.NewPublicHandler(brandService)

	app := fiber.New()
	internal := app.Group("/internal", middleware.InternalAuth(testSyncSecret))
	syncHandler.RegisterRoutes(internal)

	brandHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	publicHandler.RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(testJWTSecret))
	brandHandler.RegisterProtectedRoutes(protected)
	productHandler.RegisterProtectedRoutes(protected)
	orderHandler.RegisterProtectedRoutes(protected)

	adminOnly := protected.Group("", middleware.AdminRequired(authz))
	brandHandler.RegisterAdminRoutes(adminOnly)
	orderHandler.RegisterAdminRoutes(adminOnly)

	return &testEnv{app: app, db: db}
}

func (e *testEnv) seedUser(t *testing.T, id, email string, role models.Role) {
	t.Helper()
	user := &models.SyncedUser{ID: id, Email: email, Role: role}
	assert.NoError(t, repositories.NewGORMSyncedUserRepository(e.db).Save(user))
}

func tokenFor(t *testing.T, id, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": email,
		"id":  id,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	assert.NoError(t, err)
	return signed
}

func jsonRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestSyncEndpointAuth(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"id": "u-1", "email": "alice@example.com"}

	// No bearer at all.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/internal/sync/users", body))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong secret is indistinguishable from a missing one.
	req := jsonRequest(http.MethodPost, "/internal/sync/users", body)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Correct secret.
	req = jsonRequest(http.MethodPost, "/internal/sync/users", body)
	req.Header.Set("Authorization", "Bearer "+testSyncSecret)
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Missing id in the payload.
	req = jsonRequest(http.MethodPost, "/internal/sync/users", map[string]any{"email": "x@example.com"})
	req.Header.Set("Authorization", "Bearer "+testSyncSecret)
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSyncRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/internal/sync/users",
		map[string]any{"id": "u-1", "email": "Bob@Example.com", "name": "Bob", "role": "USER"})
	req.Header.Set("Authorization", "Bearer "+testSyncSecret)
	resp, err := env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/internal/sync/users/u-1", nil)
	req.Header.Set("Authorization", "Bearer "+testSyncSecret)
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snapshot map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	assert.Equal(t, "bob@example.com", snapshot["email"])

	req = httptest.NewRequest(http.MethodDelete, "/internal/sync/users/u-1", nil)
	req.Header.Set("Authorization", "Bearer "+testSyncSecret)
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting an unknown user is also fine.
	req = httptest.NewRequest(http.MethodDelete, "/internal/sync/users/never-seen", nil)
	req.Header.Set("Authorization", "Bearer "+testSyncSecret)
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBrandRequestFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "u-1", "applicant@example.com", models.RoleUser)
	env.seedUser(t, "admin-1", "admin@admin.com", models.RoleAdmin)

	// No token.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/brands/requests",
		map[string]any{"name": "Volt Tech", "slug": "volt-tech"}))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A valid token for a user the store never saw is still rejected.
	req := jsonRequest(http.MethodPost, "/brands/requests",
		map[string]any{"name": "Volt Tech", "slug": "volt-tech"})
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "ghost", "ghost@example.com"))
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Submit as the applicant.
	req = jsonRequest(http.MethodPost, "/brands/requests",
		map[string]any{"name": "Volt Tech", "slug": "volt-tech"})
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "u-1", "applicant@example.com"))
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.BrandRequest
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, models.StatusPending, created.Status)

	// The applicant cannot approve.
	req = jsonRequest(http.MethodPut, "/brands/requests/"+created.ID+"/approve", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "u-1", "applicant@example.com"))
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The admin can.
	req = jsonRequest(http.MethodPut, "/brands/requests/"+created.ID+"/approve", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "admin-1", "admin@admin.com"))
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var approved models.BrandRequest
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&approved))
	assert.Equal(t, models.StatusApproved, approved.Status)

	// The brand is now publicly visible.
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/brands/slug/volt-tech", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// And the public seller lookup resolves it.
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/public/users/u-1/brand", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var brand models.Brand
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&brand))
	assert.Equal(t, "volt-tech", brand.Slug)
}

func TestPublicSellerLookupEdgeCases(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "plain", "plain@example.com", models.RoleUser)
	env.seedUser(t, "unbound-seller", "unbound@example.com", models.RoleBrandSeller)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/public/users/ghost/brand", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/public/users/plain/brand", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/public/users/unbound-seller/brand", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestProductAndOrderFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "buyer", "buyer@example.com", models.RoleUser)
	env.seedUser(t, "admin-1", "admin@admin.com", models.RoleAdmin)

	brand := &models.Brand{Name: "Volt Tech", Slug: "volt-tech"}
	assert.NoError(t, repositories.NewGORMBrandRepository(env.db).Create(brand))
	seller := &models.SyncedUser{
		ID: "seller-1", Email: "seller@example.com",
		Role: models.RoleBrandSeller, BrandID: &brand.ID,
	}
	assert.NoError(t, repositories.NewGORMSyncedUserRepository(env.db).Save(seller))

	// The seller lists a product.
	req := jsonRequest(http.MethodPost, "/brands/volt-tech/products",
		map[string]any{"name": "Volt Charger", "price": 19.99, "category": "charger"})
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "seller-1", "seller@example.com"))
	resp, err := env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var product models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	assert.Equal(t, "CHARGER", product.Category)

	// A buyer cannot touch another brand's catalogue.
	req = jsonRequest(http.MethodPost, "/brands/volt-tech/products",
		map[string]any{"name": "Fake", "price": 1.0, "category": "charger"})
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "buyer", "buyer@example.com"))
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The catalogue is public.
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/products?brand=volt-tech", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The buyer places an order.
	req = jsonRequest(http.MethodPost, "/orders",
		map[string]any{"items": []map[string]any{{"productId": product.ID, "quantity": 2}}})
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "buyer", "buyer@example.com"))
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var order models.Order
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.InDelta(t, 39.98, order.TotalAmount, 0.001)

	// Only the owner or an admin may read it.
	req = httptest.NewRequest(http.MethodGet, "/orders/"+order.ID, nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "seller-1", "seller@example.com"))
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin moves the order along.
	req = jsonRequest(http.MethodPut, "/admin/orders/"+order.ID+"/status", map[string]any{"status": "PAID"})
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "admin-1", "admin@admin.com"))
	resp, err = env.app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
