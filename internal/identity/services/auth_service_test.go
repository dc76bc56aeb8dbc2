package services_test

import (
	"testing"

	"electromart/internal/identity/models"
	"electromart/internal/identity/services"
	"electromart/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a testify mock of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// MockNotifier records sync pushes.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyUpsert(user *models.User) {
	m.Called(user)
}

func (m *MockNotifier) NotifyDelete(userID string) {
	m.Called(userID)
}

func hash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hashed)
}

func TestRegisterUser(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := services.NewAuthService(repo, notifier, "secret")

	repo.On("GetByEmail", "new@example.com").Return(nil, apperr.ErrNotFound)
	repo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)
	notifier.On("NotifyUpsert", mock.AnythingOfType("*models.User")).Return()

	user := &models.User{Email: "  New@Example.com ", Name: "New", Password: "hunter2"}
	assert.NoError(t, svc.RegisterUser(user))

	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.ProviderLocal, user.Provider)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2")))

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := services.NewAuthService(repo, nil, "secret")

	repo.On("GetByEmail", "taken@example.com").Return(&models.User{ID: "u-1"}, nil)

	err := svc.RegisterUser(&models.User{Email: "taken@example.com", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestLoginUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := services.NewAuthService(repo, nil, "secret")

	stored := &models.User{
		ID:       "u-1",
		Email:    "alice@example.com",
		Password: hash(t, "hunter2"),
	}
	repo.On("GetByEmail", "alice@example.com").Return(stored, nil)

	token, err := svc.LoginUser("alice@example.com", "hunter2")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims["sub"])
	assert.Equal(t, "u-1", claims["id"])
}

func TestLoginUserBadCredentials(t *testing.T) {
	repo := new(MockUserRepository)
	svc := services.NewAuthService(repo, nil, "secret")

	stored := &models.User{ID: "u-1", Email: "alice@example.com", Password: hash(t, "hunter2")}
	repo.On("GetByEmail", "alice@example.com").Return(stored, nil)
	repo.On("GetByEmail", "nobody@example.com").Return(nil, apperr.ErrNotFound)

	_, err := svc.LoginUser("alice@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	// Unknown email yields the same error shape as a bad password.
	_, err2 := svc.LoginUser("nobody@example.com", "whatever")
	assert.ErrorIs(t, err2, apperr.ErrUnauthenticated)
	assert.Equal(t, err.Error(), err2.Error())
}

func TestLoginDeletedUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := services.NewAuthService(repo, nil, "secret")

	stored := &models.User{
		ID: "u-1", Email: "gone@example.com",
		Password: hash(t, "hunter2"), Deleted: true,
	}
	repo.On("GetByEmail", "gone@example.com").Return(stored, nil)

	_, err := svc.LoginUser("gone@example.com", "hunter2")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := services.NewAuthService(repo, notifier, "secret")

	stored := &models.User{
		ID: "u-1", Email: "alice@example.com",
		Password: hash(t, "old-pass"), TokenVersion: 2,
	}
	repo.On("GetByID", "u-1").Return(stored, nil)
	repo.On("Update", mock.AnythingOfType("*models.User")).Return(nil)
	notifier.On("NotifyUpsert", mock.AnythingOfType("*models.User")).Return()

	assert.NoError(t, svc.ChangePassword("u-1", "old-pass", "new-password"))
	assert.Equal(t, 3, stored.TokenVersion)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new-password")))
}

func TestChangePasswordWrongOld(t *testing.T) {
	repo := new(MockUserRepository)
	svc := services.NewAuthService(repo, nil, "secret")

	stored := &models.User{ID: "u-1", Password: hash(t, "old-pass")}
	repo.On("GetByID", "u-1").Return(stored, nil)

	err := svc.ChangePassword("u-1", "not-it", "new-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	repo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	repo := new(MockUserRepository)
	svc := services.NewAuthService(repo, nil, "secret")
	other := services.NewAuthService(repo, nil, "different-secret")

	stored := &models.User{ID: "u-1", Email: "alice@example.com", Password: hash(t, "pw")}
	repo.On("GetByEmail", "alice@example.com").Return(stored, nil)

	token, err := svc.LoginUser("alice@example.com", "pw")
	assert.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
