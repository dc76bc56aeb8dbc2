package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"electromart/internal/identity/models"
	"electromart/internal/identity/repositories"
	"electromart/pkg/apperr"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and token validation.
type AuthService struct {
	userRepo   repositories.UserRepository
	notifier   Notifier
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService. notifier may be nil, in which
// case no sync is pushed (tests).
func NewAuthService(userRepo repositories.UserRepository, notifier Notifier, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		notifier:   notifier,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// RegisterUser registers a new local account, hashes the password, saves it
// and pushes the new record to the store service.
func (s *AuthService) RegisterUser(user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return apperr.Errorf(apperr.ErrConflict, "email '%s' already registered", user.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	user.Role = models.RoleUser
	user.Provider = models.ProviderLocal

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyUpsert(user)
	}
	return nil
}

// LoginUser authenticates by email and password and returns a signed JWT.
func (s *AuthService) LoginUser(email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// Do not reveal whether the email exists.
		return "", apperr.Errorf(apperr.ErrUnauthenticated, "invalid credentials")
	}
	if user.Deleted {
		return "", apperr.Errorf(apperr.ErrUnauthenticated, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperr.Errorf(apperr.ErrUnauthenticated, "invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.Email,
		"id":  user.ID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.tokenDurat).Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ChangePassword verifies the current password, stores the new hash and bumps
// the token version so outstanding tokens can be invalidated. The bump is
// synced to the store service.
func (s *AuthService) ChangePassword(userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user.Deleted {
		return apperr.Errorf(apperr.ErrBadRequest, "user is deleted")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apperr.Errorf(apperr.ErrUnauthenticated, "current password is incorrect")
	}
	if len(newPassword) < 6 {
		return apperr.Errorf(apperr.ErrBadRequest, "new password must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	user.TokenVersion++

	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyUpsert(user)
	}
	return nil
}

// ValidateToken parses and validates a JWT, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, apperr.Errorf(apperr.ErrUnauthenticated, "invalid token")
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperr.Errorf(apperr.ErrUnauthenticated, "invalid token")
}
