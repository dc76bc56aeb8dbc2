package services

import (
	"strings"

	"electromart/internal/identity/models"
	"electromart/internal/identity/repositories"
	"electromart/pkg/apperr"
)

// AdminService handles out-of-band user management performed by admins.
type AdminService struct {
	userRepo repositories.UserRepository
	notifier Notifier
}

// NewAdminService creates a new AdminService.
func NewAdminService(userRepo repositories.UserRepository, notifier Notifier) *AdminService {
	return &AdminService{userRepo: userRepo, notifier: notifier}
}

// ListUsers returns every user, deleted ones included.
func (s *AdminService) ListUsers() ([]models.User, error) {
	return s.userRepo.List()
}

// UpdateUser applies the non-empty fields of the patch to the target user
// and syncs the result to the store service.
func (s *AdminService) UpdateUser(id string, name, role string) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user.Deleted {
		return nil, apperr.Errorf(apperr.ErrBadRequest, "user is deleted")
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if role != "" {
		parsed, err := models.ParseRole(role)
		if err != nil {
			return nil, err
		}
		user.Role = parsed
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyUpsert(user)
	}
	return user, nil
}

// DeleteUser soft-deletes a user, bumps the token version to invalidate
// outstanding tokens, and propagates the deletion to the store service.
func (s *AdminService) DeleteUser(id string) error {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user.Deleted {
		return nil
	}

	user.Deleted = true
	user.TokenVersion++
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.NotifyDelete(id)
	}
	return nil
}

// ApplyRoleUpdate handles the reverse sync from the store service: only the
// role is applied here. Brand details are ignored until this service grows
// brand columns.
func (s *AdminService) ApplyRoleUpdate(id, role string) error {
	parsed, err := models.ParseRole(role)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	user.Role = parsed
	return s.userRepo.Update(user)
}
