package handlers

import (
	"fmt"

	"electromart/internal/store/models"
	"electromart/internal/store/services"
	"electromart/pkg/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto the matching HTTP status.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperr.Status(err)).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// validationError renders validator failures field by field.
func validationError(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// currentUser resolves the JWT identity stored by the auth middleware to an
// active synced user.
func currentUser(c *fiber.Ctx, authz *services.AuthzService) (*models.SyncedUser, error) {
	email, _ := c.Locals("email").(string)
	if email == "" {
		return nil, apperr.Errorf(apperr.ErrUnauthenticated, "no authenticated user")
	}
	return authz.RequireByEmail(email)
}
