package middleware

import (
	"electromart/internal/identity/models"
	"electromart/internal/identity/repositories"

	"github.com/gofiber/fiber/v2"
)

// AdminRequired loads the caller's own record and requires an active ADMIN.
// Must run after AuthRequired.
func AdminRequired(userRepo repositories.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}

		user, err := userRepo.GetByID(userID)
		if err != nil || user.Deleted || user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}
