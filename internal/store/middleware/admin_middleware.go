package middleware

import (
	"electromart/internal/store/services"

	"github.com/gofiber/fiber/v2"
)

// AdminRequired allows only active admins past. It runs after AuthRequired
// and resolves the token's email against the synced-user table.
func AdminRequired(authz *services.AuthzService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, _ := c.Locals("email").(string)
		user, err := authz.RequireByEmail(email)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unknown user",
			})
		}
		if err := authz.RequireAdmin(user); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}
