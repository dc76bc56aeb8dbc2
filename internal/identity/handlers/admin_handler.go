package handlers

import (
	"log"

	"electromart/internal/identity/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin-only user management.
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// RegisterRoutes registers the admin routes. The router passed in must
// already be guarded by AuthRequired and AdminRequired.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin/users")
	adminRoutes.Get("/", h.HandleListUsers)
	adminRoutes.Put("/:id", h.HandleUpdateUser)
	adminRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleListUsers returns all users.
func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.adminService.ListUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return fail(c, err)
	}
	return c.JSON(users)
}

// UpdateUserRequest is the patch body for an admin user update.
type UpdateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// HandleUpdateUser updates a user's name and/or role.
func (h *AdminHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	user, err := h.adminService.UpdateUser(c.Params("id"), req.Name, req.Role)
	if err != nil {
		log.Printf("Error updating user %s: %v", c.Params("id"), err)
		return fail(c, err)
	}
	return c.JSON(user)
}

// HandleDeleteUser soft-deletes a user and propagates the deletion to the
// store service.
func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.adminService.DeleteUser(c.Params("id")); err != nil {
		log.Printf("Error deleting user %s: %v", c.Params("id"), err)
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
