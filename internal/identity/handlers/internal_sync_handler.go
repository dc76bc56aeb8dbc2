package handlers

import (
	"log"
	"strings"

	"electromart/internal/identity/services"
	"electromart/pkg/syncwire"

	"github.com/gofiber/fiber/v2"
)

// InternalSyncHandler receives role updates from the store service over the
// shared-secret channel. Only the role field is applied; brand fields in the
// payload are ignored for now.
type InternalSyncHandler struct {
	adminService *services.AdminService
	sharedSecret string
}

// NewInternalSyncHandler creates a new InternalSyncHandler.
func NewInternalSyncHandler(adminService *services.AdminService, sharedSecret string) *InternalSyncHandler {
	return &InternalSyncHandler{adminService: adminService, sharedSecret: sharedSecret}
}

// RegisterRoutes registers the internal sync routes.
func (h *InternalSyncHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/internal/sync/users", h.HandleRoleUpdate)
}

// HandleRoleUpdate applies a role-only update pushed by the store service.
// Missing bearer responds 401, a wrong secret 403.
func (h *InternalSyncHandler) HandleRoleUpdate(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Missing bearer",
		})
	}
	if strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")) != h.sharedSecret {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Bad secret",
		})
	}

	var msg syncwire.RoleUpdate
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if msg.ID == "" || msg.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "id and role are required",
		})
	}

	if err := h.adminService.ApplyRoleUpdate(msg.ID, msg.Role); err != nil {
		log.Printf("Reverse sync role update for user %s failed: %v", msg.ID, err)
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
