package handlers

import (
	"log"

	"electromart/internal/store/services"
	"electromart/pkg/syncwire"

	"github.com/gofiber/fiber/v2"
)

// SyncHandler receives identity pushes on the internal sync surface. The
// routes are guarded by the shared-secret middleware, registered in main.
type SyncHandler struct {
	userSync *services.UserSyncService
}

func NewSyncHandler(userSync *services.UserSyncService) *SyncHandler {
	return &SyncHandler{userSync: userSync}
}

// RegisterRoutes registers the sync routes on the /internal group, which is
// wrapped with InternalAuth.
func (h *SyncHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/sync/users", h.HandleUpsert)
	router.Delete("/sync/users/:id", h.HandleDelete)
	router.Get("/sync/users/:id", h.HandleGet)
}

// HandleUpsert applies a full or partial user record pushed by the identity
// service.
func (h *SyncHandler) HandleUpsert(c *fiber.Ctx) error {
	var msg syncwire.UserUpsert
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if msg.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "id is required",
		})
	}
	if err := h.userSync.Upsert(msg); err != nil {
		log.Printf("Sync upsert for user %s failed: %v", msg.ID, err)
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleDelete marks a synced user deleted. Deleting a user the store never
// saw is a no-op.
func (h *SyncHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.userSync.MarkDeleted(c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGet returns the store's view of a synced user, brand included.
func (h *SyncHandler) HandleGet(c *fiber.Ctx) error {
	user, err := h.userSync.GetWithBrand(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	snapshot := syncwire.UserSnapshot{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         string(user.Role),
		TokenVersion: user.TokenVersion,
		Deleted:      user.Deleted,
	}
	if user.Brand != nil {
		snapshot.Brand = &syncwire.BrandSnapshot{
			ID:      user.Brand.ID,
			Name:    user.Brand.Name,
			Slug:    user.Brand.Slug,
			LogoURL: user.Brand.LogoURL,
		}
	}
	return c.JSON(snapshot)
}
