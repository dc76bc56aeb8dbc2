package handlers

import (
	"electromart/internal/store/services"

	"github.com/gofiber/fiber/v2"
)

// PublicHandler serves unauthenticated lookups against the shadow table.
type PublicHandler struct {
	brands *services.BrandService
}

func NewPublicHandler(brands *services.BrandService) *PublicHandler {
	return &PublicHandler{brands: brands}
}

// RegisterRoutes registers the public lookup routes.
func (h *PublicHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/public/users/:id/brand", h.HandleSellerBrand)
}

// HandleSellerBrand returns the brand a user sells for. Unknown users and
// non-sellers are 404; an active seller without a brand yet is 204.
func (h *PublicHandler) HandleSellerBrand(c *fiber.Ctx) error {
	brand, err := h.brands.SellerBrandOf(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if brand == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(brand)
}
