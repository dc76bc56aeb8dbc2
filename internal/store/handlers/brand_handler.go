package handlers

import (
	"io"
	"log"

	"electromart/internal/store/models"
	"electromart/internal/store/services"
	"electromart/pkg/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BrandHandler handles the brand catalogue and the seller-onboarding flow.
type BrandHandler struct {
	brands   *services.BrandService
	requests *services.BrandRequestService
	authz    *services.AuthzService
	validate *validator.Validate
}

func NewBrandHandler(brands *services.BrandService, requests *services.BrandRequestService, authz *services.AuthzService) *BrandHandler {
	return &BrandHandler{
		brands:   brands,
		requests: requests,
		authz:    authz,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes registers routes that need no token.
func (h *BrandHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/brands", h.HandleSearch)
	router.Get("/brands/requests/:id/logo", h.HandleGetLogo)
	router.Get("/brands/slug/:slug", h.HandleGetBySlug)
}

// RegisterProtectedRoutes registers routes that require a valid token.
func (h *BrandHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Post("/brands/requests", h.HandleSubmitRequest)
	router.Get("/brands/requests/mine", h.HandleMyRequest)
	router.Post("/brands/requests/:id/logo", h.HandleUploadLogo)
}

// RegisterAdminRoutes registers the review and direct-management routes.
func (h *BrandHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/brands/requests", h.HandleListRequests)
	router.Put("/brands/requests/:id/approve", h.HandleApprove)
	router.Put("/brands/requests/:id/reject", h.HandleReject)
	router.Post("/brands", h.HandleCreateBrand)
	router.Post("/brands/:id/assign-seller/:userId", h.HandleAssignSeller)
	router.Delete("/brands/:id/assign-seller/:userId", h.HandleClearSeller)
}

// HandleSearch lists brands matching ?q=, or all brands.
func (h *BrandHandler) HandleSearch(c *fiber.Ctx) error {
	brands, err := h.brands.Search(c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(brands)
}

// HandleGetBySlug returns one brand by slug.
func (h *BrandHandler) HandleGetBySlug(c *fiber.Ctx) error {
	brand, err := h.brands.GetBySlug(c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(brand)
}

// SubmitBrandRequest is the request body for filing a brand request.
type SubmitBrandRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Slug    string `json:"slug" validate:"required,min=2,max=100"`
	LogoURL string `json:"logoUrl" validate:"omitempty,url"`
}

// HandleSubmitRequest files a new brand request for the caller.
func (h *BrandHandler) HandleSubmitRequest(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}

	var req SubmitBrandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	created, err := h.requests.Submit(actor.ID, req.Name, req.Slug, req.LogoURL)
	if err != nil {
		log.Printf("Brand request by %s rejected: %v", actor.ID, err)
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleMyRequest returns the caller's latest brand request.
func (h *BrandHandler) HandleMyRequest(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}
	req, err := h.requests.FindMine(actor.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(req)
}

// HandleUploadLogo accepts a multipart logo upload for a request.
func (h *BrandHandler) HandleUploadLogo(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Multipart field 'file' is required",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return fail(c, apperr.Errorf(apperr.ErrBadRequest, "cannot read upload"))
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return fail(c, apperr.Errorf(apperr.ErrBadRequest, "cannot read upload"))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.requests.AttachLogo(c.Params("id"), data, contentType, actor.ID, h.authz.IsAdmin(actor)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetLogo serves an uploaded request logo. Review UIs poll this, so
// caching is disabled.
func (h *BrandHandler) HandleGetLogo(c *fiber.Ctx) error {
	logo, err := h.requests.GetLogo(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, logo.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	return c.Send(logo.Bytes)
}

// HandleListRequests lists brand requests, optionally filtered by ?status=.
func (h *BrandHandler) HandleListRequests(c *fiber.Ctx) error {
	var status *models.RequestStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseRequestStatus(raw)
		if err != nil {
			return fail(c, err)
		}
		status = &parsed
	}
	requests, err := h.requests.List(status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(requests)
}

// HandleApprove approves a pending request.
func (h *BrandHandler) HandleApprove(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}
	req, err := h.requests.Approve(c.Params("id"), actor.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(req)
}

// RejectRequest is the request body for a rejection.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=2,max=500"`
}

// HandleReject rejects a pending request with a reason.
func (h *BrandHandler) HandleReject(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	rejected, err := h.requests.Reject(c.Params("id"), req.Reason, actor.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rejected)
}

// CreateBrandRequest is the request body for direct brand creation.
type CreateBrandRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=255"`
	Slug    string `json:"slug" validate:"required,min=2,max=100"`
	LogoURL string `json:"logoUrl" validate:"omitempty,url"`
}

// HandleCreateBrand creates a brand directly, outside the request flow.
func (h *BrandHandler) HandleCreateBrand(c *fiber.Ctx) error {
	var req CreateBrandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	brand, err := h.brands.Create(req.Name, req.Slug, req.LogoURL)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

// HandleAssignSeller binds a user to a brand as its seller.
func (h *BrandHandler) HandleAssignSeller(c *fiber.Ctx) error {
	user, err := h.brands.AssignSeller(c.Params("id"), c.Params("userId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// HandleClearSeller detaches a user from a brand.
func (h *BrandHandler) HandleClearSeller(c *fiber.Ctx) error {
	user, err := h.brands.ClearSeller(c.Params("id"), c.Params("userId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}
