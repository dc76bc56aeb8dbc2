package handlers

import (
	"io"

	"electromart/internal/store/models"
	"electromart/internal/store/services"
	"electromart/pkg/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles the catalogue surface.
type ProductHandler struct {
	products *services.ProductService
	authz    *services.AuthzService
	validate *validator.Validate
}

func NewProductHandler(products *services.ProductService, authz *services.AuthzService) *ProductHandler {
	return &ProductHandler{products: products, authz: authz, validate: validator.New()}
}

// RegisterPublicRoutes registers the read-only catalogue routes.
func (h *ProductHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListPublic)
	router.Get("/products/:id", h.HandleGet)
	router.Get("/public/products/:id/photos", h.HandleListPhotos)
	router.Get("/public/photos/:id", h.HandleGetPhoto)
}

// RegisterProtectedRoutes registers seller catalogue management.
func (h *ProductHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Post("/brands/:slug/products", h.HandleCreate)
	router.Get("/brands/:slug/products", h.HandleListByBrand)
	router.Put("/products/:id", h.HandleUpdate)
	router.Delete("/products/:id", h.HandleDelete)
	router.Post("/products/:id/photos", h.HandleUploadPhoto)
}

// HandleListPublic lists active products, filtered by ?brand= and ?category=.
func (h *ProductHandler) HandleListPublic(c *fiber.Ctx) error {
	products, err := h.products.ListPublic(c.Query("brand"), c.Query("category"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// HandleGet returns one product.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	product, err := h.products.Get(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// ProductRequest is the request body for creating or updating a product.
type ProductRequest struct {
	Name        string  `json:"name" validate:"omitempty,min=2,max=255"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	Price       float64 `json:"price" validate:"omitempty,gt=0"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
	Category    string  `json:"category"`
	Status      string  `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// HandleCreate adds a product under the brand in the path.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Category:    req.Category,
		Status:      models.ProductStatus(req.Status),
	}
	created, err := h.products.Create(actor, c.Params("slug"), product)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleListByBrand lists all of a brand's products for its seller.
func (h *ProductHandler) HandleListByBrand(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}
	products, err := h.products.ListByBrand(actor, c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// HandleUpdate modifies a product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	patch := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Status:      models.ProductStatus(req.Status),
	}
	updated, err := h.products.Update(actor, c.Params("id"), patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(updated)
}

// HandleDelete soft-deletes a product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}
	if err := h.products.Delete(actor, c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListPhotos lists a product's photo metadata.
func (h *ProductHandler) HandleListPhotos(c *fiber.Ctx) error {
	photos, err := h.products.Photos(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(photos)
}

// HandleGetPhoto serves photo bytes.
func (h *ProductHandler) HandleGetPhoto(c *fiber.Ctx) error {
	photo, err := h.products.Photo(c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, photo.ContentType)
	return c.Send(photo.Data)
}

// HandleUploadPhoto accepts a multipart product image.
func (h *ProductHandler) HandleUploadPhoto(c *fiber.Ctx) error {
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

	photo := &models.ProductPhoto{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := h.products.AttachPhoto(actor, c.Params("id"), photo); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": photo.ID,
	})
}
