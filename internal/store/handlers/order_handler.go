package handlers

import (
	"electromart/internal/store/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles customer orders.
type OrderHandler struct {
	orders   *services.OrderService
	authz    *services.AuthzService
	validate *validator.Validate
}

func NewOrderHandler(orders *services.OrderService, authz *services.AuthzService) *OrderHandler {
	return &OrderHandler{orders: orders, authz: authz, validate: validator.New()}
}

// RegisterProtectedRoutes registers the customer order routes.
func (h *OrderHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Post("/orders", h.HandlePlace)
	router.Get("/orders", h.HandleListMine)
	router.Get("/orders/:id", h.HandleGet)
}

// RegisterAdminRoutes registers order administration.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/admin/orders", h.HandleListAll)
	router.Put("/admin/orders/:id/status", h.HandleUpdateStatus)
}

// PlaceOrderRequest is the request body for placing an order.
type PlaceOrderRequest struct {
	Items []services.OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// HandlePlace places a new order for the caller.
func (h *OrderHandler) HandlePlace(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}

	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	order, err := h.orders.Place(actor.ID, req.Items)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleListMine returns the caller's orders.
func (h *OrderHandler) HandleListMine(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}
	orders, err := h.orders.ListMine(actor.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// HandleGet returns one order, owner or admin only.
func (h *OrderHandler) HandleGet(c *fiber.Ctx) error {
	actor, err := currentUser(c, h.authz)
	if err != nil {
		return fail(c, err)
	}
	order, err := h.orders.Get(actor, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// HandleListAll returns every order.
func (h *OrderHandler) HandleListAll(c *fiber.Ctx) error {
	orders, err := h.orders.ListAll()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// UpdateOrderStatusRequest is the request body for an order status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateStatus moves an order to a new state.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	order, err := h.orders.UpdateStatus(c.Params("id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}
