package services

import (
	"log"

	"electromart/internal/store/models"
	"electromart/internal/store/repositories"
	"electromart/pkg/apperr"
	"electromart/pkg/rabbitmq"

	"gorm.io/gorm"
)

// EventPublisher receives order lifecycle events. Publishing is best-effort
// and never fails the order.
type EventPublisher interface {
	PublishOrderEvent(event rabbitmq.OrderEvent) error
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// OrderService places and tracks customer orders.
type OrderService struct {
	db        *gorm.DB
	publisher EventPublisher
}

// NewOrderService creates a new OrderService. publisher may be nil when no
// broker is configured.
func NewOrderService(db *gorm.DB, publisher EventPublisher) *OrderService {
	return &OrderService{db: db, publisher: publisher}
}

// Place creates an order for the user. Line prices are captured from the
// catalogue at order time.
func (s *OrderService) Place(userID string, items []OrderItemInput) (*models.Order, error) {
	if len(items) == 0 {
		return nil, apperr.Errorf(apperr.ErrBadRequest, "order has no items")
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := repositories.NewGORMProductRepository(tx)
		orders := repositories.NewGORMOrderRepository(tx)

		order = &models.Order{UserID: userID, Status: "CREATED"}
		for _, item := range items {
			if item.Quantity <= 0 {
				return apperr.Errorf(apperr.ErrBadRequest, "quantity must be positive")
			}
			product, err := products.FindByID(item.ProductID)
			if err != nil {
				return err
			}
			if product.Deleted || product.Status != models.ProductActive {
				return apperr.Errorf(apperr.ErrBadRequest, "product %s is not available", item.ProductID)
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     product.Price,
			})
			order.TotalAmount += product.Price * float64(item.Quantity)
		}
		return orders.Create(order)
	})
	if err != nil {
		return nil, err
	}

	s.publish(rabbitmq.OrderEvent{
		Type:    "order.created",
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
		Total:   order.TotalAmount,
	})
	return order, nil
}

// Get returns an order. Users see only their own orders; admins see all.
func (s *OrderService) Get(actor *models.SyncedUser, orderID string) (*models.Order, error) {
	order, err := repositories.NewGORMOrderRepository(s.db).FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if actor == nil || (order.UserID != actor.ID && actor.Role != models.RoleAdmin) {
		return nil, apperr.Errorf(apperr.ErrForbidden, "not your order")
	}
	return order, nil
}

// ListMine returns the actor's orders.
func (s *OrderService) ListMine(userID string) ([]models.Order, error) {
	return repositories.NewGORMOrderRepository(s.db).ListByUser(userID)
}

// ListAll returns every order. Admin only, enforced by the handler.
func (s *OrderService) ListAll() ([]models.Order, error) {
	return repositories.NewGORMOrderRepository(s.db).List()
}

// UpdateStatus moves an order to a new state and publishes the change.
func (s *OrderService) UpdateStatus(orderID, status string) (*models.Order, error) {
	orders := repositories.NewGORMOrderRepository(s.db)
	switch status {
	case "CREATED", "PAID", "SHIPPED", "DELIVERED", "CANCELLED":
	default:
		return nil, apperr.Errorf(apperr.ErrBadRequest, "unknown order status %q", status)
	}
	if err := orders.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}
	order, err := orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	s.publish(rabbitmq.OrderEvent{
		Type:    "order.status_changed",
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status,
	})
	return order, nil
}

func (s *OrderService) publish(event rabbitmq.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(event); err != nil {
		log.Printf("Failed to publish %s for order %s: %v", event.Type, event.OrderID, err)
	}
}
