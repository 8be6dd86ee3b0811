package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the persistence surface the order workflow needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (time.Time, error)
	DeleteOrder(ctx context.Context, orderID int64) error
}

// Catalog resolves product references to current catalog state.
type Catalog interface {
	Resolve(ctx context.Context, productID int64) (*models.Product, error)
}

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}

// OrderService implements the order placement and authorization workflow
type OrderService struct {
	store     OrderStore
	catalog   Catalog
	publisher OrderEventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, catalog Catalog, publisher OrderEventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// OrderItemRequest represents one requested line of a new order
type OrderItemRequest struct {
	ProductID int64 `json:"product" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// Create validates an order request, resolves every line against the live
// catalog, snapshots prices, and persists the order with status pending.
// The first unresolvable product aborts the whole operation; nothing is
// persisted in that case.
func (s *OrderService) Create(ctx context.Context, identity auth.Identity, items []OrderItemRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Create")
	defer span.End()

	if identity.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if len(items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_items").Inc()
		return nil, fmt.Errorf("order needs at least one item: %w", ErrInvalidInput)
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	var total int64
	for _, item := range items {
		if item.Quantity < 1 {
			util.OrdersFailedTotal.WithLabelValues("bad_quantity").Inc()
			return nil, fmt.Errorf("quantity for product %d must be at least 1: %w", item.ProductID, ErrInvalidInput)
		}

		// Resolution order is the caller's order; the first miss decides
		// the error detail.
		product, err := s.catalog.Resolve(ctx, item.ProductID)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("unknown_product").Inc()
			return nil, err
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		total += product.Price * int64(item.Quantity)
	}

	order := &models.Order{
		UserID:      identity.UserID,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
		Items:       orderItems,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.Int64("total_amount", order.TotalAmount))

	eventItems := make([]models.OrderItemData, 0, len(order.Items))
	for _, item := range order.Items {
		eventItems = append(eventItems, models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Items:       eventItems,
	}

	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// List returns every order for admin callers and only the caller's own
// orders otherwise.
func (s *OrderService) List(ctx context.Context, identity auth.Identity) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.List")
	defer span.End()

	if identity.UserID == 0 {
		return nil, ErrUnauthenticated
	}

	if identity.IsAdmin() {
		return s.store.GetOrders(ctx)
	}
	return s.store.GetOrdersByUserID(ctx, identity.UserID)
}

// UpdateStatus sets an order's status to a value from the closed set.
// Allowed for admins and for the order's owner.
func (s *OrderService) UpdateStatus(ctx context.Context, identity auth.Identity, orderID int64, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if identity.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidInput)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, translateStoreErr(err, orderID)
	}

	if !identity.IsAdmin() && order.UserID != identity.UserID {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrForbidden)
	}

	oldStatus := order.Status
	updatedAt, err := s.store.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, translateStoreErr(err, orderID)
	}
	order.Status = status
	order.UpdatedAt = updatedAt

	util.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("old_status", oldStatus),
		zap.String("new_status", status))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:   orderID,
		UserID:    order.UserID,
		OldStatus: oldStatus,
		NewStatus: status,
	}

	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return order, nil
}

// Delete removes an order. Admin only; ownership does not grant delete
// rights. Returns the deleted order's prior state.
func (s *OrderService) Delete(ctx context.Context, identity auth.Identity, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Delete")
	defer span.End()

	if !identity.IsAdmin() {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrForbidden)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, translateStoreErr(err, orderID)
	}

	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return nil, translateStoreErr(err, orderID)
	}

	util.OrdersDeletedTotal.Inc()
	s.logger.Info("Order deleted",
		zap.Int64("order_id", orderID),
		zap.Int64("admin_id", identity.UserID))

	event := &models.OrderDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderDeleted,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		UserID:  order.UserID,
	}

	if err := s.publisher.PublishOrderDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
	}

	return order, nil
}

func translateStoreErr(err error, orderID int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return err
}
