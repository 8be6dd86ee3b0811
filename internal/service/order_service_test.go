package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderStore struct {
	orders map[int64]*models.Order
	nextID int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[int64]*models.Order)}
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	f.nextID++
	order.ID = f.nextID
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	copied := *order
	copied.Items = append([]models.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (f *fakeOrderStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	for id := int64(1); id <= f.nextID; id++ {
		if order, ok := f.orders[id]; ok {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	for id := int64(1); id <= f.nextID; id++ {
		if order, ok := f.orders[id]; ok && order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeOrderStore) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (time.Time, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return time.Time{}, fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return order.UpdatedAt, nil
}

func (f *fakeOrderStore) DeleteOrder(ctx context.Context, orderID int64) error {
	if _, ok := f.orders[orderID]; !ok {
		return fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
	}
	delete(f.orders, orderID)
	return nil
}

type fakeCatalog struct {
	products map[int64]*models.Product
}

func (f *fakeCatalog) Resolve(ctx context.Context, productID int64) (*models.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

type noopPublisher struct{}

func (noopPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return nil
}
func (noopPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return nil
}
func (noopPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return nil
}

func newTestOrderService(t *testing.T) (*OrderService, *fakeOrderStore, *fakeCatalog) {
	t.Helper()
	orderStore := newFakeOrderStore()
	catalog := &fakeCatalog{products: map[int64]*models.Product{
		1: {ID: 1, Name: "headphones", Price: 1000, Category: "electronics", Quantity: 10},
		2: {ID: 2, Name: "paperback", Price: 550, Category: "books", Quantity: 3},
	}}
	return NewOrderService(orderStore, catalog, noopPublisher{}), orderStore, catalog
}

var (
	userA = auth.Identity{UserID: 10, Role: models.RoleUser}
	userB = auth.Identity{UserID: 20, Role: models.RoleUser}
	admin = auth.Identity{UserID: 99, Role: models.RoleAdmin}
)

func TestCreateComputesSnapshotTotal(t *testing.T) {
	svc, _, _ := newTestOrderService(t)

	order, err := svc.Create(context.Background(), userA, []OrderItemRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2*1000+1*550), order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, userA.UserID, order.UserID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(1000), order.Items[0].UnitPrice)
	assert.Equal(t, int64(550), order.Items[1].UnitPrice)

	var recomputed int64
	for _, item := range order.Items {
		recomputed += item.UnitPrice * int64(item.Quantity)
	}
	assert.Equal(t, order.TotalAmount, recomputed)
}

func TestCreateUnknownProductPersistsNothing(t *testing.T) {
	svc, orderStore, _ := newTestOrderService(t)

	_, err := svc.Create(context.Background(), userA, []OrderItemRequest{
		{ProductID: 1, Quantity: 1},
		{ProductID: 42, Quantity: 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "42")
	assert.Empty(t, orderStore.orders)
}

func TestCreateRequiresIdentityAndItems(t *testing.T) {
	svc, _, _ := newTestOrderService(t)

	_, err := svc.Create(context.Background(), auth.Identity{}, []OrderItemRequest{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Create(context.Background(), userA, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), userA, []OrderItemRequest{{ProductID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPriceChangeDoesNotAlterExistingOrder(t *testing.T) {
	svc, orderStore, catalog := newTestOrderService(t)

	order, err := svc.Create(context.Background(), userA, []OrderItemRequest{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)
	require.Equal(t, int64(2000), order.TotalAmount)

	catalog.products[1].Price = 9999

	stored, err := orderStore.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), stored.TotalAmount)
	assert.Equal(t, int64(1000), stored.Items[0].UnitPrice)
}

func TestListScopedByRole(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()

	o1, err := svc.Create(ctx, userA, []OrderItemRequest{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	o2, err := svc.Create(ctx, userB, []OrderItemRequest{{ProductID: 2, Quantity: 1}})
	require.NoError(t, err)

	aOrders, err := svc.List(ctx, userA)
	require.NoError(t, err)
	require.Len(t, aOrders, 1)
	assert.Equal(t, o1.ID, aOrders[0].ID)

	adminOrders, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, adminOrders, 2)
	assert.Equal(t, o1.ID, adminOrders[0].ID)
	assert.Equal(t, o2.ID, adminOrders[1].ID)

	_, err = svc.List(ctx, auth.Identity{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateStatusAuthorization(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, userA, []OrderItemRequest{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	// owner may update
	updated, err := svc.UpdateStatus(ctx, userA, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	assert.Equal(t, order.TotalAmount, updated.TotalAmount)

	// a different non-admin user may not
	_, err = svc.UpdateStatus(ctx, userB, order.ID, models.OrderStatusSuccessful)
	assert.ErrorIs(t, err, ErrForbidden)

	// admin always may, regardless of ownership
	updated, err = svc.UpdateStatus(ctx, admin, order.ID, models.OrderStatusSuccessful)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusSuccessful, updated.Status)
}

func TestUpdateStatusReturnsStoredTimestamp(t *testing.T) {
	svc, orderStore, _ := newTestOrderService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, userA, []OrderItemRequest{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, userA, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)

	stored, err := orderStore.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.IsZero())
	assert.True(t, updated.UpdatedAt.Equal(stored.UpdatedAt),
		"returned order must carry the persisted updated_at")
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc, _, _ := newTestOrderService(t)

	orders, err := svc.List(context.Background(), userA)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, _, _ := newTestOrderService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, userA, []OrderItemRequest{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, userA, order.ID, "shipped")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, userA, order.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, admin, 404, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateStatus(ctx, auth.Identity{}, order.ID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	svc, orderStore, _ := newTestOrderService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, userA, []OrderItemRequest{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	// ownership does not grant delete rights
	_, err = svc.Delete(ctx, userA, order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := svc.Delete(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, deleted.ID)
	assert.Equal(t, order.TotalAmount, deleted.TotalAmount)
	assert.Empty(t, orderStore.orders)

	_, err = svc.Delete(ctx, admin, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
