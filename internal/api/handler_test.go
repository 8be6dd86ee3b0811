package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/service"
	"shop-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOrderStore struct {
	orders map[int64]*models.Order
	nextID int64
}

func (m *memOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	m.nextID++
	order.ID = m.nextID
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &stored
	return nil
}

func (m *memOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	copied := *order
	return &copied, nil
}

func (m *memOrderStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	for id := int64(1); id <= m.nextID; id++ {
		if order, ok := m.orders[id]; ok {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (m *memOrderStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	for id := int64(1); id <= m.nextID; id++ {
		if order, ok := m.orders[id]; ok && order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (m *memOrderStore) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (time.Time, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return time.Time{}, fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return order.UpdatedAt, nil
}

func (m *memOrderStore) DeleteOrder(ctx context.Context, orderID int64) error {
	if _, ok := m.orders[orderID]; !ok {
		return fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
	}
	delete(m.orders, orderID)
	return nil
}

type memCatalog struct {
	products map[int64]*models.Product
}

func (m *memCatalog) Resolve(ctx context.Context, productID int64) (*models.Product, error) {
	product, ok := m.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, service.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

type silentPublisher struct{}

func (silentPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return nil
}
func (silentPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return nil
}
func (silentPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	orderStore := &memOrderStore{orders: make(map[int64]*models.Order)}
	catalog := &memCatalog{products: map[int64]*models.Product{
		1: {ID: 1, Name: "headphones", Price: 1000, Category: "electronics"},
		2: {ID: 2, Name: "paperback", Price: 550, Category: "books"},
	}}
	orders := service.NewOrderService(orderStore, catalog, silentPublisher{})

	handler := NewHandler(nil, nil, orders, tokens)
	router := gin.New()
	handler.SetupRoutes(router)
	return router, tokens
}

func bearerFor(t *testing.T, tokens *auth.TokenService, userID int64, role string) string {
	t.Helper()
	token, err := tokens.Issue(&models.User{ID: userID, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOrderRoutesRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodGet, "/orders/all", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		doJSON(router, http.MethodGet, "/orders/all", "Bearer not.a.token", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		doJSON(router, http.MethodPost, "/orders/create", "Basic abc", gin.H{"items": []gin.H{}}).Code)
}

func TestListOrdersEmptyIsJSONArray(t *testing.T) {
	router, tokens := newTestRouter(t)
	userBearer := bearerFor(t, tokens, 10, models.RoleUser)

	w := doJSON(router, http.MethodGet, "/orders/all", userBearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	router, tokens := newTestRouter(t)
	userBearer := bearerFor(t, tokens, 10, models.RoleUser)
	otherBearer := bearerFor(t, tokens, 20, models.RoleUser)
	adminBearer := bearerFor(t, tokens, 99, models.RoleAdmin)

	// place an order: 2 x 1000 + 1 x 550 = 2550
	w := doJSON(router, http.MethodPost, "/orders/create", userBearer, gin.H{
		"items": []gin.H{
			{"product": 1, "quantity": 2},
			{"product": 2, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(2550), created.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, created.Status)

	// unknown product aborts with 404
	w = doJSON(router, http.MethodPost, "/orders/create", userBearer, gin.H{
		"items": []gin.H{{"product": 42, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// owner sees their order, admin sees all
	w = doJSON(router, http.MethodGet, "/orders/all", userBearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	w = doJSON(router, http.MethodGet, "/orders/all", otherBearer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Empty(t, listed)

	// status update: bad value 400, stranger 403, owner 200
	path := fmt.Sprintf("/orders/update-status/%d", created.ID)
	assert.Equal(t, http.StatusBadRequest,
		doJSON(router, http.MethodPatch, path, userBearer, gin.H{"status": "shipped"}).Code)
	assert.Equal(t, http.StatusForbidden,
		doJSON(router, http.MethodPatch, path, otherBearer, gin.H{"status": "cancelled"}).Code)

	w = doJSON(router, http.MethodPatch, path, userBearer, gin.H{"status": "successful"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.OrderStatusSuccessful, updated.Status)

	// delete: owner 403, admin 200, second delete 404
	deletePath := fmt.Sprintf("/orders/%d", created.ID)
	assert.Equal(t, http.StatusForbidden, doJSON(router, http.MethodDelete, deletePath, userBearer, nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodDelete, deletePath, adminBearer, nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodDelete, deletePath, adminBearer, nil).Code)
}
