package api

import (
	"errors"
	"net/http"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	users    *service.UserService
	products *service.ProductService
	orders   *service.OrderService
	tokens   *auth.TokenService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *service.UserService,
	products *service.ProductService,
	orders *service.OrderService,
	tokens *auth.TokenService,
) *Handler {
	return &Handler{
		users:    users,
		products: products,
		orders:   orders,
		tokens:   tokens,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/register", h.register)
	router.POST("/login", h.login)

	users := router.Group("/users", h.requireAuth())
	{
		users.GET("/all", h.listUsers)
		users.GET("/:id", h.getUser)
		users.PATCH("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}

	products := router.Group("/products")
	{
		products.GET("/all", h.listProducts)
		products.GET("/category/:category", h.listProductsByCategory)
		products.GET("/:id", h.getProduct)
		products.POST("/create", h.requireAuth(), h.createProduct)
		products.PATCH("/:id", h.requireAuth(), h.updateProduct)
		products.DELETE("/:id", h.requireAuth(), h.deleteProduct)
	}

	orders := router.Group("/orders", h.requireAuth())
	{
		orders.POST("/create", h.createOrder)
		orders.GET("/all", h.listOrders)
		orders.PATCH("/update-status/:id", h.updateOrderStatus)
		orders.DELETE("/:id", h.deleteOrder)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps service failures to HTTP status codes. Unexpected
// failures surface as a generic 500 without internal detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
