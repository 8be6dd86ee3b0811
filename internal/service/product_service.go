package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// ProductFullStore is the persistence surface the product service needs.
type ProductFullStore interface {
	ProductStore
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductCache caches product reads for the public catalog endpoints.
// Order placement never goes through it.
type ProductCache interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product) error
	GetProductList(ctx context.Context) ([]models.Product, error)
	SetProductList(ctx context.Context, products []models.Product) error
	Invalidate(ctx context.Context, id int64) error
}

// ProductService handles catalog management
type ProductService struct {
	store  ProductFullStore
	cache  ProductCache
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(store ProductFullStore, cache ProductCache) *ProductService {
	return &ProductService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest carries new-product fields. Price is in cents.
type CreateProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    int64  `json:"price" binding:"required"`
	Category string `json:"category" binding:"required"`
	Quantity int    `json:"quantity"`
}

// Create adds a product to the catalog. Admin only.
func (s *ProductService) Create(ctx context.Context, identity auth.Identity, req *CreateProductRequest) (*models.Product, error) {
	if identity.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("creating products: %w", ErrForbidden)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("product name is required: %w", ErrInvalidInput)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", ErrInvalidInput)
	}
	if !models.ValidCategory(req.Category) {
		return nil, fmt.Errorf("category %q: %w", req.Category, ErrInvalidInput)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", ErrInvalidInput)
	}

	product := &models.Product{
		Name:     name,
		Price:    req.Price,
		Category: req.Category,
		Quantity: req.Quantity,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("product %q: %w", name, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateCache(ctx, product.ID)
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name))

	return product, nil
}

// Get returns one product, served from cache when possible.
func (s *ProductService) Get(ctx context.Context, productID int64) (*models.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, productID); err == nil && cached != nil {
		util.ProductCacheHitsTotal.Inc()
		return cached, nil
	}
	util.ProductCacheMissesTotal.Inc()

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warn("Failed to cache product", zap.Int64("product_id", productID), zap.Error(err))
	}
	return product, nil
}

// List returns the whole catalog, served from cache when possible.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	if cached, err := s.cache.GetProductList(ctx); err == nil && cached != nil {
		util.ProductCacheHitsTotal.Inc()
		return cached, nil
	}
	util.ProductCacheMissesTotal.Inc()

	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProductList(ctx, products); err != nil {
		s.logger.Warn("Failed to cache product list", zap.Error(err))
	}
	return products, nil
}

// ListByCategory returns the products in one category. The category must
// come from the closed set, and an empty category is reported as not found.
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("category %q: %w", category, ErrInvalidInput)
	}

	products, err := s.store.GetProductsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no products in category %q: %w", category, ErrNotFound)
	}
	return products, nil
}

// UpdateProductRequest carries product updates; zero fields are left
// unchanged.
type UpdateProductRequest struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Quantity *int   `json:"quantity"`
}

// Update modifies a product. Admin only. Existing orders keep their price
// snapshots regardless of price changes made here.
func (s *ProductService) Update(ctx context.Context, identity auth.Identity, productID int64, req *UpdateProductRequest) (*models.Product, error) {
	if identity.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !identity.IsAdmin() {
		return nil, fmt.Errorf("updating products: %w", ErrForbidden)
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	if req.Name != "" {
		product.Name = strings.TrimSpace(req.Name)
	}
	if req.Price != 0 {
		if req.Price < 0 {
			return nil, fmt.Errorf("price must be positive: %w", ErrInvalidInput)
		}
		product.Price = req.Price
	}
	if req.Category != "" {
		if !models.ValidCategory(req.Category) {
			return nil, fmt.Errorf("category %q: %w", req.Category, ErrInvalidInput)
		}
		product.Category = req.Category
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("quantity must not be negative: %w", ErrInvalidInput)
		}
		product.Quantity = *req.Quantity
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, fmt.Errorf("product %q: %w", product.Name, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateCache(ctx, productID)
	s.logger.Info("Product updated", zap.Int64("product_id", productID))
	return product, nil
}

// Delete removes a product from the catalog. Admin only.
func (s *ProductService) Delete(ctx context.Context, identity auth.Identity, productID int64) error {
	if identity.UserID == 0 {
		return ErrUnauthenticated
	}
	if !identity.IsAdmin() {
		return fmt.Errorf("deleting products: %w", ErrForbidden)
	}

	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return err
	}

	s.invalidateCache(ctx, productID)
	s.logger.Info("Product deleted",
		zap.Int64("product_id", productID),
		zap.Int64("admin_id", identity.UserID))
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, productID int64) {
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn("Failed to invalidate product cache",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
}
