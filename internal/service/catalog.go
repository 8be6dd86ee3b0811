package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// ProductStore is the product read surface the catalog needs.
type ProductStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// CatalogLookup resolves product references against the store. Every call
// reads the store's current state; there is deliberately no cache here, so
// prices resolved during order placement are live at resolution time.
type CatalogLookup struct {
	products ProductStore
	logger   *zap.Logger
}

// NewCatalogLookup creates a catalog lookup over a product store
func NewCatalogLookup(products ProductStore) *CatalogLookup {
	return &CatalogLookup{
		products: products,
		logger:   util.GetLogger(),
	}
}

// Resolve returns the product for a reference, or ErrNotFound if the
// reference does not exist.
func (cl *CatalogLookup) Resolve(ctx context.Context, productID int64) (*models.Product, error) {
	start := time.Now()
	defer func() {
		util.CatalogLookupLatency.Observe(time.Since(start).Seconds())
	}()

	product, err := cl.products.GetProductByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product %d: %w", productID, err)
	}
	return product, nil
}
