package service

import (
	"context"
	"fmt"
	"testing"

	"shop-service/internal/models"
	"shop-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductReader struct {
	products map[int64]*models.Product
}

func (f *fakeProductReader) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	return product, nil
}

func TestCatalogResolve(t *testing.T) {
	lookup := NewCatalogLookup(&fakeProductReader{products: map[int64]*models.Product{
		7: {ID: 7, Name: "lamp", Price: 1999, Category: "home"},
	}})

	product, err := lookup.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), product.Price)

	_, err = lookup.Resolve(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "8")
}
