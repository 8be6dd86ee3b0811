package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shop-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	productKeyPrefix = "product:"
	productListKey   = "products:all"
	cacheTTL         = 5 * time.Minute
)

// Client is a Redis-backed read cache for catalog endpoints. The order
// workflow never reads through it; price snapshots must come from the store.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetProduct returns a cached product, or nil on a miss.
func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf("%s%d", productKeyPrefix, id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to decode cached product: %w", err)
	}
	return &product, nil
}

// SetProduct caches a product with TTL.
func (c *Client) SetProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("%s%d", productKeyPrefix, product.ID), data, cacheTTL).Err()
}

// GetProductList returns the cached catalog listing, or nil on a miss.
func (c *Client) GetProductList(ctx context.Context) ([]models.Product, error) {
	data, err := c.rdb.Get(ctx, productListKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode cached product list: %w", err)
	}
	return products, nil
}

// SetProductList caches the catalog listing with TTL.
func (c *Client) SetProductList(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode product list: %w", err)
	}
	return c.rdb.Set(ctx, productListKey, data, cacheTTL).Err()
}

// Invalidate drops a product's cache entry and the catalog listing.
func (c *Client) Invalidate(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("%s%d", productKeyPrefix, id), productListKey).Err()
}
