package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orders-api/internal/models"

	"github.com/go-redis/redis/v8"
)

const productsCacheKey = "catalog:products"

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
		return nil, fmt.Errorf("redis ping failed: %v", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCachedProducts returns the cached catalog listing. A cache miss returns
// (nil, false, nil).
func (c *Client) GetCachedProducts(ctx context.Context) ([]models.Product, bool, error) {
	data, err := c.rdb.Get(ctx, productsCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("corrupt catalog cache: %w", err)
	}
	return products, true, nil
}

// SetCachedProducts stores the catalog listing with a TTL.
func (c *Client) SetCachedProducts(ctx context.Context, products []models.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productsCacheKey, data, ttl).Err()
}

// InvalidateProducts drops the cached catalog listing.
func (c *Client) InvalidateProducts(ctx context.Context) error {
	return c.rdb.Del(ctx, productsCacheKey).Err()
}

// AcquireOrderLock takes an order-scoped advisory lock. Reconciliation holds
// it across the gateway call so a double-submit for the same order cannot
// charge twice.
func (c *Client) AcquireOrderLock(ctx context.Context, orderID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, orderLockKey(orderID), "1", ttl).Result()
}

// ReleaseOrderLock releases an order-scoped advisory lock.
func (c *Client) ReleaseOrderLock(ctx context.Context, orderID int64) error {
	return c.rdb.Del(ctx, orderLockKey(orderID)).Err()
}

func orderLockKey(orderID int64) string {
	return fmt.Sprintf("lock:order:%d", orderID)
}
