package service

import (
	"context"
	"time"

	"orders-api/internal/models"
	"orders-api/internal/util"

	"go.uber.org/zap"
)

// CatalogStore is the read-only catalog surface.
type CatalogStore interface {
	GetAvailableProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// ProductCache caches the catalog listing. Errors degrade to cache misses.
type ProductCache interface {
	GetCachedProducts(ctx context.Context) ([]models.Product, bool, error)
	SetCachedProducts(ctx context.Context, products []models.Product, ttl time.Duration) error
}

// CatalogService serves the read-mostly product listing, cache first.
type CatalogService struct {
	store    CatalogStore
	cache    ProductCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore, cache ProductCache, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// ListProducts returns the available catalog, from cache when fresh.
func (cs *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, hit, err := cs.cache.GetCachedProducts(ctx)
	if err != nil {
		cs.logger.Warn("Catalog cache read failed", zap.Error(err))
	}
	if hit {
		return products, nil
	}

	products, err = cs.store.GetAvailableProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := cs.cache.SetCachedProducts(ctx, products, cs.cacheTTL); err != nil {
		cs.logger.Warn("Catalog cache write failed", zap.Error(err))
	}
	return products, nil
}

// GetProduct retrieves one product by id.
func (cs *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return cs.store.GetProductByID(ctx, id)
}
