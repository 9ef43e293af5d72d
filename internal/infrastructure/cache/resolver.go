package cache

import (
	"context"
	"time"

	appstock "github.com/fms/backend/internal/application/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NameSource resolves display names from the system of record (the master
// data tables). The cache sits in front of it.
type NameSource interface {
	MaterialName(ctx context.Context, materialID uuid.UUID) (string, error)
	WarehouseName(ctx context.Context, warehouseID uuid.UUID) (string, error)
}

// CachedNameResolver resolves display names through a NameCache backed by a
// NameSource. Cache failures degrade to direct source lookups; they never
// fail the resolution.
type CachedNameResolver struct {
	source NameSource
	cache  NameCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedNameResolver creates a resolver with the given source and cache
func NewCachedNameResolver(source NameSource, cache NameCache, ttl time.Duration, logger *zap.Logger) *CachedNameResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedNameResolver{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// MaterialName resolves a material's display name
func (r *CachedNameResolver) MaterialName(ctx context.Context, materialID uuid.UUID) (string, error) {
	return r.resolve(ctx, KindMaterial, materialID, r.source.MaterialName)
}

// WarehouseName resolves a warehouse's display name
func (r *CachedNameResolver) WarehouseName(ctx context.Context, warehouseID uuid.UUID) (string, error) {
	return r.resolve(ctx, KindWarehouse, warehouseID, r.source.WarehouseName)
}

func (r *CachedNameResolver) resolve(ctx context.Context, kind NameKind, id uuid.UUID, lookup func(context.Context, uuid.UUID) (string, error)) (string, error) {
	if name, ok, err := r.cache.Get(ctx, kind, id); err == nil && ok {
		return name, nil
	} else if err != nil {
		r.logger.Warn("name cache read failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
	}

	name, err := lookup(ctx, id)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, kind, id, name, r.ttl); err != nil {
		r.logger.Warn("name cache write failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
	return name, nil
}

// Ensure CachedNameResolver satisfies the stock service's resolver contract
var _ appstock.DisplayNameResolver = (*CachedNameResolver)(nil)
