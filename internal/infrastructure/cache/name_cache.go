package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NameKind distinguishes the cached name namespaces
type NameKind string

const (
	// KindMaterial caches material display names
	KindMaterial NameKind = "material"
	// KindWarehouse caches warehouse display names
	KindWarehouse NameKind = "warehouse"
)

// NameCache caches resolved display names. Implementations must be safe for
// concurrent use. A miss is not an error: Get returns ok=false.
type NameCache interface {
	// Get retrieves a cached name
	Get(ctx context.Context, kind NameKind, id uuid.UUID) (name string, ok bool, err error)

	// Set stores a name with a TTL. A zero TTL uses the implementation default.
	Set(ctx context.Context, kind NameKind, id uuid.UUID, name string, ttl time.Duration) error

	// Delete removes a cached name
	Delete(ctx context.Context, kind NameKind, id uuid.UUID) error

	// Close releases any resources held by the cache
	Close() error
}

func cacheKey(kind NameKind, id uuid.UUID) string {
	return "name:" + string(kind) + ":" + id.String()
}
