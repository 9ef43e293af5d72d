package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryNameCache(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryNameCache(time.Minute)
	defer cache.Close()

	id := uuid.New()

	t.Run("miss before set", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, KindMaterial, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, KindMaterial, id, "Copper Pipe 15mm", 0))
		name, ok, err := cache.Get(ctx, KindMaterial, id)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Copper Pipe 15mm", name)
	})

	t.Run("kinds are separate namespaces", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, KindWarehouse, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entry reads as a miss", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, KindWarehouse, id, "Central Store", time.Nanosecond))
		time.Sleep(5 * time.Millisecond)
		_, ok, err := cache.Get(ctx, KindWarehouse, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		require.NoError(t, cache.Delete(ctx, KindMaterial, id))
		_, ok, err := cache.Get(ctx, KindMaterial, id)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

type countingSource struct {
	calls int
}

func (s *countingSource) MaterialName(context.Context, uuid.UUID) (string, error) {
	s.calls++
	return "Gasket Kit", nil
}

func (s *countingSource) WarehouseName(context.Context, uuid.UUID) (string, error) {
	s.calls++
	return "North Depot", nil
}

func TestCachedNameResolver(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryNameCache(time.Minute)
	defer cache.Close()

	source := &countingSource{}
	resolver := NewCachedNameResolver(source, cache, time.Minute, nil)

	id := uuid.New()

	name, err := resolver.MaterialName(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Gasket Kit", name)
	assert.Equal(t, 1, source.calls)

	// Second resolution served from cache
	name, err = resolver.MaterialName(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Gasket Kit", name)
	assert.Equal(t, 1, source.calls)

	// Different kind goes back to the source
	_, err = resolver.WarehouseName(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}
