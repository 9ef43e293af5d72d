package stock

import (
	"testing"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockEntry(t *testing.T) {
	t.Run("creates entry with zero quantity", func(t *testing.T) {
		entry, err := NewStockEntry(uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.True(t, entry.Quantity.IsZero())
		assert.True(t, entry.IsEmpty())
	})

	t.Run("rejects nil material", func(t *testing.T) {
		_, err := NewStockEntry(uuid.Nil, uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects nil warehouse", func(t *testing.T) {
		_, err := NewStockEntry(uuid.New(), uuid.Nil)
		assert.Error(t, err)
	})
}

func TestStockEntry_Receive(t *testing.T) {
	entry, err := NewStockEntry(uuid.New(), uuid.New())
	require.NoError(t, err)

	t.Run("adds positive quantity", func(t *testing.T) {
		require.NoError(t, entry.Receive(decimal.NewFromInt(100)))
		assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		err := entry.Receive(decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		err := entry.Receive(decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})
}

func TestStockEntry_Issue(t *testing.T) {
	entry, err := NewStockEntry(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, entry.Receive(decimal.NewFromInt(70)))

	t.Run("removes available quantity", func(t *testing.T) {
		require.NoError(t, entry.Issue(decimal.NewFromInt(30)))
		assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(40)))
	})

	t.Run("rejects issue exceeding stock and leaves quantity unchanged", func(t *testing.T) {
		err := entry.Issue(decimal.NewFromInt(1000))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(40)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		assert.ErrorIs(t, entry.Issue(decimal.Zero), shared.ErrInvalidQuantity)
		assert.ErrorIs(t, entry.Issue(decimal.NewFromInt(-1)), shared.ErrInvalidQuantity)
	})

	t.Run("issue to exactly zero keeps the entry", func(t *testing.T) {
		require.NoError(t, entry.Issue(decimal.NewFromInt(40)))
		assert.True(t, entry.Quantity.IsZero())
		assert.True(t, entry.IsEmpty())
	})
}

func TestStockEntry_SetQuantity(t *testing.T) {
	entry, err := NewStockEntry(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, entry.Receive(decimal.NewFromInt(70)))

	t.Run("returns signed delta", func(t *testing.T) {
		delta, err := entry.SetQuantity(decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.True(t, delta.Equal(decimal.NewFromInt(-20)))
		assert.True(t, entry.Quantity.Equal(decimal.NewFromInt(50)))
	})

	t.Run("allows adjusting to zero", func(t *testing.T) {
		delta, err := entry.SetQuantity(decimal.Zero)
		require.NoError(t, err)
		assert.True(t, delta.Equal(decimal.NewFromInt(-50)))
	})

	t.Run("rejects negative target and leaves quantity unchanged", func(t *testing.T) {
		_, err := entry.SetQuantity(decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		assert.True(t, entry.Quantity.IsZero())
	})
}

func TestStockEntry_CanFulfill(t *testing.T) {
	entry, err := NewStockEntry(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, entry.Receive(decimal.NewFromInt(10)))

	assert.True(t, entry.CanFulfill(decimal.NewFromInt(10)))
	assert.True(t, entry.CanFulfill(decimal.NewFromInt(5)))
	assert.False(t, entry.CanFulfill(decimal.NewFromInt(11)))
}
