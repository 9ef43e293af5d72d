package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fms/backend/internal/domain/shared"
	"github.com/fms/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormStockMovementRepository_Create(t *testing.T) {
	t.Run("appends movement record", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockMovementRepository(db)

		movement, err := stock.NewReceiptMovement("TXN202503100001", uuid.New(), uuid.New(), decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(context.Background(), movement))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps duplicate number to ErrAlreadyExists", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockMovementRepository(db)

		movement, err := stock.NewReceiptMovement("TXN202503100001", uuid.New(), uuid.New(), decimal.NewFromInt(10), time.Now())
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "stock_movements"`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err = repo.Create(context.Background(), movement)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockMovementRepository_FindAll(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockMovementRepository(db)

	warehouseID := uuid.New()
	movement, err := stock.NewIssueMovement("TXN202503100002", uuid.New(), warehouseID, decimal.NewFromInt(3), time.Now())
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "movement_number", "kind", "material_id",
		"from_warehouse_id", "to_warehouse_id", "quantity", "unit_price",
		"remarks", "reference_type", "reference_id", "occurred_at",
	}).AddRow(
		movement.ID, movement.CreatedAt, movement.UpdatedAt,
		movement.MovementNumber, movement.Kind, movement.MaterialID,
		movement.FromWarehouseID, movement.ToWarehouseID, movement.Quantity, nil,
		"", "", "", movement.OccurredAt,
	)

	// Warehouse filter matches either side of the movement
	mock.ExpectQuery(`SELECT \* FROM "stock_movements" WHERE \(from_warehouse_id = \$1 OR to_warehouse_id = \$2\) AND kind = \$3`).
		WithArgs(warehouseID, warehouseID, stock.MovementKindIssue).
		WillReturnRows(rows)

	kind := stock.MovementKindIssue
	filter := stock.MovementFilter{WarehouseID: &warehouseID, Kind: &kind}
	movements, err := repo.FindAll(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "TXN202503100002", movements[0].MovementNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
