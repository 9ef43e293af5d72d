package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fms/backend/internal/domain/shared"
	"github.com/fms/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM DB backed by a mocked SQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func entryRows(entry *stock.StockEntry) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "material_id", "warehouse_id", "quantity",
	}).AddRow(
		entry.ID, entry.CreatedAt, entry.UpdatedAt,
		entry.MaterialID, entry.WarehouseID, entry.Quantity,
	)
}

func TestGormStockEntryRepository_FindByMaterialAndWarehouse(t *testing.T) {
	t.Run("finds existing entry", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockEntryRepository(db)

		entry, err := stock.NewStockEntry(uuid.New(), uuid.New())
		require.NoError(t, err)
		entry.Quantity = decimal.NewFromInt(70)

		mock.ExpectQuery(`SELECT \* FROM "stock_entries" WHERE material_id = \$1 AND warehouse_id = \$2`).
			WithArgs(entry.MaterialID, entry.WarehouseID, 1).
			WillReturnRows(entryRows(entry))

		found, err := repo.FindByMaterialAndWarehouse(context.Background(), entry.MaterialID, entry.WarehouseID)
		require.NoError(t, err)
		assert.Equal(t, entry.ID, found.ID)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(70)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing pair to ErrNotFound", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockEntryRepository(db)

		materialID := uuid.New()
		warehouseID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "stock_entries"`).
			WithArgs(materialID, warehouseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByMaterialAndWarehouse(context.Background(), materialID, warehouseID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockEntryRepository_FindForUpdate(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockEntryRepository(db)

	entry, err := stock.NewStockEntry(uuid.New(), uuid.New())
	require.NoError(t, err)

	// The row lock must be part of the generated statement
	mock.ExpectQuery(`SELECT \* FROM "stock_entries" WHERE material_id = \$1 AND warehouse_id = \$2 .* FOR UPDATE`).
		WithArgs(entry.MaterialID, entry.WarehouseID, 1).
		WillReturnRows(entryRows(entry))

	found, err := repo.FindForUpdate(context.Background(), entry.MaterialID, entry.WarehouseID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, found.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStockEntryRepository_Create(t *testing.T) {
	t.Run("inserts new entry", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockEntryRepository(db)

		entry, err := stock.NewStockEntry(uuid.New(), uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "stock_entries"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(context.Background(), entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps duplicate pair to ErrAlreadyExists", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockEntryRepository(db)

		entry, err := stock.NewStockEntry(uuid.New(), uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "stock_entries"`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err = repo.Create(context.Background(), entry)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockEntryRepository_FindAll(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormStockEntryRepository(db)

	warehouseID := uuid.New()
	entry, err := stock.NewStockEntry(uuid.New(), warehouseID)
	require.NoError(t, err)
	entry.Quantity = decimal.NewFromInt(5)

	mock.ExpectQuery(`SELECT \* FROM "stock_entries" WHERE warehouse_id = \$1 AND quantity > 0`).
		WithArgs(warehouseID).
		WillReturnRows(entryRows(entry))

	filter := stock.EntryFilter{WarehouseID: &warehouseID, NonEmpty: true}
	entries, err := repo.FindAll(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, warehouseID, entries[0].WarehouseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
