package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSequenceGenerator_Next(t *testing.T) {
	t.Run("allocates via atomic upsert increment", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		gen := NewGormSequenceGenerator(db)

		// One statement does insert-or-increment and returns the new value;
		// there is no separate read that a concurrent writer could race
		mock.ExpectQuery(`(?s)INSERT INTO sequence_counters.*ON CONFLICT \(prefix\).*DO UPDATE SET last_value = sequence_counters\.last_value \+ 1.*RETURNING last_value`).
			WithArgs("TXN20250310").
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(42))

		number, err := gen.Next(context.Background(), "TXN20250310")
		require.NoError(t, err)
		assert.Equal(t, "TXN202503100042", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first allocation starts at one", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		gen := NewGormSequenceGenerator(db)

		mock.ExpectQuery(`INSERT INTO sequence_counters`).
			WithArgs("REQ202503").
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(1))

		number, err := gen.Next(context.Background(), "REQ202503")
		require.NoError(t, err)
		assert.Equal(t, "REQ2025030001", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
