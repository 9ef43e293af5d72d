package persistence

import (
	"context"
	"errors"

	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNameDirectory resolves material and warehouse display names from the
// master data tables. Master data itself is maintained outside this service;
// the directory is a read-only lookup used to denormalize responses.
type GormNameDirectory struct {
	db *gorm.DB
}

// NewGormNameDirectory creates a new GormNameDirectory
func NewGormNameDirectory(db *gorm.DB) *GormNameDirectory {
	return &GormNameDirectory{db: db}
}

// MaterialName resolves a material's display name
func (d *GormNameDirectory) MaterialName(ctx context.Context, materialID uuid.UUID) (string, error) {
	return d.lookup(ctx, "materials", materialID)
}

// WarehouseName resolves a warehouse's display name
func (d *GormNameDirectory) WarehouseName(ctx context.Context, warehouseID uuid.UUID) (string, error) {
	return d.lookup(ctx, "warehouses", warehouseID)
}

func (d *GormNameDirectory) lookup(ctx context.Context, table string, id uuid.UUID) (string, error) {
	var name string
	err := d.db.WithContext(ctx).
		Table(table).
		Select("name").
		Where("id = ?", id).
		Take(&name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return name, nil
}
