package persistence

import (
	"context"
	"errors"

	"github.com/fms/backend/internal/domain/maintenance"
	"github.com/fms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkRepository implements WorkRepository using GORM
type GormWorkRepository struct {
	db *gorm.DB
}

// NewGormWorkRepository creates a new GormWorkRepository
func NewGormWorkRepository(db *gorm.DB) *GormWorkRepository {
	return &GormWorkRepository{db: db}
}

// FindByID finds a work order by its ID
func (r *GormWorkRepository) FindByID(ctx context.Context, id uuid.UUID) (*maintenance.MaintenanceWork, error) {
	var work maintenance.MaintenanceWork
	if err := r.db.WithContext(ctx).First(&work, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &work, nil
}

// FindForUpdate loads the work order with a FOR UPDATE row lock
func (r *GormWorkRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*maintenance.MaintenanceWork, error) {
	var work maintenance.MaintenanceWork
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&work, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &work, nil
}

// FindByPlan finds all work orders under a plan
func (r *GormWorkRepository) FindByPlan(ctx context.Context, planID uuid.UUID) ([]maintenance.MaintenanceWork, error) {
	var works []maintenance.MaintenanceWork
	if err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Find(&works).Error; err != nil {
		return nil, err
	}
	return works, nil
}

// Create inserts a new work order
func (r *GormWorkRepository) Create(ctx context.Context, work *maintenance.MaintenanceWork) error {
	if err := r.db.WithContext(ctx).Create(work).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists changes to an existing work order
func (r *GormWorkRepository) Save(ctx context.Context, work *maintenance.MaintenanceWork) error {
	return r.db.WithContext(ctx).Save(work).Error
}

// FindAll lists work orders matching the filter
func (r *GormWorkRepository) FindAll(ctx context.Context, filter maintenance.WorkFilter) ([]maintenance.MaintenanceWork, error) {
	var works []maintenance.MaintenanceWork
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&maintenance.MaintenanceWork{}), filter)
	query = applyPagination(query, filter.Filter, "created_at DESC")

	if err := query.Find(&works).Error; err != nil {
		return nil, err
	}
	return works, nil
}

// Count counts work orders matching the filter
func (r *GormWorkRepository) Count(ctx context.Context, filter maintenance.WorkFilter) (int64, error) {
	var count int64
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&maintenance.MaintenanceWork{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormWorkRepository) applyPredicates(query *gorm.DB, filter maintenance.WorkFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PlanID != nil {
		query = query.Where("plan_id = ?", *filter.PlanID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	return query
}

// Ensure GormWorkRepository implements WorkRepository
var _ maintenance.WorkRepository = (*GormWorkRepository)(nil)
