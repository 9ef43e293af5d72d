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

// GormPlanRepository implements PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by its ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*maintenance.MaintenancePlan, error) {
	var plan maintenance.MaintenancePlan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindForUpdate loads the plan with a FOR UPDATE row lock
func (r *GormPlanRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*maintenance.MaintenancePlan, error) {
	var plan maintenance.MaintenancePlan
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindByRequest finds all plans referencing a request
func (r *GormPlanRepository) FindByRequest(ctx context.Context, requestID uuid.UUID) ([]maintenance.MaintenancePlan, error) {
	var plans []maintenance.MaintenancePlan
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Create inserts a new plan
func (r *GormPlanRepository) Create(ctx context.Context, plan *maintenance.MaintenancePlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists changes to an existing plan
func (r *GormPlanRepository) Save(ctx context.Context, plan *maintenance.MaintenancePlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// FindAll lists plans matching the filter
func (r *GormPlanRepository) FindAll(ctx context.Context, filter maintenance.PlanFilter) ([]maintenance.MaintenancePlan, error) {
	var plans []maintenance.MaintenancePlan
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&maintenance.MaintenancePlan{}), filter)
	query = applyPagination(query, filter.Filter, "created_at DESC")

	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Count counts plans matching the filter
func (r *GormPlanRepository) Count(ctx context.Context, filter maintenance.PlanFilter) (int64, error) {
	var count int64
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&maintenance.MaintenancePlan{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormPlanRepository) applyPredicates(query *gorm.DB, filter maintenance.PlanFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RequestID != nil {
		query = query.Where("request_id = ?", *filter.RequestID)
	}
	return query
}

// Ensure GormPlanRepository implements PlanRepository
var _ maintenance.PlanRepository = (*GormPlanRepository)(nil)
