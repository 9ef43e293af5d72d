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

// GormRequestRepository implements RequestRepository using GORM
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// FindByID finds a request by its ID
func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*maintenance.MaintenanceRequest, error) {
	var request maintenance.MaintenanceRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindForUpdate loads the request with a FOR UPDATE row lock
func (r *GormRequestRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*maintenance.MaintenanceRequest, error) {
	var request maintenance.MaintenanceRequest
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// Create inserts a new request
func (r *GormRequestRepository) Create(ctx context.Context, request *maintenance.MaintenanceRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists changes to an existing request
func (r *GormRequestRepository) Save(ctx context.Context, request *maintenance.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// FindAll lists requests matching the filter
func (r *GormRequestRepository) FindAll(ctx context.Context, filter maintenance.RequestFilter) ([]maintenance.MaintenanceRequest, error) {
	var requests []maintenance.MaintenanceRequest
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&maintenance.MaintenanceRequest{}), filter)
	query = applyPagination(query, filter.Filter, "requested_at DESC")

	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Count counts requests matching the filter
func (r *GormRequestRepository) Count(ctx context.Context, filter maintenance.RequestFilter) (int64, error) {
	var count int64
	query := r.applyPredicates(r.db.WithContext(ctx).Model(&maintenance.MaintenanceRequest{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRequestRepository) applyPredicates(query *gorm.DB, filter maintenance.RequestFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.EquipmentID != nil {
		query = query.Where("equipment_id = ?", *filter.EquipmentID)
	}
	return query
}

// Ensure GormRequestRepository implements RequestRepository
var _ maintenance.RequestRepository = (*GormRequestRepository)(nil)
