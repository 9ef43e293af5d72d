package persistence

import (
	"context"
	"fmt"

	"github.com/fms/backend/internal/domain/numbering"
	"gorm.io/gorm"
)

// GormSequenceGenerator implements the document number generator on top of
// the sequence_counters table. Each prefix owns one counter row; allocation
// is a single atomic upsert-increment, so two transactions can never read
// the same value. Counters only ever move forward; a rolled-back allocation
// leaves a gap in the numbering, which is acceptable.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next allocates the next number for the prefix. Safe under concurrency:
// the insert-or-increment runs as one statement and conflicting writers
// serialize on the counter row.
func (g *GormSequenceGenerator) Next(ctx context.Context, prefix string) (string, error) {
	var lastValue int64
	err := g.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (prefix, last_value, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (prefix)
		DO UPDATE SET last_value = sequence_counters.last_value + 1, updated_at = NOW()
		RETURNING last_value`, prefix).Scan(&lastValue).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate sequence for prefix %s: %w", prefix, err)
	}
	return numbering.Format(prefix, lastValue), nil
}

// Ensure GormSequenceGenerator implements Generator
var _ numbering.Generator = (*GormSequenceGenerator)(nil)
