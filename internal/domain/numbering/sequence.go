// Package numbering produces unique, prefix-scoped, human-readable document
// numbers for business transactions and maintenance documents.
package numbering

import (
	"context"
	"fmt"
	"time"
)

// Document number prefixes. Stock transactions are scoped per day, the
// maintenance documents per month.
const (
	transactionPrefix = "TXN"
	requestPrefix     = "REQ"
	planPrefix        = "PLN"
	workPrefix        = "WRK"
)

// SequenceCounter is the persistent per-prefix counter. The counter row is
// incremented atomically so that two concurrent callers can never observe
// the same value; gaplessness is not guaranteed (a rolled-back transaction
// may consume a number).
type SequenceCounter struct {
	Prefix    string    `gorm:"type:varchar(20);primary_key"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}

// Generator allocates the next document number for a prefix. Implementations
// must tolerate concurrent callers on the same prefix without issuing
// duplicates; a plain read-max-then-increment does not qualify.
type Generator interface {
	// Next returns prefix + zero-padded 4-digit sequence, never issued
	// before for that prefix. Must run inside the caller's transaction so
	// the allocation commits or rolls back with the business mutation.
	Next(ctx context.Context, prefix string) (string, error)
}

// Format renders a document number from a prefix and a sequence value
func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// TransactionPrefix returns the day-scoped prefix for stock transaction numbers,
// e.g. TXN20250115
func TransactionPrefix(t time.Time) string {
	return transactionPrefix + t.Format("20060102")
}

// RequestPrefix returns the month-scoped prefix for maintenance request numbers,
// e.g. REQ202501
func RequestPrefix(t time.Time) string {
	return requestPrefix + t.Format("200601")
}

// PlanPrefix returns the month-scoped prefix for maintenance plan numbers
func PlanPrefix(t time.Time) string {
	return planPrefix + t.Format("200601")
}

// WorkPrefix returns the month-scoped prefix for maintenance work numbers
func WorkPrefix(t time.Time) string {
	return workPrefix + t.Format("200601")
}
