package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidQuantity   = NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrSameWarehouse     = NewDomainError("SAME_WAREHOUSE", "Source and destination warehouse must differ")
	ErrInvalidTransition = NewDomainError("INVALID_TRANSITION", "Status transition not allowed")
	ErrSequenceConflict  = NewDomainError("SEQUENCE_CONFLICT", "Could not allocate a unique document number")
)
