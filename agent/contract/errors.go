package contract

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrSchemaViolation   = errors.New("model response violates schema")
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrMalformedOrderID  = errors.New("malformed order id")
	ErrOrderNotFound     = errors.New("order not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrCollaborator      = errors.New("collaborator unavailable")
)
