package repository

import (
	"context"
	"errors"

	"github.com/iyhunko/product-catalog-api/internal/model"
)

var (
	// ErrNotFound is returned when no product exists for the requested id.
	ErrNotFound = errors.New("product not found")

	// ErrMissingID is returned by Create when the product has no id field.
	ErrMissingID = errors.New("product ID is required")

	// ErrInvalidID is returned by Create when the id is not a non-empty string.
	ErrInvalidID = errors.New("product ID must be a non-empty string")
)

// Repository defines the storage operations for products.
type Repository interface {
	Create(ctx context.Context, product model.Product) (model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, id string, fields model.Product) (model.Product, error)
	DeleteByID(ctx context.Context, id string) (model.Product, error) // returns the deleted snapshot
}

// StorageError represents a failure reported by the underlying store.
// Message is the store's own description, surfaced to API clients.
type StorageError struct {
	Op      string
	Message string
	Err     error
}

// NewStorageError wraps err as a StorageError for the given operation.
func NewStorageError(op, message string, err error) *StorageError {
	if message == "" {
		message = err.Error()
	}
	return &StorageError{Op: op, Message: message, Err: err}
}

func (e *StorageError) Error() string {
	return "dynamodb error: " + e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
