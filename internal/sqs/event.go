package sqs

import (
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog-api/internal/model"
)

// Action names the mutation a ProductEvent reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ProductEvent is the message published after a product mutation. Product is
// the post-mutation state, or the last state for deletions.
type ProductEvent struct {
	ID         string        `json:"id"`
	Action     Action        `json:"action"`
	ProductID  string        `json:"product_id"`
	Product    model.Product `json:"product"`
	OccurredAt string        `json:"occurred_at"`
}

// NewProductEvent builds an event for the product with a fresh id.
func NewProductEvent(action Action, product model.Product, now time.Time) ProductEvent {
	id, _ := product.ID()
	return ProductEvent{
		ID:         uuid.NewString(),
		Action:     action,
		ProductID:  id,
		Product:    product,
		OccurredAt: model.FormatTimestamp(now),
	}
}
