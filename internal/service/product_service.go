package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iyhunko/product-catalog-api/internal/metrics"
	"github.com/iyhunko/product-catalog-api/internal/model"
	"github.com/iyhunko/product-catalog-api/internal/repository"
	"github.com/iyhunko/product-catalog-api/internal/sqs"
)

// EventPublisher publishes product change events.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event sqs.ProductEvent) error
}

// ProductService coordinates product storage with metrics and change events.
// Store outcomes, including repository.ErrNotFound, are returned unchanged.
type ProductService struct {
	repo      repository.Repository
	publisher EventPublisher
	now       func() time.Time
}

// NewProductService creates a ProductService. A nil publisher disables events.
func NewProductService(repo repository.Repository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

func (ps *ProductService) CreateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	created, err := ps.repo.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	ps.publish(ctx, sqs.ActionCreated, created)

	return created, nil
}

func (ps *ProductService) GetProduct(ctx context.Context, id string) (model.Product, error) {
	return ps.repo.FindByID(ctx, id)
}

func (ps *ProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return ps.repo.List(ctx)
}

func (ps *ProductService) UpdateProduct(ctx context.Context, id string, fields model.Product) (model.Product, error) {
	updated, err := ps.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	metrics.ProductsUpdated.Inc()
	ps.publish(ctx, sqs.ActionUpdated, updated)

	return updated, nil
}

// DeleteProduct removes the product and returns its last stored state.
func (ps *ProductService) DeleteProduct(ctx context.Context, id string) (model.Product, error) {
	deleted, err := ps.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.ProductsDeleted.Inc()
	ps.publish(ctx, sqs.ActionDeleted, deleted)

	return deleted, nil
}

// publish sends a change event without failing the caller. Cancellation is
// detached so a client disconnect after the write does not drop the event.
func (ps *ProductService) publish(ctx context.Context, action sqs.Action, product model.Product) {
	if ps.publisher == nil {
		return
	}

	event := sqs.NewProductEvent(action, product, ps.now())
	if err := ps.publisher.PublishProductEvent(context.WithoutCancel(ctx), event); err != nil {
		metrics.ProductEventsFailed.WithLabelValues(string(action)).Inc()
		// Log error but don't fail the request
		slog.Error("Failed to send SQS message", slog.Any("err", err), slog.String("action", string(action)), slog.String("product_id", event.ProductID))
	}
}
