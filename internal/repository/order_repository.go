package repository

import (
	"context"

	"github.com/fjod/pixelwick/internal/domain"
	"github.com/fjod/pixelwick/internal/store"
)

type OrderRepository struct {
	rec *records[domain.Order]
}

func NewOrderRepository(s store.RecordStore, report ErrorReporter) *OrderRepository {
	return &OrderRepository{rec: newRecords[domain.Order](s, store.Orders, report)}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	return r.rec.append(ctx, order)
}

func (r *OrderRepository) List(ctx context.Context) []domain.Order {
	return r.rec.list(ctx)
}
