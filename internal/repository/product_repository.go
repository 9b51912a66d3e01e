package repository

import (
	"context"

	"github.com/fjod/pixelwick/internal/domain"
	"github.com/fjod/pixelwick/internal/store"
)

type ProductRepository struct {
	rec *records[domain.Product]
}

func NewProductRepository(s store.RecordStore, report ErrorReporter) *ProductRepository {
	return &ProductRepository{rec: newRecords[domain.Product](s, store.Products, report)}
}

func (r *ProductRepository) List(ctx context.Context) []domain.Product {
	return r.rec.list(ctx)
}

// Get returns the first product with the given id.
func (r *ProductRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	for _, p := range r.rec.list(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

// Seed stores products when the products table is empty and reports whether
// anything was written.
func (r *ProductRepository) Seed(ctx context.Context, products []domain.Product) (bool, error) {
	return r.rec.fillIfEmpty(ctx, products)
}
