package repository

import (
	"context"

	"github.com/fjod/pixelwick/internal/domain"
	"github.com/fjod/pixelwick/internal/store"
)

type ContactRepository struct {
	rec *records[domain.ContactSubmission]
}

func NewContactRepository(s store.RecordStore, report ErrorReporter) *ContactRepository {
	return &ContactRepository{rec: newRecords[domain.ContactSubmission](s, store.Contacts, report)}
}

func (r *ContactRepository) Create(ctx context.Context, c domain.ContactSubmission) error {
	return r.rec.append(ctx, c)
}

func (r *ContactRepository) List(ctx context.Context) []domain.ContactSubmission {
	return r.rec.list(ctx)
}
