// Package repository gives typed access to the storefront tables.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/pixelwick/internal/store"
	"github.com/rs/zerolog"
)

var ErrProductNotFound = errors.New("product not found")

const (
	OpRead  = "read"
	OpWrite = "write"
)

// ErrorReporter is told about every storage failure that was degraded
// instead of returned.
type ErrorReporter func(table store.Table, op string, err error)

// LogReporter writes degraded storage failures to logger.
func LogReporter(logger zerolog.Logger) ErrorReporter {
	return func(table store.Table, op string, err error) {
		logger.Error().Err(err).Str("table", string(table)).Str("op", op).Msg("storage error")
	}
}

// records is the shared read/append logic for one table. Appends are a full
// read-modify-write, so they are serialized per table.
type records[T any] struct {
	store  store.RecordStore
	table  store.Table
	report ErrorReporter

	mu sync.Mutex
}

func newRecords[T any](s store.RecordStore, table store.Table, report ErrorReporter) *records[T] {
	if report == nil {
		report = func(store.Table, string, error) {}
	}
	return &records[T]{store: s, table: table, report: report}
}

// list decodes every record, skipping the ones that do not match T.
func (r *records[T]) list(ctx context.Context) []T {
	raw, err := r.store.ReadAll(ctx, r.table)
	if err != nil {
		r.report(r.table, OpRead, err)
	}

	out := make([]T, 0, len(raw))
	for i, rec := range raw {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			r.report(r.table, OpRead, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// append adds v at the end of the table. Records already stored are written
// back untouched, including ones this version cannot decode. A table that
// cannot be read is treated as empty.
func (r *records[T]) append(ctx context.Context, v T) error {
	rec, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", r.table, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.store.ReadAll(ctx, r.table)
	if err != nil {
		r.report(r.table, OpRead, err)
	}

	raw = append(raw, rec)
	if err := r.store.WriteAll(ctx, r.table, raw); err != nil {
		r.report(r.table, OpWrite, err)
		return fmt.Errorf("write %s: %w", r.table, err)
	}
	return nil
}

// fillIfEmpty writes vs only when the table reads successfully and is empty.
func (r *records[T]) fillIfEmpty(ctx context.Context, vs []T) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.store.ReadAll(ctx, r.table)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", r.table, err)
	}
	if len(raw) > 0 {
		return false, nil
	}

	out := make([]json.RawMessage, 0, len(vs))
	for _, v := range vs {
		rec, err := json.Marshal(v)
		if err != nil {
			return false, fmt.Errorf("marshal %s record: %w", r.table, err)
		}
		out = append(out, rec)
	}
	if err := r.store.WriteAll(ctx, r.table, out); err != nil {
		return false, fmt.Errorf("write %s: %w", r.table, err)
	}
	return true, nil
}
