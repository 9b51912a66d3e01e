package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// OrderRecord is the local receipt of a placed order. ID is the id the
// server assigned.
type OrderRecord struct {
	ID    int64      `json:"id"`
	Date  time.Time  `json:"date"`
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
}

// ContactRecord is the local copy of a sent contact form.
type ContactRecord struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Orders returns the local order history, oldest first.
func Orders(ctx context.Context, storage Storage) ([]OrderRecord, error) {
	return readHistory[OrderRecord](ctx, storage, KeyOrders)
}

// Contacts returns the contact forms sent from this client, oldest first.
func Contacts(ctx context.Context, storage Storage) ([]ContactRecord, error) {
	return readHistory[ContactRecord](ctx, storage, KeyContacts)
}

func RecordContact(ctx context.Context, storage Storage, rec ContactRecord) error {
	return appendHistory(ctx, storage, KeyContacts, rec)
}

// readHistory treats an undecodable history as empty, like a saved cart.
func readHistory[T any](ctx context.Context, storage Storage, key string) ([]T, error) {
	raw, ok, err := storage.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	out := []T{}
	if !ok {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []T{}, nil
	}
	return out, nil
}

func appendHistory[T any](ctx context.Context, storage Storage, key string, v T) error {
	list, err := readHistory[T](ctx, storage, key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(append(list, v))
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := storage.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
