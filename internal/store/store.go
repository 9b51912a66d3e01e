// Package store persists ordered collections of JSON records, one collection
// per table.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

type Table string

const (
	Products Table = "products"
	Orders   Table = "orders"
	Contacts Table = "contacts"
)

// Tables lists every table the storefront uses.
func Tables() []Table {
	return []Table{Products, Orders, Contacts}
}

var (
	ErrCorruptTable = errors.New("table contents are not a JSON array")
	ErrUnknownTable = errors.New("table does not exist")
	ErrInvalidTable = errors.New("invalid table name")
	ErrInvalidData  = errors.New("record is not valid JSON")
)

// RecordStore is the persistence contract shared by every backend.
//
// ReadAll never returns a nil slice: on failure it hands back an empty slice
// together with the error so callers can keep serving.
type RecordStore interface {
	// Initialize creates an empty collection for every table that does not exist.
	Initialize(ctx context.Context, tables ...Table) error
	ReadAll(ctx context.Context, table Table) ([]json.RawMessage, error)
	// WriteAll replaces the whole table with records in a single step.
	WriteAll(ctx context.Context, table Table, records []json.RawMessage) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

type Config struct {
	Driver     string
	DataDir    string
	SQLitePath string
}

// Open builds the backend selected by cfg.Driver.
func Open(cfg Config) (RecordStore, error) {
	switch cfg.Driver {
	case "", DriverFile:
		return NewFileStore(cfg.DataDir), nil
	case DriverSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

var tableName = regexp.MustCompile(`^[a-z0-9_-]+$`)

func validate(table Table) error {
	if !tableName.MatchString(string(table)) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}

func empty() []json.RawMessage {
	return make([]json.RawMessage, 0)
}
