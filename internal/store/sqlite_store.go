package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps tables as ordered rows of a single records table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" would otherwise get its own database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Initialize(ctx context.Context, tables ...Table) error {
	for _, table := range tables {
		if err := validate(table); err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO record_tables (name) VALUES (?)`, string(table)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ReadAll(ctx context.Context, table Table) ([]json.RawMessage, error) {
	if err := validate(table); err != nil {
		return empty(), err
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM record_tables WHERE name = ?`, string(table)).Scan(&exists)
	if err != nil {
		return empty(), fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	if exists == 0 {
		return empty(), fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM records WHERE table_name = ? ORDER BY position`, string(table))
	if err != nil {
		return empty(), fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	records := empty()
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return empty(), fmt.Errorf("failed to scan %s record: %w", table, err)
		}
		if !json.Valid([]byte(body)) {
			return empty(), fmt.Errorf("%w: %s", ErrCorruptTable, table)
		}
		records = append(records, json.RawMessage(body))
	}

	if err := rows.Err(); err != nil {
		return empty(), fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func (s *SQLiteStore) WriteAll(ctx context.Context, table Table, records []json.RawMessage) error {
	if err := validate(table); err != nil {
		return err
	}
	for i, r := range records {
		if !json.Valid(r) {
			return fmt.Errorf("%w: %s[%d]", ErrInvalidData, table, i)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO record_tables (name) VALUES (?)`, string(table)); err != nil {
		return fmt.Errorf("failed to register table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE table_name = ?`, string(table)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (table_name, position, body) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, string(table), i, string(r)); err != nil {
			return fmt.Errorf("failed to insert %s[%d]: %w", table, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
