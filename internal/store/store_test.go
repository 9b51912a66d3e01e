package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends runs the same contract against every RecordStore implementation.
func backends(t *testing.T) map[string]RecordStore {
	sqliteStore, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, sqliteStore.RunMigrations())
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]RecordStore{
		"file":   NewFileStore(t.TempDir()),
		"sqlite": sqliteStore,
	}
}

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}

func TestRecordStore_InitializeCreatesEmptyTables(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Initialize(ctx, Tables()...))

			for _, table := range Tables() {
				records, err := s.ReadAll(ctx, table)
				require.NoError(t, err)
				assert.NotNil(t, records)
				assert.Empty(t, records)
			}
		})
	}
}

func TestRecordStore_InitializeIsIdempotent(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Initialize(ctx, Orders))
			require.NoError(t, s.WriteAll(ctx, Orders, []json.RawMessage{raw(`{"id":1}`)}))

			require.NoError(t, s.Initialize(ctx, Orders))

			records, err := s.ReadAll(ctx, Orders)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.JSONEq(t, `{"id":1}`, string(records[0]))
		})
	}
}

func TestRecordStore_WriteAllReplacesInOrder(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Initialize(ctx, Contacts))

			require.NoError(t, s.WriteAll(ctx, Contacts, []json.RawMessage{
				raw(`{"id":1}`), raw(`{"id":2}`), raw(`{"id":3}`),
			}))
			require.NoError(t, s.WriteAll(ctx, Contacts, []json.RawMessage{
				raw(`{"id":3}`), raw(`{"id":1}`),
			}))

			records, err := s.ReadAll(ctx, Contacts)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.JSONEq(t, `{"id":3}`, string(records[0]))
			assert.JSONEq(t, `{"id":1}`, string(records[1]))
		})
	}
}

func TestRecordStore_WriteAllNilClearsTable(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Initialize(ctx, Orders))
			require.NoError(t, s.WriteAll(ctx, Orders, []json.RawMessage{raw(`{"id":1}`)}))

			require.NoError(t, s.WriteAll(ctx, Orders, nil))

			records, err := s.ReadAll(ctx, Orders)
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestRecordStore_WriteAllRejectsInvalidJSON(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Initialize(ctx, Orders))
			require.NoError(t, s.WriteAll(ctx, Orders, []json.RawMessage{raw(`{"id":1}`)}))

			err := s.WriteAll(ctx, Orders, []json.RawMessage{raw(`{"id":`)})
			assert.ErrorIs(t, err, ErrInvalidData)

			records, err := s.ReadAll(ctx, Orders)
			require.NoError(t, err)
			assert.Len(t, records, 1, "failed write must not touch the table")
		})
	}
}

func TestRecordStore_InvalidTableName(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			err := s.Initialize(ctx, Table("../etc"))
			assert.ErrorIs(t, err, ErrInvalidTable)

			records, err := s.ReadAll(ctx, Table("a/b"))
			assert.ErrorIs(t, err, ErrInvalidTable)
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestOpen_SelectsBackend(t *testing.T) {
	s, err := Open(Config{Driver: DriverFile, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(Config{Driver: DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(Config{Driver: "mongo"})
	assert.ErrorContains(t, err, "unknown store driver")
}
