package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_InitializeWritesEmptyArrayFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := NewFileStore(dir)

	require.NoError(t, s.Initialize(context.Background(), Tables()...))

	for _, table := range Tables() {
		data, err := os.ReadFile(filepath.Join(dir, string(table)+".json"))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	}
}

func TestFileStore_InitializeKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":7}]`), 0o644))

	s := NewFileStore(dir)
	require.NoError(t, s.Initialize(context.Background(), Orders))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":7}]`, string(data))
}

func TestFileStore_WriteAllPrettyPrints(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, s.WriteAll(ctx, Contacts, []json.RawMessage{json.RawMessage(`{"id":1}`)}))

	data, err := os.ReadFile(filepath.Join(dir, "contacts.json"))
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"id\": 1\n  }\n]", string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStore_ReadAllCorruptFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(`{not json`), 0o644))
	s := NewFileStore(dir)

	records, err := s.ReadAll(context.Background(), Orders)

	assert.ErrorIs(t, err, ErrCorruptTable)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFileStore_ReadAllObjectIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(`{"id":1}`), 0o644))
	s := NewFileStore(dir)

	records, err := s.ReadAll(context.Background(), Orders)

	assert.ErrorIs(t, err, ErrCorruptTable)
	assert.Empty(t, records)
}

func TestFileStore_ReadAllMissingFile(t *testing.T) {
	s := NewFileStore(t.TempDir())

	records, err := s.ReadAll(context.Background(), Products)

	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFileStore_ReadAllNullIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte(`null`), 0o644))
	s := NewFileStore(dir)

	records, err := s.ReadAll(context.Background(), Orders)

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestFileStore_ReadAllCallersGetIndependentSlices(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, s.WriteAll(ctx, Orders, []json.RawMessage{json.RawMessage(`{"id":1}`)}))

	first, err := s.ReadAll(ctx, Orders)
	require.NoError(t, err)
	first[0] = json.RawMessage(`{"id":99}`)

	second, err := s.ReadAll(ctx, Orders)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(second[0]))
}

func TestFileStore_ReadAfterWriteSeesNewContents(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx, Orders))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.ReadAll(ctx, Orders)
		}()
	}

	require.NoError(t, s.WriteAll(ctx, Orders, []json.RawMessage{json.RawMessage(`{"id":1}`)}))
	records, err := s.ReadAll(ctx, Orders)
	wg.Wait()

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFileStore_CancelledContext(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, err := s.ReadAll(ctx, Orders)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records)

	assert.ErrorIs(t, s.WriteAll(ctx, Orders, nil), context.Canceled)
}
