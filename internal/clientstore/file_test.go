package clientstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/fjod/pixelwick/internal/cart"
	"github.com/fjod/pixelwick/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct{}

func (stubCatalog) Product(id int64) (domain.Product, bool) {
	if id != 1 {
		return domain.Product{}, false
	}
	return domain.Product{ID: 1, Name: "Vanilla Dream", Price: 24.99}, true
}

func TestFile(t *testing.T) {
	testStorage(t, NewFile(filepath.Join(t.TempDir(), "storage.json")))
}

func TestFile_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	f := NewFile(path)

	require.NoError(t, f.Set(context.Background(), "pixelwick_cart", []byte(`[]`)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pixelwick_cart":"[]"}`, string(raw))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFile_CorruptFileIsReplacedOnWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	f := NewFile(path)

	_, _, err := f.Get(ctx, "pixelwick_cart")
	assert.ErrorIs(t, err, ErrCorruptFile)

	require.NoError(t, f.Set(ctx, "pixelwick_cart", []byte(`[]`)))

	v, ok, err := f.Get(ctx, "pixelwick_cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(v))
}

func TestFile_CorruptFileRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not","an","object"]`), 0o644))

	require.NoError(t, NewFile(path).Remove(context.Background(), "pixelwick_cart"))
}

func TestFile_CartRecoversFromCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	first := cart.Load(ctx, NewFile(path), stubCatalog{})
	assert.Empty(t, first.Items())

	ok, err := first.AddItem(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	second := cart.Load(ctx, NewFile(path), stubCatalog{})
	require.Len(t, second.Items(), 1)
	assert.Equal(t, int64(1), second.Items()[0].ID)
}

func TestFile_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "storage.json"))

	require.NoError(t, f.Set(ctx, "a", []byte("1")))
	require.NoError(t, f.Set(ctx, "b", []byte("2")))
	require.NoError(t, f.Remove(ctx, "a"))

	v, ok, err := f.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", string(v))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "storage.json", filepath.Base(path))
	assert.Equal(t, "pixelwick", filepath.Base(filepath.Dir(path)))
}
