package clientstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

var ErrCorruptFile = errors.New("storage file is not a JSON object of strings")

// File keeps every key in one JSON object on disk, {"key": "value", ...}.
// Values are stored as strings, the way browser localStorage holds them.
//
// A file that does not decode fails reads, and is replaced by the next
// write.
type File struct {
	path   string
	logger zerolog.Logger
	mu     sync.Mutex
}

type FileOption func(*File)

func WithLogger(l zerolog.Logger) FileOption {
	return func(f *File) { f.logger = l }
}

func NewFile(path string, opts ...FileOption) *File {
	f := &File{path: path, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultPath is $XDG_DATA_HOME/pixelwick/storage.json. The directory is
// created if needed.
func DefaultPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join("pixelwick", "storage.json"))
	if err != nil {
		return "", fmt.Errorf("resolve storage path: %w", err)
	}
	return path, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := data[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.loadForWrite()
	if err != nil {
		return err
	}
	data[key] = string(value)
	return f.store(data)
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.store(data)
}

// load returns an empty map when the file does not exist yet.
func (f *File) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptFile, f.path, err)
	}
	if data == nil {
		data = map[string]string{}
	}
	return data, nil
}

// loadForWrite starts from an empty object when the file is corrupt, so the
// write that follows replaces it.
func (f *File) loadForWrite() (map[string]string, error) {
	data, err := f.load()
	if errors.Is(err, ErrCorruptFile) {
		f.logger.Warn().Err(err).Msg("replacing corrupt storage file")
		return map[string]string{}, nil
	}
	return data, err
}

func (f *File) store(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
