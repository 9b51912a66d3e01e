package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FileStore keeps every table as a pretty-printed JSON array in
// <dir>/<table>.json.
type FileStore struct {
	dir string
	sfg singleflight.Group // coalesces concurrent reads of one table

	mu          sync.Mutex
	generations map[Table]uint64
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:         dir,
		generations: make(map[Table]uint64),
	}
}

func (s *FileStore) path(table Table) string {
	return filepath.Join(s.dir, string(table)+".json")
}

func (s *FileStore) Initialize(_ context.Context, tables ...Table) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	for _, table := range tables {
		if err := validate(table); err != nil {
			return err
		}
		_, err := os.Stat(s.path(table))
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", table, err)
		}
		if err := s.replace(table, []byte("[]")); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) ReadAll(ctx context.Context, table Table) ([]json.RawMessage, error) {
	if err := validate(table); err != nil {
		return empty(), err
	}
	if err := ctx.Err(); err != nil {
		return empty(), err
	}

	// A write bumps the generation, so a read that started before the write
	// is never shared with a caller that arrives after it.
	key := fmt.Sprintf("%s#%d", table, s.generation(table))
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		return s.read(table)
	})
	if err != nil {
		return empty(), err
	}

	shared := v.([]json.RawMessage)
	records := make([]json.RawMessage, len(shared))
	copy(records, shared)
	return records, nil
}

func (s *FileStore) read(table Table) ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path(table))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptTable, table, err)
	}
	if records == nil {
		// the file held a JSON null
		records = empty()
	}
	return records, nil
}

func (s *FileStore) WriteAll(ctx context.Context, table Table, records []json.RawMessage) error {
	if err := validate(table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = empty()
	}
	for i, r := range records {
		if !json.Valid(r) {
			return fmt.Errorf("%w: %s[%d]", ErrInvalidData, table, i)
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", table, err)
	}
	return s.replace(table, data)
}

// replace writes data to a temp file next to the table and renames it over
// the old one, so readers see either the previous or the new contents.
func (s *FileStore) replace(table Table, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, string(table)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", table, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", table, err)
	}
	if err := os.Rename(tmpName, s.path(table)); err != nil {
		return fmt.Errorf("replace %s: %w", table, err)
	}

	s.mu.Lock()
	s.generations[table]++
	s.mu.Unlock()
	return nil
}

func (s *FileStore) generation(table Table) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[table]
}

func (s *FileStore) Close() error {
	return nil
}
