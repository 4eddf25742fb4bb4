package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the ledger as a single JSON file, overwritten
// wholesale via a temp file and atomic rename. A process-local mutex
// serializes writers; cross-process callers should use the postgres store.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore constructs a file-backed ledger store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored ledger. A missing file is an empty ledger, not an
// error.
func (s *FileStore) Load(ctx context.Context) (Ledger, error) {
	if err := ctx.Err(); err != nil {
		return Ledger{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Ledger{}, nil
		}
		return Ledger{}, err
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return Ledger{}, err
	}
	return l, nil
}

// Save writes the full ledger back atomically.
func (s *FileStore) Save(ctx context.Context, l Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".usage_log-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

var _ Store = (*FileStore)(nil)
