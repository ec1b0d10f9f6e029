package layout

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/gridboard/pkg/errors"
)

// FileStore persists layouts as JSON files in a directory, one file per
// grid. Suited to CLI usage where a single process owns the files.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file-based store in dir, creating it if needed.
// An empty dir defaults to ~/.config/gridboard/layouts/.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "get home dir")
		}
		dir = filepath.Join(home, ".config", "gridboard", "layouts")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create layout dir")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(gridID string) string {
	return filepath.Join(s.dir, gridID+".json")
}

// Load reads the layout file for gridID.
func (s *FileStore) Load(ctx context.Context, gridID string) (Layout, error) {
	if err := errors.ValidateGridID(gridID); err != nil {
		return Layout{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(gridID))
	if os.IsNotExist(err) {
		return Layout{}, errors.New(errors.ErrCodeUnknownGrid, "no layout for grid %q", gridID)
	}
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeStore, err, "read layout %s", gridID)
	}
	return Unmarshal(data)
}

// SaveLayout writes the full layout file for gridID.
func (s *FileStore) SaveLayout(ctx context.Context, gridID string, l Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(gridID, l)
}

// SavePositions merges updates into the stored layout file.
func (s *FileStore) SavePositions(ctx context.Context, gridID string, updates []Position) error {
	if err := errors.ValidateGridID(gridID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(gridID))
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeUnknownGrid, "no layout for grid %q", gridID)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "read layout %s", gridID)
	}
	l, err := Unmarshal(data)
	if err != nil {
		return err
	}
	return s.write(gridID, l.Merge(updates))
}

func (s *FileStore) write(gridID string, l Layout) error {
	if err := errors.ValidateGridID(gridID); err != nil {
		return err
	}
	data, err := l.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode layout %s", gridID)
	}
	if err := os.WriteFile(s.path(gridID), data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write layout %s", gridID)
	}
	return nil
}

// Delete removes the layout file, if any.
func (s *FileStore) Delete(ctx context.Context, gridID string) error {
	if err := errors.ValidateGridID(gridID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(gridID))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete layout %s", gridID)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }
