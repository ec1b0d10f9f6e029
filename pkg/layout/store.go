package layout

import (
	"context"
	"sync"

	"github.com/matzehuels/gridboard/pkg/errors"
)

// Store is the persistence collaborator for grid layouts.
//
// Implementations must treat SavePositions as an idempotent batch: the
// updates carry the complete desired rectangles, so replaying a batch
// after a failure converges to the same state.
type Store interface {
	// Load returns the layout stored under gridID.
	// Fails with UNKNOWN_GRID when no layout exists.
	Load(ctx context.Context, gridID string) (Layout, error)

	// SaveLayout replaces the full layout stored under gridID.
	SaveLayout(ctx context.Context, gridID string, l Layout) error

	// SavePositions merges a batch of position updates into the stored
	// layout. Fails with UNKNOWN_GRID when no layout exists.
	SavePositions(ctx context.Context, gridID string, updates []Position) error

	// Delete removes the layout stored under gridID, if any.
	Delete(ctx context.Context, gridID string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore is an in-process Store for tests and the demo TUI.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string]Layout)}
}

// Load returns the layout stored under gridID.
func (s *MemoryStore) Load(ctx context.Context, gridID string) (Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.layouts[gridID]
	if !ok {
		return Layout{}, errors.New(errors.ErrCodeUnknownGrid, "no layout for grid %q", gridID)
	}
	return l, nil
}

// SaveLayout replaces the stored layout.
func (s *MemoryStore) SaveLayout(ctx context.Context, gridID string, l Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layouts[gridID] = l
	return nil
}

// SavePositions merges updates into the stored layout.
func (s *MemoryStore) SavePositions(ctx context.Context, gridID string, updates []Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.layouts[gridID]
	if !ok {
		return errors.New(errors.ErrCodeUnknownGrid, "no layout for grid %q", gridID)
	}
	s.layouts[gridID] = l.Merge(updates)
	return nil
}

// Delete removes the stored layout, if any.
func (s *MemoryStore) Delete(ctx context.Context, gridID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.layouts, gridID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
