package store

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/datamapper/pkg/schema"
)

// MemoryStore keeps snapshots in process memory. Loads and saves copy, so
// callers never share a snapshot with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	roots map[string]*schema.Snapshot
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{roots: make(map[string]*schema.Snapshot)}
}

func (s *MemoryStore) Load(ctx context.Context, root string) (snap *schema.Snapshot, err error) {
	defer func(start time.Time) { observeLoad(ctx, BackendMemory, root, start, err) }(time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, ok := s.roots[root]
	if !ok {
		return nil, notFound(root)
	}
	return cur.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, root string, snap *schema.Snapshot) (err error) {
	var size int
	defer func(start time.Time) { observeSave(ctx, BackendMemory, root, size, start, err) }(time.Now())

	if err := checkRoot(root); err != nil {
		return err
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	size = len(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots[root] = snap.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roots, root)
	return nil
}

func (s *MemoryStore) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.roots)), nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
