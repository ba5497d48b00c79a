package memory

import (
	"context"
	"sync"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore"
)

// Store keeps entries in a process-local map.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, kvstore.ErrNotFound
	}
	return clone(v), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = clone(value)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Update holds the write lock for the whole of fn and applies buffered
// writes only when fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx kvstore.Tx) error, _ ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{parent: s, writes: make(map[string][]byte), deletes: make(map[string]bool)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for k := range tx.deletes {
		delete(s.entries, k)
	}
	for k, v := range tx.writes {
		s.entries[k] = v
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

type memTx struct {
	parent  *Store
	writes  map[string][]byte
	deletes map[string]bool
}

func (t *memTx) Get(_ context.Context, key string) ([]byte, error) {
	if t.deletes[key] {
		return nil, kvstore.ErrNotFound
	}
	if v, ok := t.writes[key]; ok {
		return clone(v), nil
	}
	v, ok := t.parent.entries[key]
	if !ok {
		return nil, kvstore.ErrNotFound
	}
	return clone(v), nil
}

func (t *memTx) Set(_ context.Context, key string, value []byte) error {
	delete(t.deletes, key)
	t.writes[key] = clone(value)
	return nil
}

func (t *memTx) Delete(_ context.Context, key string) error {
	delete(t.writes, key)
	t.deletes[key] = true
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ kvstore.Store = (*Store)(nil)
