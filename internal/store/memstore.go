package store

import (
	"sync"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
)

// MemStore is the slice-backed Store used by in-memory CArrays. The
// slice is the storage itself, not a cache in front of a file layer.
type MemStore struct {
	mu       sync.RWMutex
	chunks   []*chunk.Chunk
	tail     *chunk.Chunk
	readOnly bool
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

func (s *MemStore) Get(i int) (*chunk.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.chunks) {
		return nil, cerrors.ErrOutOfRange
	}
	return s.chunks[i], nil
}

func (s *MemStore) Append(c *chunk.Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return 0, cerrors.ErrReadOnly
	}
	s.chunks = append(s.chunks, c)
	return len(s.chunks) - 1, nil
}

func (s *MemStore) Set(i int, c *chunk.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return cerrors.ErrReadOnly
	}
	if i < 0 || i >= len(s.chunks) {
		return cerrors.ErrOutOfRange
	}
	s.chunks[i] = c
	return nil
}

func (s *MemStore) Pop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return cerrors.ErrReadOnly
	}
	if len(s.chunks) == 0 {
		return cerrors.ErrOutOfRange
	}
	s.chunks = s.chunks[:len(s.chunks)-1]
	return nil
}

func (s *MemStore) Tail() (*chunk.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tail, nil
}

func (s *MemStore) FlushTail(c *chunk.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return cerrors.ErrReadOnly
	}
	s.tail = c
	return nil
}

// FreeCache is a no-op: MemStore holds no separate read cache, the slice
// itself is the storage.
func (s *MemStore) FreeCache() {}

func (s *MemStore) ReadOnly() bool { return s.readOnly }

func (s *MemStore) Close() error { return nil }

// SetReadOnly marks the store read-only, rejecting further mutation.
func (s *MemStore) SetReadOnly(ro bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly = ro
}
