package store

import "github.com/fenilsonani/carray/internal/chunk"

// Store is the capability set a CArray needs from wherever its chunks
// live: it talks to whichever backing through this interface and never
// branches on "am I in memory or on disk" itself. It operates
// on whole Chunks, not raw bytes, so the in-memory constant-chunk
// optimization (a Chunk with no compressed buffer at all) passes through
// cleanly; DiskStore never receives a constant Chunk; it would have
// nothing to serialize.
type Store interface {
	// Len returns the number of chunks currently held.
	Len() (int, error)
	// Get returns chunk i.
	Get(i int) (*chunk.Chunk, error)
	// Append adds a new chunk, returning its index.
	Append(c *chunk.Chunk) (int, error)
	// Set overwrites chunk i in place (used by slice and masked writes
	// that touch a stored chunk).
	Set(i int, c *chunk.Chunk) error
	// Pop removes and discards the last chunk, shrinking Len by one.
	Pop() error
	// Tail returns the persisted leftover/tail chunk, or nil if none has
	// been flushed yet.
	Tail() (*chunk.Chunk, error)
	// FlushTail persists the current leftover/tail chunk.
	FlushTail(c *chunk.Chunk) error
	// FreeCache releases any single-slot read cache the store holds.
	FreeCache()
	// ReadOnly reports whether mutating calls fail with ErrReadOnly.
	ReadOnly() bool
	// Close flushes any pending state and releases resources.
	Close() error
}
