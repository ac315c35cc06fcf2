package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
)

// DiskStore is the file-backed Store: one __<i>.blp file per chunk, in
// order, with no gaps, written header-first with an atomic
// temp-file-then-rename per file. The chunk count is recorded in memory
// after a one-time directory scan; a single-slot cache avoids re-reading
// the most recently fetched chunk. Disk-backed chunks never carry the
// constant-chunk optimization, so every chunk handed to
// Append/Set/FlushTail is required to carry real compressed bytes.
type DiskStore struct {
	root     string
	readOnly bool
	elemType chunk.ElementType
	chunkLen int

	mu    sync.RWMutex
	count int64 // -1 until resolved by a directory scan
	cache struct {
		idx int
		c   *chunk.Chunk
	}
}

// OpenDiskStore opens (creating the directory if necessary, unless
// readOnly) a DiskStore whose chunk files live directly under dir,
// holding chunks of the given element type and nominal chunk length.
func OpenDiskStore(dir string, readOnly bool, elemType chunk.ElementType, chunkLen int) (*DiskStore, error) {
	s := &DiskStore{root: dir, readOnly: readOnly, elemType: elemType, chunkLen: chunkLen, count: -1}
	s.cache.idx = -1

	if !readOnly {
		if err := os.MkdirAll(s.dataDir(), 0o755); err != nil {
			return nil, fmt.Errorf("creating chunk store: %w", err)
		}
	}
	return s, nil
}

func (s *DiskStore) dataDir() string {
	return s.root
}

func (s *DiskStore) chunkPath(i int) string {
	return filepath.Join(s.dataDir(), fmt.Sprintf("__%d.blp", i))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// SetCount fixes the chunk count from metadata instead of a directory
// scan. Reopening a flushed array must use this: the probe in
// resolveCount cannot tell the last real chunk file from a flushed tail
// file sitting one slot past it.
func (s *DiskStore) SetCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = int64(n)
}

// resolveCount returns the current chunk count, scanning the data
// directory once (by probing __0.blp, __1.blp, … until one is missing) if
// the count has not yet been determined this session.
func (s *DiskStore) resolveCount() (int64, error) {
	if s.count >= 0 {
		return s.count, nil
	}
	n := int64(0)
	for {
		if _, err := os.Stat(s.chunkPath(int(n))); err != nil {
			break
		}
		n++
	}
	s.count = n
	return n, nil
}

func (s *DiskStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.resolveCount()
	return int(n), err
}

// readChunkFile reads and validates the chunk file at index i, returning
// its codec self-describing payload bytes. The trailing xxhash64
// checksum (written right after the pack header) is verified against the
// payload before it is handed back, so a bit-flipped chunk file surfaces
// as ErrCorruptBuffer instead of silently decompressing garbage.
func (s *DiskStore) readChunkFile(i int) ([]byte, error) {
	raw, err := os.ReadFile(s.chunkPath(i))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("reading chunk %d: %w", i, err)
	}
	if len(raw) < headerLen+checksumLen {
		return nil, cerrors.ErrCorruptBuffer
	}
	if _, err := decodePackHeader(raw); err != nil {
		return nil, err
	}
	sum := raw[headerLen : headerLen+checksumLen]
	payload := raw[headerLen+checksumLen:]
	if !verifyChecksum(sum, payload) {
		return nil, cerrors.ErrCorruptBuffer
	}
	return payload, nil
}

func (s *DiskStore) Get(i int) (*chunk.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.resolveCount()
	if err != nil {
		return nil, err
	}
	if i < 0 || int64(i) >= n {
		return nil, cerrors.ErrOutOfRange
	}
	if s.cache.idx == i {
		return s.cache.c, nil
	}

	payload, err := s.readChunkFile(i)
	if err != nil {
		if err == os.ErrNotExist {
			return nil, cerrors.ErrOutOfRange
		}
		return nil, err
	}
	c, err := chunk.FromCompressedBytes(payload, s.elemType, s.chunkLen)
	if err != nil {
		return nil, err
	}
	s.cache.idx = i
	s.cache.c = c
	return c, nil
}

func (s *DiskStore) writeChunkFile(i int, c *chunk.Chunk) error {
	if c.IsConstant || c.Compressed == nil {
		return cerrors.ErrInvalidArgument
	}
	if err := os.MkdirAll(s.dataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	header := encodePackHeader(packHeader{version: packFormatVersion, nchunks: 1})
	sum := encodeChecksum(c.Compressed)
	full := make([]byte, 0, len(header)+len(sum)+len(c.Compressed))
	full = append(full, header...)
	full = append(full, sum...)
	full = append(full, c.Compressed...)
	return writeFileAtomic(s.chunkPath(i), full)
}

func (s *DiskStore) Append(c *chunk.Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return 0, cerrors.ErrReadOnly
	}
	n, err := s.resolveCount()
	if err != nil {
		return 0, err
	}
	idx := int(n)
	if err := s.writeChunkFile(idx, c); err != nil {
		return 0, err
	}
	s.count = n + 1
	return idx, nil
}

func (s *DiskStore) Set(i int, c *chunk.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return cerrors.ErrReadOnly
	}
	n, err := s.resolveCount()
	if err != nil {
		return err
	}
	if i < 0 || int64(i) >= n {
		return cerrors.ErrOutOfRange
	}
	if err := s.writeChunkFile(i, c); err != nil {
		return err
	}
	if s.cache.idx == i {
		s.cache.idx = -1
		s.cache.c = nil
	}
	return nil
}

// Pop removes the last real chunk, plus a stale flushed-tail file at the
// old count's slot if FlushTail left one there: that index is no longer a
// valid tail position once the count changes.
func (s *DiskStore) Pop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return cerrors.ErrReadOnly
	}
	n, err := s.resolveCount()
	if err != nil {
		return err
	}
	if n == 0 {
		return cerrors.ErrOutOfRange
	}
	last := int(n - 1)
	if err := os.Remove(s.chunkPath(last)); err != nil {
		return fmt.Errorf("removing chunk %d: %w", last, err)
	}
	os.Remove(s.chunkPath(int(n))) // stale tail, if any; absence is fine

	if s.cache.idx == last || s.cache.idx == int(n) {
		s.cache.idx = -1
		s.cache.c = nil
	}
	s.count = n - 1
	return nil
}

// Tail reads back the leftover buffer's chunk file, written by FlushTail
// at index nchunks without incrementing the counted length. Absence
// (nothing flushed yet) is not an error: it reads back as nil.
func (s *DiskStore) Tail() (*chunk.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.resolveCount()
	if err != nil {
		return nil, err
	}
	payload, err := s.readChunkFile(int(n))
	if err != nil {
		if err == os.ErrNotExist {
			return nil, nil
		}
		return nil, err
	}
	return chunk.FromCompressedBytes(payload, s.elemType, s.chunkLen)
}

// FlushTail writes the leftover buffer's chunk to __<nchunks>.blp, the
// slot one past the last real chunk, without incrementing the counted
// chunk length.
func (s *DiskStore) FlushTail(c *chunk.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return cerrors.ErrReadOnly
	}
	n, err := s.resolveCount()
	if err != nil {
		return err
	}
	return s.writeChunkFile(int(n), c)
}

func (s *DiskStore) FreeCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.idx = -1
	s.cache.c = nil
}

func (s *DiskStore) ReadOnly() bool { return s.readOnly }

func (s *DiskStore) Close() error { return nil }
