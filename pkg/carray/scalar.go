package carray

import "github.com/fenilsonani/carray/internal/cerrors"

// GetAt decompresses one atom at logical row p into dst, consulting the
// block cache for non-tail rows.
func (a *CArray) GetAt(p int, dst []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.isObjectKind() {
		return cerrors.ErrNotSupported
	}
	n, err := a.lenLocked()
	if err != nil {
		return err
	}
	if p < 0 || p >= n {
		return cerrors.ErrOutOfRange
	}
	atomSize := a.atomSize()
	if len(dst) != atomSize {
		return cerrors.ErrInvalidArgument
	}

	nchunk := p / a.chunkLen
	offsetInChunk := p % a.chunkLen

	nchunks, err := a.nchunks()
	if err != nil {
		return err
	}
	if nchunk >= nchunks {
		// Falls in the tail.
		off := offsetInChunk * atomSize
		copy(dst, a.leftover[off:off+atomSize])
		return nil
	}

	c, err := a.store.Get(nchunk)
	if err != nil {
		return err
	}
	blockSize := c.BlockSize
	if blockSize <= 0 {
		blockSize = atomSize
	}
	if atomSize > blockSize {
		// The cache cannot hold a single row; fall back to a
		// slice-of-length-1 read.
		return c.Get(dst, offsetInChunk, offsetInChunk+1)
	}

	blockLen := blockSize / atomSize
	blockStartInChunk := (offsetInChunk / blockLen) * blockLen
	absoluteBlockStart := nchunk*a.chunkLen + blockStartInChunk

	if buf, ok := a.cache.lookup(absoluteBlockStart); ok {
		rowInBlock := offsetInChunk - blockStartInChunk
		copy(dst, buf[rowInBlock*atomSize:(rowInBlock+1)*atomSize])
		return nil
	}

	blockStop := blockStartInChunk + blockLen
	if blockStop > c.ChunkLen {
		blockStop = c.ChunkLen
	}
	buf := make([]byte, (blockStop-blockStartInChunk)*atomSize)
	if err := c.Get(buf, blockStartInChunk, blockStop); err != nil {
		return err
	}
	a.cache.fill(absoluteBlockStart, buf)
	rowInBlock := offsetInChunk - blockStartInChunk
	copy(dst, buf[rowInBlock*atomSize:(rowInBlock+1)*atomSize])
	return nil
}

// SetAt overwrites the atom at logical row p via a length-1 slice write,
// which handles the tail and full-chunk-rebuild cases uniformly.
func (a *CArray) SetAt(p int, src []byte) error {
	return a.SetSlice(p, p+1, 1, src)
}
