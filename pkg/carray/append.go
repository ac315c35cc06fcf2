package carray

import (
	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
)

// Append adds the rows in data (a buffer of whole atoms) to the end of
// the array. For object-kind arrays use AppendObject instead; Append
// rejects KindObject arrays outright.
func (a *CArray) Append(data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == ModeRead {
		return cerrors.ErrReadOnly
	}
	if a.isObjectKind() {
		return cerrors.ErrNotSupported
	}
	atomSize := a.atomSize()
	if atomSize == 0 || len(data)%atomSize != 0 {
		return cerrors.ErrTypeMismatch
	}
	if err := a.appendRowsLocked(data); err != nil {
		return err
	}
	if a.root != "" {
		return a.flushLocked()
	}
	return nil
}

// appendRowsLocked fills the tail first, then consumes the rest of data
// in full-chunk strides. Caller holds a.mu.
func (a *CArray) appendRowsLocked(data []byte) error {
	atomSize := a.atomSize()
	leftoverBytes := a.leftoverRows * atomSize
	chunkSize := a.chunkSize()

	if leftoverBytes+len(data) < chunkSize {
		copy(a.leftover[leftoverBytes:], data)
		a.leftoverRows += len(data) / atomSize
		a.cache.markDirty()
		return nil
	}

	k := a.chunkLen - a.leftoverRows // rows needed to fill the tail
	copy(a.leftover[leftoverBytes:], data[:k*atomSize])
	c, err := chunk.FromArray(a.leftover, a.elemType, a.chunkLen, a.params, a.root == "")
	if err != nil {
		return err
	}
	if _, err := a.store.Append(c); err != nil {
		return err
	}
	a.leftover = make([]byte, chunkSize)
	a.leftoverRows = 0

	rest := data[k*atomSize:]
	for len(rest) >= chunkSize {
		c, err := chunk.FromArray(rest[:chunkSize], a.elemType, a.chunkLen, a.params, a.root == "")
		if err != nil {
			return err
		}
		if _, err := a.store.Append(c); err != nil {
			return err
		}
		rest = rest[chunkSize:]
	}
	copy(a.leftover, rest)
	a.leftoverRows = len(rest) / atomSize
	a.cache.markDirty()
	return nil
}

// AppendObject adds one pickled element to an object-kind array,
// bypassing the tail entirely: each element is its own one-element chunk.
func (a *CArray) AppendObject(blob []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == ModeRead {
		return cerrors.ErrReadOnly
	}
	if !a.isObjectKind() {
		return cerrors.ErrTypeMismatch
	}
	c, err := chunk.FromPickledObject(blob, a.params)
	if err != nil {
		return err
	}
	if _, err := a.store.Append(c); err != nil {
		return err
	}
	if a.root != "" {
		return a.flushLocked()
	}
	return nil
}

// GetObjectAt returns the serialized bytes of element i of an object-kind
// array; the caller deserializes them with its ObjectCodec.
func (a *CArray) GetObjectAt(i int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.isObjectKind() {
		return nil, cerrors.ErrTypeMismatch
	}
	c, err := a.store.Get(i)
	if err != nil {
		return nil, err
	}
	return c.GetObject()
}

// Trim removes the last k rows.
func (a *CArray) Trim(k int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == ModeRead {
		return cerrors.ErrReadOnly
	}
	if k < 0 {
		return cerrors.ErrInvalidArgument
	}
	if err := a.trimLocked(k); err != nil {
		return err
	}
	if a.root != "" {
		return a.flushLocked()
	}
	return nil
}

func (a *CArray) trimLocked(k int) error {
	n, err := a.lenLocked()
	if err != nil {
		return err
	}
	if k > n {
		return cerrors.ErrOutOfRange
	}
	if k == 0 {
		return nil
	}

	if a.isObjectKind() {
		for i := 0; i < k; i++ {
			if err := a.store.Pop(); err != nil {
				return err
			}
		}
		return nil
	}

	if k <= a.leftoverRows {
		a.leftoverRows -= k
		a.cache.markDirty()
		return nil
	}

	newN := n - k
	atomSize := a.atomSize()
	nchunksTarget := newN / a.chunkLen
	newLeftoverRows := newN % a.chunkLen

	curChunks, err := a.nchunks()
	if err != nil {
		return err
	}
	// When the new tail is non-empty its rows live in chunk nchunksTarget,
	// so that chunk is read back before the final pop discards it.
	popTarget := nchunksTarget
	if newLeftoverRows > 0 {
		popTarget++
	}
	for curChunks > popTarget {
		if err := a.store.Pop(); err != nil {
			return err
		}
		curChunks--
	}

	a.leftover = make([]byte, a.chunkSize())
	a.leftoverRows = 0
	if newLeftoverRows > 0 {
		last, err := a.store.Get(nchunksTarget)
		if err != nil {
			return err
		}
		if err := last.Get(a.leftover[:newLeftoverRows*atomSize], 0, newLeftoverRows); err != nil {
			return err
		}
		if err := a.store.Pop(); err != nil {
			return err
		}
		a.leftoverRows = newLeftoverRows
	}
	a.cache.markDirty()
	return nil
}

// Resize changes the logical length to newLen, filling with the array's
// default value on growth or trimming on shrink.
func (a *CArray) Resize(newLen int) error {
	if newLen < 0 {
		return cerrors.ErrInvalidArgument
	}
	a.mu.Lock()
	n, err := a.lenLocked()
	a.mu.Unlock()
	if err != nil {
		return err
	}
	if newLen == n {
		return nil
	}
	if newLen < n {
		return a.Trim(n - newLen)
	}

	atomSize := a.atomSize()
	grow := newLen - n
	buf := make([]byte, grow*atomSize)
	for i := 0; i < grow; i++ {
		copy(buf[i*atomSize:(i+1)*atomSize], a.dflt)
	}
	return a.Append(buf)
}
