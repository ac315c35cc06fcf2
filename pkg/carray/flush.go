package carray

import (
	"github.com/fenilsonani/carray/internal/chunk"
	"github.com/fenilsonani/carray/internal/meta"
)

// Flush is a no-op for in-memory arrays. For a persistent array it
// writes the current leftover buffer's valid prefix to the store's tail
// slot and rewrites meta/sizes. Flush is explicit;
// destruction does not flush.
func (a *CArray) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flushLocked()
}

func (a *CArray) flushLocked() error {
	if a.root == "" {
		return nil
	}
	if a.leftoverRows > 0 {
		// The tail chunk holds only the first leftoverRows rows of the
		// leftover buffer; the zero padding after them is not written.
		// Open reads those rows back via meta/sizes.
		c, err := chunk.FromArray(a.leftover[:a.leftoverRows*a.atomSize()], a.elemType, a.leftoverRows, a.params, false)
		if err != nil {
			return err
		}
		if err := a.store.FlushTail(c); err != nil {
			return err
		}
	}

	shape, err := a.shapeLocked()
	if err != nil {
		return err
	}
	nbytes, cbytes, err := a.byteCountsLocked()
	if err != nil {
		return err
	}
	return meta.WriteSizes(a.root, meta.Sizes{Shape: shape, NBytes: nbytes, CBytes: cbytes})
}

func (a *CArray) shapeLocked() ([]int, error) {
	n, err := a.lenLocked()
	if err != nil {
		return nil, err
	}
	shape := make([]int, 0, 1+len(a.elemType.Dims))
	shape = append(shape, n)
	shape = append(shape, a.elemType.Dims...)
	return shape, nil
}

// byteCountsLocked computes nbytes (N*atomsize) and cbytes (sum of every
// chunk's compressed size, plus the tail counted at its uncompressed
// capacity).
func (a *CArray) byteCountsLocked() (int64, int64, error) {
	n, err := a.lenLocked()
	if err != nil {
		return 0, 0, err
	}
	nbytes := int64(n) * int64(a.atomSize())

	nchunks, err := a.nchunks()
	if err != nil {
		return 0, 0, err
	}
	var cbytes int64
	for i := 0; i < nchunks; i++ {
		c, err := a.store.Get(i)
		if err != nil {
			return 0, 0, err
		}
		if c.IsConstant {
			cbytes += int64(len(c.ConstantValue))
		} else {
			cbytes += int64(c.CBytes)
		}
	}
	cbytes += int64(a.chunkSize())
	return nbytes, cbytes, nil
}
