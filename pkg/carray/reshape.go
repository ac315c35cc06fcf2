package carray

import (
	"os"
	"path/filepath"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
)

// Reshape returns a copy of the array with a new shape (leading length
// plus trailing atom dims), inferring at most one -1 dimension. The
// total scalar element count must be unchanged. If this
// array is persistent, the copy is built into a sibling temporary
// directory; on success the original root is removed and the copy is
// then renamed into its place. The two steps are not one atomic swap: a
// failure of the rename leaves no array at the root.
func (a *CArray) Reshape(shape []int) (*CArray, error) {
	if len(shape) == 0 {
		return nil, cerrors.ErrInvalidArgument
	}
	a.mu.Lock()
	n, err := a.lenLocked()
	if err != nil {
		a.mu.Unlock()
		return nil, err
	}
	trailingCount := 1
	if a.elemType.ItemSize > 0 {
		trailingCount = a.elemType.AtomSize() / a.elemType.ItemSize
	}
	totalScalars := n * trailingCount
	root := a.root
	elemType := a.elemType
	params := a.params
	a.mu.Unlock()

	resolved, err := inferShape(shape, totalScalars)
	if err != nil {
		return nil, err
	}
	newDims := append([]int(nil), resolved[1:]...)
	newElemType := chunk.ElementType{Kind: elemType.Kind, ItemSize: elemType.ItemSize, Dims: newDims}
	if err := newElemType.Validate(); err != nil {
		return nil, err
	}

	data, err := a.GetSlice(0, n, 1)
	if err != nil {
		return nil, err
	}

	if root == "" {
		return New(data, newElemType, 0, params)
	}

	parent := filepath.Dir(root)
	tmpDir, err := os.MkdirTemp(parent, ".reshape-*")
	if err != nil {
		return nil, err
	}
	tmpRoot := filepath.Join(tmpDir, filepath.Base(root))
	result, err := Create(tmpRoot, data, newElemType, 0, params, nil)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := result.Close(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := os.RemoveAll(root); err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}
	if err := os.Rename(tmpRoot, root); err != nil {
		os.RemoveAll(tmpDir)
		return nil, err
	}
	os.RemoveAll(tmpDir)
	return Open(root, ModeAppend)
}

// inferShape fills in at most one -1 entry in shape so the product
// matches total, failing with ErrInvalidArgument if more than one -1 is
// present or the given dims do not evenly divide total.
func inferShape(shape []int, total int) ([]int, error) {
	resolved := append([]int(nil), shape...)
	inferIdx := -1
	product := 1
	for i, d := range resolved {
		if d == -1 {
			if inferIdx != -1 {
				return nil, cerrors.ErrInvalidArgument
			}
			inferIdx = i
			continue
		}
		if d < 0 {
			return nil, cerrors.ErrInvalidArgument
		}
		product *= d
	}
	if inferIdx == -1 {
		if product != total {
			return nil, cerrors.ErrInvalidArgument
		}
		return resolved, nil
	}
	if product == 0 || total%product != 0 {
		return nil, cerrors.ErrInvalidArgument
	}
	resolved[inferIdx] = total / product
	return resolved, nil
}

// Copy returns an independent in-memory copy of the array's current
// contents, sharing no state with the original.
func (a *CArray) Copy() (*CArray, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	data, err := a.GetSlice(0, n, 1)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	elemType, params := a.elemType, a.params
	a.mu.Unlock()
	return New(data, elemType, 0, params)
}
