// Package carray implements the single-column compressed, chunked array:
// the append/trim/resize machinery with its leftover uncompressed tail
// buffer, block-cache random access, reshape, reduction, and the
// iteration/filter engine, atop the internal codec, chunk, store and
// meta layers.
package carray

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
	"github.com/fenilsonani/carray/internal/meta"
	"github.com/fenilsonani/carray/internal/store"
)

// CArray is the chunked, block-compressed column. It owns its Chunk
// store, its leftover tail buffer, its block cache and its attribute bag
// exclusively; a view created by View shares the store and a value-copy
// of the leftover buffer but never the block cache.
type CArray struct {
	mu sync.Mutex

	elemType    chunk.ElementType
	chunkLen    int
	params      Params
	expectedLen int
	dflt        []byte // one atom, broadcast on resize-up

	store store.Store
	root  string // "" for an in-memory array
	mode  Mode

	leftover     []byte // capacity chunkLen*atomSize
	leftoverRows int

	cache blockCache
	attrs meta.Attrs
}

func (a *CArray) atomSize() int { return a.elemType.AtomSize() }

func (a *CArray) chunkSize() int { return a.chunkLen * a.atomSize() }

// isObjectKind reports whether this array bypasses the leftover tail
// entirely, storing one element per chunk.
func (a *CArray) isObjectKind() bool { return a.elemType.Kind == chunk.KindObject }

// nchunks returns the number of full chunks currently in the store.
func (a *CArray) nchunks() (int, error) { return a.store.Len() }

// Len returns the logical length N.
func (a *CArray) Len() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lenLocked()
}

func (a *CArray) lenLocked() (int, error) {
	if a.isObjectKind() {
		return a.store.Len()
	}
	n, err := a.nchunks()
	if err != nil {
		return 0, err
	}
	return n*a.chunkLen + a.leftoverRows, nil
}

// Shape returns (N, d1, …, dk): the logical length followed by the
// element type's trailing dims folded into the atom.
func (a *CArray) Shape() ([]int, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	shape := make([]int, 0, 1+len(a.elemType.Dims))
	shape = append(shape, n)
	shape = append(shape, a.elemType.Dims...)
	return shape, nil
}

// ElementType returns the array's element type descriptor.
func (a *CArray) ElementType() chunk.ElementType { return a.elemType }

// ChunkLen returns the fixed row count per full chunk.
func (a *CArray) ChunkLen() int { return a.chunkLen }

// IsReadOnly reports whether mutating calls fail with ErrReadOnly.
func (a *CArray) IsReadOnly() bool { return a.mode == ModeRead }

func defaultAtomBytes(atomSize int) []byte { return make([]byte, atomSize) }

// New builds an in-memory CArray from data, a buffer of whole atoms of
// elemType. chunkLen, if > 0, overrides the chunk-length heuristic.
func New(data []byte, elemType chunk.ElementType, chunkLen int, params Params) (*CArray, error) {
	return newFromData("", data, elemType, chunkLen, params, nil)
}

// Create builds a persistent CArray rooted at dir, populated from data.
// dflt, if non-nil, must be exactly one atom and is broadcast on future
// Resize growth; if nil, a zero atom is used.
func Create(dir string, data []byte, elemType chunk.ElementType, chunkLen int, params Params, dflt []byte) (*CArray, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, cerrors.ErrRootExists
	}
	return newFromData(dir, data, elemType, chunkLen, params, dflt)
}

func newFromData(root string, data []byte, elemType chunk.ElementType, explicitChunkLen int, params Params, dflt []byte) (*CArray, error) {
	if err := elemType.Validate(); err != nil {
		return nil, err
	}
	atomSize := elemType.AtomSize()

	if elemType.Kind == chunk.KindObject {
		return newObjectArray(root, data, params)
	}

	if atomSize <= 0 || len(data)%atomSize != 0 {
		return nil, cerrors.ErrInvalidArgument
	}
	expectedLen := len(data) / atomSize
	chunkLen := chooseChunkLen(explicitChunkLen, expectedLen, atomSize)
	if chunkLen < 1 {
		return nil, cerrors.ErrInvalidArgument
	}

	if dflt == nil {
		dflt = defaultAtomBytes(atomSize)
	} else if len(dflt) != atomSize {
		return nil, cerrors.ErrInvalidArgument
	}

	inMemory := root == ""
	var st store.Store
	if inMemory {
		st = store.NewMemStore()
	} else {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("creating root: %w", err)
		}
		ds, err := store.OpenDiskStore(filepath.Join(root, "data"), false, elemType, chunkLen)
		if err != nil {
			return nil, err
		}
		st = ds
	}

	a := &CArray{
		elemType:    elemType,
		chunkLen:    chunkLen,
		params:      params,
		expectedLen: expectedLen,
		dflt:        dflt,
		store:       st,
		root:        root,
		mode:        ModeAppend,
		leftover:    make([]byte, chunkLen*atomSize),
		attrs:       meta.Attrs{},
	}

	chunkSize := a.chunkSize()
	full := (len(data) / chunkSize) * chunkSize
	for off := 0; off < full; off += chunkSize {
		c, err := chunk.FromArray(data[off:off+chunkSize], elemType, chunkLen, params, inMemory)
		if err != nil {
			return nil, err
		}
		if _, err := a.store.Append(c); err != nil {
			return nil, err
		}
	}
	remainder := data[full:]
	copy(a.leftover, remainder)
	a.leftoverRows = len(remainder) / atomSize

	if !inMemory {
		if err := a.writeStorageMeta(); err != nil {
			return nil, err
		}
		if err := a.Flush(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// newObjectArray builds a KindObject array, bypassing the tail entirely:
// each element is pickled independently and stored as its own one-element
// chunk. Elements are added one at a time with AppendObject, so the
// initial data must be empty.
func newObjectArray(root string, data []byte, params Params) (*CArray, error) {
	if len(data) != 0 {
		return nil, cerrors.ErrInvalidArgument
	}
	elemType := chunk.NewObject()
	inMemory := root == ""
	var st store.Store
	if inMemory {
		st = store.NewMemStore()
	} else {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("creating root: %w", err)
		}
		ds, err := store.OpenDiskStore(filepath.Join(root, "data"), false, elemType, 1)
		if err != nil {
			return nil, err
		}
		st = ds
	}
	a := &CArray{
		elemType: elemType,
		chunkLen: 1,
		params:   params,
		store:    st,
		root:     root,
		mode:     ModeAppend,
		attrs:    meta.Attrs{},
	}
	if !inMemory {
		if err := a.writeStorageMeta(); err != nil {
			return nil, err
		}
		if err := a.Flush(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// NewObjectArray builds an empty in-memory object-kind ("O") array.
// Elements are added one at a time with AppendObject.
func NewObjectArray(params Params) (*CArray, error) {
	return newObjectArray("", nil, params)
}

// CreateObjectArray builds an empty persistent object-kind array rooted
// at dir.
func CreateObjectArray(dir string, params Params) (*CArray, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, cerrors.ErrRootExists
	}
	return newObjectArray(dir, nil, params)
}

// Open reopens a persistent CArray rooted at dir. Mode ModeWrite
// truncates the array to length 0 after opening; mode ModeRead rejects
// mutating calls.
func Open(dir string, mode Mode) (*CArray, error) {
	st, err := meta.ReadStorage(dir)
	if err != nil {
		return nil, err
	}
	elemType, err := chunk.ParseElementType(st.Dtype)
	if err != nil {
		return nil, err
	}
	sizes, err := meta.ReadSizes(dir)
	if err != nil {
		return nil, err
	}
	attrs, err := meta.ReadAttrs(dir)
	if err != nil {
		return nil, err
	}

	readOnly := mode == ModeRead
	ds, err := store.OpenDiskStore(filepath.Join(dir, "data"), readOnly, elemType, st.ChunkLen)
	if err != nil {
		return nil, err
	}
	n := 0
	if len(sizes.Shape) > 0 {
		n = sizes.Shape[0]
	}
	// The chunk count comes from metadata, not a directory probe: a
	// flushed tail file sits one slot past the last real chunk and would
	// otherwise be counted as one.
	if elemType.Kind == chunk.KindObject {
		ds.SetCount(n)
	} else if st.ChunkLen > 0 {
		ds.SetCount(n / st.ChunkLen)
	}

	var dflt []byte
	if len(st.Dflt) > 0 {
		dflt, err = decodeDfltJSON(st.Dflt, elemType)
		if err != nil {
			return nil, err
		}
	} else {
		dflt = defaultAtomBytes(elemType.AtomSize())
	}

	a := &CArray{
		elemType:    elemType,
		chunkLen:    st.ChunkLen,
		params:      paramsFromCParams(st.CParams),
		expectedLen: st.ExpectedLen,
		dflt:        dflt,
		store:       ds,
		root:        dir,
		mode:        mode,
		attrs:       attrs,
	}

	if !a.isObjectKind() {
		a.leftover = make([]byte, a.chunkLen*a.atomSize())
		nchunks, err := a.store.Len()
		if err != nil {
			return nil, err
		}
		a.leftoverRows = n - nchunks*a.chunkLen
		if a.leftoverRows < 0 || a.leftoverRows >= a.chunkLen {
			return nil, cerrors.ErrCorruptBuffer
		}
		if a.leftoverRows > 0 {
			tail, err := ds.Tail()
			if err != nil {
				return nil, err
			}
			if tail == nil {
				return nil, cerrors.ErrCorruptBuffer
			}
			if err := tail.Get(a.leftover[:a.leftoverRows*a.atomSize()], 0, a.leftoverRows); err != nil {
				return nil, err
			}
		}
	}

	if mode == ModeWrite {
		if err := a.Resize(0); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// View returns a new CArray sharing this array's Chunk store (read-only
// by contract) and a value-copy of the leftover buffer's current
// contents. The view owns its own block cache.
func (a *CArray) View() *CArray {
	a.mu.Lock()
	defer a.mu.Unlock()
	leftoverCopy := append([]byte(nil), a.leftover...)
	attrsCopy := meta.Attrs{}
	for k, v := range a.attrs {
		attrsCopy[k] = v
	}
	return &CArray{
		elemType:     a.elemType,
		chunkLen:     a.chunkLen,
		params:       a.params,
		expectedLen:  a.expectedLen,
		dflt:         append([]byte(nil), a.dflt...),
		store:        a.store,
		root:         a.root,
		mode:         a.mode,
		leftover:     leftoverCopy,
		leftoverRows: a.leftoverRows,
		attrs:        attrsCopy,
	}
}

// FreeCache releases the array's decompressed block cache without
// invalidating the array, and asks the Chunk store to do the same.
func (a *CArray) FreeCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache.free()
	a.store.FreeCache()
}

// Close releases resources held by the backing store. It does not flush.
func (a *CArray) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Close()
}

// Purge destroys a persistent array by deleting its root directory. It is
// a no-op for in-memory arrays.
func (a *CArray) Purge() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.root == "" {
		return nil
	}
	if err := a.store.Close(); err != nil {
		return err
	}
	return os.RemoveAll(a.root)
}
