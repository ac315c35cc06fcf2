package carray

import (
	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
)

// RangeIterator yields successive atoms in [start:stop:step), honoring
// skip/limit. It owns its own view of the
// array so iteration never disturbs the source array's block cache.
type RangeIterator struct {
	view              *CArray
	start, stop, step int
	limit, skip       int
	skipped           int
	emitted           int
	pos               int
	done              bool
}

// Iter constructs a plain-range iterator over [start:stop:step). limit<0
// means unbounded; skip positions are consumed first and do not count
// against limit, so limit always bounds the number of yielded atoms.
func (a *CArray) Iter(start, stop, step, limit, skip int) (*RangeIterator, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	start, stop, err = canonicalize(start, stop, step, n)
	if err != nil {
		return nil, err
	}
	return &RangeIterator{view: a.View(), start: start, stop: stop, step: step, limit: limit, skip: skip, pos: start}, nil
}

// Next returns the next atom, or ok=false once exhausted. Exhaustion is
// sticky: further calls keep reporting ok=false.
func (it *RangeIterator) Next() (atom []byte, ok bool, err error) {
	if it.done {
		return nil, false, nil
	}
	atomSize := it.view.atomSize()
	for it.pos < it.stop {
		p := it.pos
		it.pos += it.step
		it.skipped++
		if it.skipped <= it.skip {
			continue
		}
		if it.limit >= 0 && it.emitted >= it.limit {
			it.done = true
			return nil, false, nil
		}
		it.emitted++
		buf := make([]byte, atomSize)
		if err := it.view.GetAt(p, buf); err != nil {
			return nil, false, err
		}
		return buf, true, nil
	}
	it.done = true
	return nil, false, nil
}

// WhereTrueIterator yields the indices of true elements of a rank-1
// boolean array, eliding whole constant
// chunks that are all-false without decompressing them.
type WhereTrueIterator struct {
	view        *CArray
	limit, skip int
	skipped     int
	emitted     int
	chunkIdx    int
	nchunks     int
	buf         []bool
	bufStart    int
	bufPos      int
	done        bool
}

// WhereTrue constructs a wheretrue iterator. The array must be boolean
// and rank 1.
func (a *CArray) WhereTrue(limit, skip int) (*WhereTrueIterator, error) {
	if a.elemType.Kind != chunk.KindBool || len(a.elemType.Dims) != 0 {
		return nil, cerrors.ErrInvalidArgument
	}
	view := a.View()
	nchunks, err := view.nchunks()
	if err != nil {
		return nil, err
	}
	return &WhereTrueIterator{view: view, limit: limit, skip: skip, nchunks: nchunks}, nil
}

func (it *WhereTrueIterator) fillNextBuffer() (bool, error) {
	for it.chunkIdx <= it.nchunks {
		i := it.chunkIdx
		it.chunkIdx++

		var rowStart, rows int
		var get func(dst []byte, start, stop int) error
		var isConstant bool
		var constZero bool

		if i < it.nchunks {
			c, err := it.view.store.Get(i)
			if err != nil {
				return false, err
			}
			rowStart = i * it.view.chunkLen
			rows = c.ChunkLen
			isConstant = c.IsConstant
			constZero = isConstant && (len(c.ConstantValue) == 0 || c.ConstantValue[0] == 0)
			get = c.Get
		} else {
			rowStart = i * it.view.chunkLen
			rows = it.view.leftoverRows
			if rows == 0 {
				continue
			}
			leftover := it.view.leftover
			get = func(dst []byte, start, stop int) error {
				copy(dst, leftover[start:stop])
				return nil
			}
		}

		if isConstant && constZero {
			continue // constant-chunk elision: whole chunk is false
		}
		buf := make([]byte, rows)
		if err := get(buf, 0, rows); err != nil {
			return false, err
		}
		it.buf = make([]bool, rows)
		for r, b := range buf {
			it.buf[r] = b != 0
		}
		it.bufStart = rowStart
		it.bufPos = 0
		return true, nil
	}
	return false, nil
}

// Next returns the next true index, or ok=false once exhausted.
func (it *WhereTrueIterator) Next() (index int, ok bool, err error) {
	if it.done {
		return 0, false, nil
	}
	for {
		if it.buf == nil || it.bufPos >= len(it.buf) {
			more, err := it.fillNextBuffer()
			if err != nil {
				return 0, false, err
			}
			if !more {
				it.done = true
				return 0, false, nil
			}
			continue
		}
		for it.bufPos < len(it.buf) {
			isTrue := it.buf[it.bufPos]
			idx := it.bufStart + it.bufPos
			it.bufPos++
			if !isTrue {
				continue
			}
			it.skipped++
			if it.skipped <= it.skip {
				continue
			}
			if it.limit >= 0 && it.emitted >= it.limit {
				it.done = true
				return 0, false, nil
			}
			it.emitted++
			return idx, true, nil
		}
	}
}

// WhereIterator yields atoms of the array at positions where a companion
// mask is true, eliding constant-false chunks
// of the mask the same way WhereTrueIterator does.
type WhereIterator struct {
	source *WhereTrueIterator
	view   *CArray
}

// Where constructs a where iterator selecting rows where mask (itself a
// rank-1 boolean CArray of the same length) is true.
func (a *CArray) Where(mask *CArray, limit, skip int) (*WhereIterator, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	mn, err := mask.Len()
	if err != nil {
		return nil, err
	}
	if mn != n {
		return nil, cerrors.ErrInvalidArgument
	}
	wt, err := mask.WhereTrue(limit, skip)
	if err != nil {
		return nil, err
	}
	return &WhereIterator{source: wt, view: a.View()}, nil
}

// Next returns the next selected atom, or ok=false once exhausted.
func (it *WhereIterator) Next() (atom []byte, ok bool, err error) {
	idx, ok, err := it.source.Next()
	if err != nil || !ok {
		return nil, false, err
	}
	buf := make([]byte, it.view.atomSize())
	if err := it.view.GetAt(idx, buf); err != nil {
		return nil, false, err
	}
	return buf, true, nil
}
