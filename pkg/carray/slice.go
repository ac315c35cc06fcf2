package carray

import "github.com/fenilsonani/carray/internal/cerrors"

// canonicalize clamps (start, stop, step) against length n. Negative or
// zero step is rejected with ErrNotSupported.
func canonicalize(start, stop, step, n int) (int, int, error) {
	if step <= 0 {
		return 0, 0, cerrors.ErrNotSupported
	}
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if stop < start {
		stop = start
	}
	if stop > n {
		stop = n
	}
	return start, stop, nil
}

// clipToChunk intersects the read range with one chunk, returning the
// chunk-local [startb, stopb) range and output row count blen for chunk i
// (chunkLen rows wide) intersected with the global range [start, stop)
// under the given step. ok is false when the chunk contributes no rows.
func clipToChunk(i, start, stop, step, chunkLen int) (startb, stopb, blen int, ok bool) {
	base := i * chunkLen
	startb = start - base
	if startb < 0 {
		startb = 0
	}
	dist := base + startb - start
	advance := (step - dist%step) % step
	startb += advance
	if startb >= chunkLen {
		return 0, 0, 0, false
	}
	stopb = stop - base
	if stopb > chunkLen {
		stopb = chunkLen
	}
	if stopb <= startb {
		return 0, 0, 0, false
	}
	blen = ceilDiv(stopb-startb, step)
	return startb, stopb, blen, true
}

// rowSource abstracts "get rows [startb,stopb) of virtual chunk i" over
// either a real store Chunk or the leftover tail buffer.
type rowSource struct {
	get func(dst []byte, startb, stopb int) error
}

func (a *CArray) rowSourceFor(i, nchunks int) (rowSource, error) {
	atomSize := a.atomSize()
	if i < nchunks {
		c, err := a.store.Get(i)
		if err != nil {
			return rowSource{}, err
		}
		return rowSource{get: func(dst []byte, startb, stopb int) error {
			return c.Get(dst, startb, stopb)
		}}, nil
	}
	return rowSource{get: func(dst []byte, startb, stopb int) error {
		copy(dst, a.leftover[startb*atomSize:stopb*atomSize])
		return nil
	}}, nil
}

// GetSlice reads rows [start:stop:step) into a freshly allocated buffer.
func (a *CArray) GetSlice(start, stop, step int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.isObjectKind() {
		return nil, cerrors.ErrNotSupported
	}
	n, err := a.lenLocked()
	if err != nil {
		return nil, err
	}
	start, stop, err = canonicalize(start, stop, step, n)
	if err != nil {
		return nil, err
	}
	atomSize := a.atomSize()
	outRows := ceilDiv(stop-start, step)
	dst := make([]byte, outRows*atomSize)
	if outRows == 0 {
		return dst, nil
	}

	nchunks, err := a.nchunks()
	if err != nil {
		return nil, err
	}
	firstChunk := start / a.chunkLen
	lastChunk := (stop - 1) / a.chunkLen

	outOff := 0
	for i := firstChunk; i <= lastChunk; i++ {
		startb, stopb, blen, ok := clipToChunk(i, start, stop, step, a.chunkLen)
		if !ok {
			continue
		}
		src, err := a.rowSourceFor(i, nchunks)
		if err != nil {
			return nil, err
		}
		if step == 1 {
			if err := src.get(dst[outOff*atomSize:(outOff+blen)*atomSize], startb, stopb); err != nil {
				return nil, err
			}
		} else {
			scratch := make([]byte, (stopb-startb)*atomSize)
			if err := src.get(scratch, startb, stopb); err != nil {
				return nil, err
			}
			for j := 0; j < blen; j++ {
				copy(dst[(outOff+j)*atomSize:(outOff+j+1)*atomSize], scratch[j*step*atomSize:(j*step+1)*atomSize])
			}
		}
		outOff += blen
	}
	return dst, nil
}

// SetSlice overwrites rows [start:stop:step) from src, a buffer of
// ceil_div(stop-start, step) atoms.
func (a *CArray) SetSlice(start, stop, step int, src []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == ModeRead {
		return cerrors.ErrReadOnly
	}
	if a.isObjectKind() {
		return cerrors.ErrNotSupported
	}
	n, err := a.lenLocked()
	if err != nil {
		return err
	}
	start, stop, err = canonicalize(start, stop, step, n)
	if err != nil {
		return err
	}
	atomSize := a.atomSize()
	wantRows := ceilDiv(stop-start, step)
	if len(src) != wantRows*atomSize {
		return cerrors.ErrInvalidArgument
	}
	if wantRows == 0 {
		return nil
	}

	nchunks, err := a.nchunks()
	if err != nil {
		return err
	}
	firstChunk := start / a.chunkLen
	lastChunk := (stop - 1) / a.chunkLen

	srcOff := 0
	for i := firstChunk; i <= lastChunk; i++ {
		startb, stopb, blen, ok := clipToChunk(i, start, stop, step, a.chunkLen)
		if !ok {
			continue
		}
		inputChunk := src[srcOff*atomSize : (srcOff+blen)*atomSize]
		srcOff += blen

		if i >= nchunks {
			// Tail: write directly into the leftover buffer.
			a.writeRowsStrided(a.leftover, startb, stopb, step, inputChunk)
			a.cache.markDirty()
			continue
		}

		if step == 1 && stopb-startb == a.chunkLen {
			c, err := buildChunkFromArray(inputChunk, a)
			if err != nil {
				return err
			}
			if err := a.store.Set(i, c); err != nil {
				return err
			}
			a.cache.markDirty()
			continue
		}

		c, err := a.store.Get(i)
		if err != nil {
			return err
		}
		buf := make([]byte, a.chunkLen*atomSize)
		if err := c.Get(buf, 0, a.chunkLen); err != nil {
			return err
		}
		a.writeRowsStrided(buf, startb, stopb, step, inputChunk)
		nc, err := buildChunkFromArray(buf, a)
		if err != nil {
			return err
		}
		if err := a.store.Set(i, nc); err != nil {
			return err
		}
		a.cache.markDirty()
	}
	if a.root != "" {
		return a.flushLocked()
	}
	return nil
}

// writeRowsStrided overwrites buf's rows [startb:stopb) at the given
// stride from input, a tightly packed buffer of the affected rows.
func (a *CArray) writeRowsStrided(buf []byte, startb, stopb, step int, input []byte) {
	atomSize := a.atomSize()
	row := startb
	off := 0
	for row < stopb {
		copy(buf[row*atomSize:(row+1)*atomSize], input[off*atomSize:(off+1)*atomSize])
		row += step
		off++
	}
}

// SetMasked implements boolean-mask write: for each row where mask
// is true, in order, assign the next atom from values.
func (a *CArray) SetMasked(mask []bool, values []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == ModeRead {
		return cerrors.ErrReadOnly
	}
	if a.isObjectKind() {
		return cerrors.ErrNotSupported
	}
	n, err := a.lenLocked()
	if err != nil {
		return err
	}
	if len(mask) != n {
		return cerrors.ErrInvalidArgument
	}
	trueCount := 0
	for _, b := range mask {
		if b {
			trueCount++
		}
	}
	atomSize := a.atomSize()
	if len(values) != trueCount*atomSize {
		return cerrors.ErrInvalidArgument
	}

	nchunks, err := a.nchunks()
	if err != nil {
		return err
	}
	valOff := 0
	for i := 0; i <= nchunks; i++ {
		rowStart := i * a.chunkLen
		rowEnd := rowStart + a.chunkLen
		if rowEnd > n {
			rowEnd = n
		}
		if rowStart >= rowEnd {
			break
		}
		chunkMask := mask[rowStart:rowEnd]
		anySet := false
		for _, b := range chunkMask {
			if b {
				anySet = true
				break
			}
		}
		if !anySet {
			continue
		}

		rows := rowEnd - rowStart
		buf := make([]byte, rows*atomSize)
		if i < nchunks {
			c, err := a.store.Get(i)
			if err != nil {
				return err
			}
			if err := c.Get(buf, 0, rows); err != nil {
				return err
			}
		} else {
			copy(buf, a.leftover[:rows*atomSize])
		}

		for r, set := range chunkMask {
			if !set {
				continue
			}
			copy(buf[r*atomSize:(r+1)*atomSize], values[valOff*atomSize:(valOff+1)*atomSize])
			valOff++
		}

		if i < nchunks {
			nc, err := buildChunkFromArray(buf, a)
			if err != nil {
				return err
			}
			if err := a.store.Set(i, nc); err != nil {
				return err
			}
		} else {
			copy(a.leftover, buf)
		}
		a.cache.markDirty()
	}
	if a.root != "" {
		return a.flushLocked()
	}
	return nil
}
