package carray

import (
	"encoding/binary"
	"math"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
)

// SumResult is a dtype-promoted reduction result: booleans and small
// integer kinds widen to a platform-natural signed integer (Int64),
// floats keep their width (Float64, tagged IsFloat).
type SumResult struct {
	Int64   int64
	Float64 float64
	IsFloat bool
}

// Sum reduces the whole array. Constant chunks contribute
// constant*chunklen without decompression; boolean chunks contribute
// their cached true count; everything else is decompressed and summed
// over every scalar (trailing atom dims included). The tail's valid
// prefix is included.
func (a *CArray) Sum() (SumResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.isObjectKind() {
		return SumResult{}, cerrors.ErrNotSupported
	}

	isFloat := a.elemType.Kind.IsFloat()
	var isum int64
	var fsum float64

	nchunks, err := a.nchunks()
	if err != nil {
		return SumResult{}, err
	}
	for i := 0; i < nchunks; i++ {
		c, err := a.store.Get(i)
		if err != nil {
			return SumResult{}, err
		}
		ci, cf, err := a.sumChunk(c, c.ChunkLen)
		if err != nil {
			return SumResult{}, err
		}
		isum += ci
		fsum += cf
	}

	if a.leftoverRows > 0 {
		ci, cf := a.sumBuf(a.leftover[:a.leftoverRows*a.atomSize()])
		isum += ci
		fsum += cf
	}

	return SumResult{Int64: isum, Float64: fsum, IsFloat: isFloat}, nil
}

// sumChunk sums the first validRows rows of c.
func (a *CArray) sumChunk(c *chunk.Chunk, validRows int) (int64, float64, error) {
	kind := a.elemType.Kind

	if kind == chunk.KindBool {
		if c.IsConstant {
			if len(c.ConstantValue) > 0 && c.ConstantValue[0] != 0 {
				return int64(validRows), 0, nil
			}
			return 0, 0, nil
		}
		n, err := c.TrueCount()
		if err != nil {
			return 0, 0, err
		}
		return int64(n), 0, nil
	}

	if c.IsConstant {
		ci, cf := a.sumBuf(c.ConstantValue)
		return ci * int64(validRows), cf * float64(validRows), nil
	}

	buf := make([]byte, validRows*a.atomSize())
	if err := c.Get(buf, 0, validRows); err != nil {
		return 0, 0, err
	}
	ci, cf := a.sumBuf(buf)
	return ci, cf, nil
}

// sumBuf sums every scalar of a whole-atom buffer.
func (a *CArray) sumBuf(buf []byte) (int64, float64) {
	kind := a.elemType.Kind
	size := a.elemType.ItemSize
	if size <= 0 {
		return 0, 0
	}
	var isum int64
	var fsum float64
	for off := 0; off+size <= len(buf); off += size {
		scalar := buf[off : off+size]
		if kind.IsFloat() {
			fsum += decodeFloat(scalar, kind)
		} else {
			isum += decodeInt(scalar, kind)
		}
	}
	return isum, fsum
}

func decodeInt(atom []byte, kind chunk.Kind) int64 {
	switch kind {
	case chunk.KindInt8:
		return int64(int8(atom[0]))
	case chunk.KindUint8, chunk.KindBool:
		return int64(atom[0])
	case chunk.KindInt16:
		return int64(int16(binary.LittleEndian.Uint16(atom)))
	case chunk.KindUint16:
		return int64(binary.LittleEndian.Uint16(atom))
	case chunk.KindInt32:
		return int64(int32(binary.LittleEndian.Uint32(atom)))
	case chunk.KindUint32:
		return int64(binary.LittleEndian.Uint32(atom))
	case chunk.KindInt64:
		return int64(binary.LittleEndian.Uint64(atom))
	case chunk.KindUint64:
		return int64(binary.LittleEndian.Uint64(atom))
	default:
		return 0
	}
}

func decodeFloat(atom []byte, kind chunk.Kind) float64 {
	switch kind {
	case chunk.KindFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(atom)))
	case chunk.KindFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(atom))
	default:
		return 0
	}
}
