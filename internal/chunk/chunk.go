package chunk

import (
	"sync"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/codec"
)

// Chunk is an immutable compressed container for one fixed-size run of
// elements of a single ElementType. It is built once, via one of the
// constructor variants below, and never mutated afterward; Set always
// fails with ErrNotSupported.
type Chunk struct {
	ElemType ElementType
	ChunkLen int // rows per full chunk; for KindObject this is always 1

	NBytes    int // uncompressed byte count
	CBytes    int // compressed byte count, including the codec's self-describing header
	BlockSize int // codec decode block granularity in bytes

	IsConstant    bool
	ConstantValue []byte // one atom, valid only when IsConstant

	Compressed []byte // codec self-describing buffer, nil when IsConstant

	trueOnce  sync.Once
	trueCount int
}

// allZero reports whether every byte of data is zero.
func allZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// allAtomsEqual reports whether every atomSize-sized row of data is
// bitwise identical to the first. A caller that materializes a broadcast
// (stride-0) value into a full buffer produces exactly this pattern, so
// constant detection still fires for it.
func allAtomsEqual(data []byte, atomSize int) bool {
	if atomSize == 0 || len(data) <= atomSize {
		return true
	}
	first := data[:atomSize]
	for off := atomSize; off+atomSize <= len(data); off += atomSize {
		for i := 0; i < atomSize; i++ {
			if data[off+i] != first[i] {
				return false
			}
		}
	}
	return true
}

// FromArray builds a Chunk from chunkLen*ElemType.AtomSize() uncompressed
// bytes. Constant detection only runs when inMemory is true: a
// disk-backed array always stores real compressed bytes so its on-disk
// format stays uniform, even for an all-zero or broadcast-default chunk.
func FromArray(data []byte, et ElementType, chunkLen int, params codec.Params, inMemory bool) (*Chunk, error) {
	if et.Kind == KindObject {
		return nil, cerrors.ErrInvalidArgument
	}
	if err := et.Validate(); err != nil {
		return nil, err
	}
	atomSize := et.AtomSize()
	want := chunkLen * atomSize
	if len(data) != want {
		return nil, cerrors.ErrInvalidArgument
	}

	if inMemory && atomSize > 0 && (allZero(data) || allAtomsEqual(data, atomSize)) {
		c := &Chunk{
			ElemType:      et,
			ChunkLen:      chunkLen,
			NBytes:        len(data),
			IsConstant:    true,
			ConstantValue: append([]byte(nil), data[:atomSize]...),
		}
		return c, nil
	}

	if !et.Kind.IsFloat() {
		// Quantization is a float-only transform; the codec would otherwise
		// round any 4- or 8-byte item as if it were a float.
		params.Quantize = 0
	}
	compressed, blockSize, err := codec.Compress(data, et.CodecTypeSize(), params)
	if err != nil {
		return nil, err
	}
	return &Chunk{
		ElemType:   et,
		ChunkLen:   chunkLen,
		NBytes:     len(data),
		CBytes:     len(compressed),
		BlockSize:  blockSize,
		Compressed: compressed,
	}, nil
}

// FromCompressedBytes reconstructs a Chunk read back from persistent
// storage. Disk-backed chunks never carry the constant-chunk
// optimization, so this always produces a regular compressed Chunk.
func FromCompressedBytes(compressed []byte, et ElementType, chunkLen int) (*Chunk, error) {
	info, err := codec.BufferInfo(compressed)
	if err != nil {
		return nil, err
	}
	return &Chunk{
		ElemType:   et,
		ChunkLen:   chunkLen,
		NBytes:     info.NBytes,
		CBytes:     len(compressed),
		BlockSize:  info.BlockSize,
		Compressed: compressed,
	}, nil
}

// FromPickledObject builds a one-element KindObject Chunk from a host-
// serialized byte string. The O-kind bypasses the leftover tail entirely;
// every element is its own chunk.
func FromPickledObject(blob []byte, params codec.Params) (*Chunk, error) {
	compressed, blockSize, err := codec.Compress(blob, 1, params)
	if err != nil {
		return nil, err
	}
	return &Chunk{
		ElemType:   NewObject(),
		ChunkLen:   1,
		NBytes:     len(blob),
		CBytes:     len(compressed),
		BlockSize:  blockSize,
		Compressed: compressed,
	}, nil
}

// Get decompresses rows [start, stop) into dst, which must be exactly
// (stop-start)*AtomSize() bytes.
func (c *Chunk) Get(dst []byte, start, stop int) error {
	if start < 0 || stop < start || stop > c.ChunkLen {
		return cerrors.ErrOutOfRange
	}
	if c.ElemType.Kind == KindObject {
		return cerrors.ErrNotSupported
	}
	rows := stop - start
	atomSize := c.ElemType.AtomSize()
	if len(dst) != rows*atomSize {
		return cerrors.ErrInvalidArgument
	}
	if rows == 0 {
		return nil
	}
	if c.IsConstant {
		for i := 0; i < rows; i++ {
			copy(dst[i*atomSize:(i+1)*atomSize], c.ConstantValue)
		}
		return nil
	}
	if rows == c.ChunkLen {
		return codec.Decompress(c.Compressed, dst)
	}
	ipa := c.ElemType.itemsPerAtom()
	return codec.DecompressRange(c.Compressed, start*ipa, rows*ipa, dst)
}

// GetObject returns the full decompressed byte string of a KindObject
// chunk; the caller deserializes it.
func (c *Chunk) GetObject() ([]byte, error) {
	if c.ElemType.Kind != KindObject {
		return nil, cerrors.ErrNotSupported
	}
	dst := make([]byte, c.NBytes)
	if err := codec.Decompress(c.Compressed, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Set always fails: chunks are immutable once constructed.
func (c *Chunk) Set([]byte, int, int) error {
	return cerrors.ErrNotSupported
}

// TrueCount returns the cached count of non-zero (true) bytes in a
// KindBool chunk, decompressing and counting at most once.
func (c *Chunk) TrueCount() (int, error) {
	if c.ElemType.Kind != KindBool {
		return 0, cerrors.ErrTypeMismatch
	}
	if c.IsConstant {
		if len(c.ConstantValue) > 0 && c.ConstantValue[0] != 0 {
			return c.ChunkLen, nil
		}
		return 0, nil
	}
	var decodeErr error
	c.trueOnce.Do(func() {
		buf := make([]byte, c.NBytes)
		if err := codec.Decompress(c.Compressed, buf); err != nil {
			decodeErr = err
			return
		}
		n := 0
		for _, b := range buf {
			if b != 0 {
				n++
			}
		}
		c.trueCount = n
	})
	return c.trueCount, decodeErr
}
