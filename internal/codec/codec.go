// Package codec is the compression codec wrapper: a thin, self-describing
// contract over a registry of block-oriented compressors. It supports
// whole-buffer compress/decompress plus partial, block-granular decoding
// of a contiguous item range.
package codec

import (
	"bytes"
	"encoding/binary"

	"github.com/fenilsonani/carray/internal/cerrors"
)

// ShuffleMode selects the pre-compression byte transpose filter.
type ShuffleMode int

const (
	ShuffleNone ShuffleMode = iota
	ShuffleByte
	ShuffleBit
)

// Params is the compression parameter set: level, shuffle filter, codec
// name, and an optional float quantization digit count.
type Params struct {
	Level     int
	Shuffle   ShuffleMode
	CodecName string
	Quantize  int
}

// ThreadPolicy is a threads-on/threads-off setting, carried by Lifecycle.
// No registered codec reads it; Allow only reports what the policy
// permits. Adaptive consults IsMainGoroutine rather than any runtime
// introspection, since Go has no portable notion of "the main thread" that
// a library can query from inside a call — the caller is in the best
// position to say whether it is itself already running on a worker pool.
type ThreadPolicy int

const (
	ThreadsAlways ThreadPolicy = iota
	ThreadsNever
	ThreadsAdaptive
)

// Allow reports whether intra-codec parallelism is permitted, given the
// policy and a caller-supplied "am I the main goroutine" hint. The hint is
// only consulted under ThreadsAdaptive.
func (p ThreadPolicy) Allow(isMainGoroutine bool) bool {
	switch p {
	case ThreadsAlways:
		return true
	case ThreadsNever:
		return false
	default:
		return isMainGoroutine
	}
}

// Lifecycle is a caller-owned handle holding a ThreadPolicy: construct one
// with NewLifecycle and Close it on shutdown. No codec operation takes a
// Lifecycle; the registered codecs are built at package init and held in a
// package-level registry, independent of any Lifecycle.
type Lifecycle struct {
	Threads ThreadPolicy
	closed  bool
}

// NewLifecycle constructs a Lifecycle with the given thread policy.
func NewLifecycle(policy ThreadPolicy) *Lifecycle {
	return &Lifecycle{Threads: policy}
}

// Close releases any resources held by the lifecycle. Safe to call more
// than once.
func (l *Lifecycle) Close() error {
	l.closed = true
	return nil
}

// chooseBlockSize picks the codec's internal block granularity: a multiple
// of itemSize, floored at itemSize, capped so small buffers become a single
// block.
func chooseBlockSize(itemSize, nBytes int) int {
	if itemSize <= 0 {
		itemSize = 1
	}
	const target = 64 * 1024
	bs := (target / itemSize) * itemSize
	if bs < itemSize {
		bs = itemSize
	}
	if nBytes > 0 && bs > nBytes {
		bs = ((nBytes + itemSize - 1) / itemSize) * itemSize
		if bs == 0 {
			bs = itemSize
		}
	}
	return bs
}

// Compress compresses src (nBytes = len(src), a whole number of itemSize-
// sized atoms) per params, returning the self-describing compressed buffer
// and the block size chosen for it.
func Compress(src []byte, itemSize int, params Params) ([]byte, int, error) {
	bc, err := lookup(params.CodecName)
	if err != nil {
		return nil, 0, err
	}
	nBytes := len(src)
	blockSize := chooseBlockSize(itemSize, nBytes)

	work := src
	var flags uint8
	if params.Quantize > 0 && (itemSize == 4 || itemSize == 8) {
		work = make([]byte, nBytes)
		copy(work, src)
		quantizeFloats(work, itemSize, params.Quantize)
		flags |= flagQuantized
	}
	switch params.Shuffle {
	case ShuffleByte:
		flags |= flagShuffleByte
	case ShuffleBit:
		flags |= flagShuffleBit
	}

	numBlocks := 0
	if nBytes > 0 {
		numBlocks = (nBytes + blockSize - 1) / blockSize
	}

	table := make([]byte, 4+4*numBlocks)
	binary.LittleEndian.PutUint32(table[0:4], uint32(numBlocks))

	var payload bytes.Buffer
	offset := 0
	for i := 0; i < numBlocks; i++ {
		end := offset + blockSize
		if end > nBytes {
			end = nBytes
		}
		block := applyShuffle(params.Shuffle, itemSize, work[offset:end])
		compressed, cerr := bc.compressBlock(block, params.Level)
		if cerr != nil {
			return nil, 0, cerr
		}
		binary.LittleEndian.PutUint32(table[4+4*i:8+4*i], uint32(len(compressed)))
		payload.Write(compressed)
		offset = end
	}

	header := make([]byte, headerSize)
	putHeader(header, nBytes, blockSize, itemSize, flags, bc.id())

	full := make([]byte, 0, headerSize+len(table)+payload.Len())
	full = append(full, header...)
	full = append(full, table...)
	full = append(full, payload.Bytes()...)
	return full, blockSize, nil
}

type blockTable struct {
	info     Info
	shuffle  ShuffleMode
	bc       blockCodec
	blockAt  []int // byte offset into src of each compressed block
	blockLen []int // compressed length of each block
}

func parseTable(src []byte) (*blockTable, error) {
	info, err := BufferInfo(src)
	if err != nil {
		return nil, err
	}
	bc, err := lookupByID(info.CodecID)
	if err != nil {
		return nil, err
	}
	if len(src) < headerSize+4 {
		return nil, cerrors.ErrCorruptBuffer
	}
	numBlocks := int(binary.LittleEndian.Uint32(src[headerSize : headerSize+4]))
	tableEnd := headerSize + 4 + 4*numBlocks
	if len(src) < tableEnd {
		return nil, cerrors.ErrCorruptBuffer
	}
	blockAt := make([]int, numBlocks)
	blockLen := make([]int, numBlocks)
	offset := tableEnd
	for i := 0; i < numBlocks; i++ {
		l := int(binary.LittleEndian.Uint32(src[headerSize+4+4*i : headerSize+8+4*i]))
		blockAt[i] = offset
		blockLen[i] = l
		offset += l
	}
	if offset > len(src) {
		return nil, cerrors.ErrCorruptBuffer
	}
	shuffle := ShuffleNone
	if info.Flags&flagShuffleByte != 0 {
		shuffle = ShuffleByte
	} else if info.Flags&flagShuffleBit != 0 {
		shuffle = ShuffleBit
	}
	return &blockTable{info: info, shuffle: shuffle, bc: bc, blockAt: blockAt, blockLen: blockLen}, nil
}

// blockUncompressedLen returns the uncompressed byte length of block i.
func (t *blockTable) blockUncompressedLen(i int) int {
	start := i * t.info.BlockSize
	end := start + t.info.BlockSize
	if end > t.info.NBytes {
		end = t.info.NBytes
	}
	return end - start
}

func (t *blockTable) decodeBlock(src []byte, i int) ([]byte, error) {
	raw := src[t.blockAt[i] : t.blockAt[i]+t.blockLen[i]]
	uLen := t.blockUncompressedLen(i)
	if uLen == 0 {
		return nil, nil
	}
	decoded, err := t.bc.decompressBlock(raw, uLen)
	if err != nil {
		return nil, err
	}
	return undoShuffle(t.shuffle, t.info.TypeSize, decoded), nil
}

// Decompress decompresses the entire buffer src into dst, which must be
// exactly info.NBytes long.
func Decompress(src, dst []byte) error {
	t, err := parseTable(src)
	if err != nil {
		return err
	}
	if len(dst) != t.info.NBytes {
		return cerrors.ErrCorruptBuffer
	}
	off := 0
	for i := range t.blockAt {
		block, err := t.decodeBlock(src, i)
		if err != nil {
			return err
		}
		copy(dst[off:off+len(block)], block)
		off += len(block)
	}
	return nil
}

// DecompressRange decompresses only the items spanning
// [startItem, startItem+nItems) by decoding their containing blocks, and
// writes the result into dst (which must be exactly nItems*itemSize bytes).
func DecompressRange(src []byte, startItem, nItems int, dst []byte) error {
	t, err := parseTable(src)
	if err != nil {
		return err
	}
	itemSize := t.info.TypeSize
	if itemSize <= 0 {
		return cerrors.ErrCorruptBuffer
	}
	startByte := startItem * itemSize
	endByte := startByte + nItems*itemSize
	if startByte < 0 || endByte > t.info.NBytes {
		return cerrors.ErrCorruptBuffer
	}
	if len(dst) != endByte-startByte {
		return cerrors.ErrCorruptBuffer
	}
	firstBlock := startByte / t.info.BlockSize
	lastBlock := (endByte - 1) / t.info.BlockSize
	for i := firstBlock; i <= lastBlock; i++ {
		block, err := t.decodeBlock(src, i)
		if err != nil {
			return err
		}
		blockStart := i * t.info.BlockSize
		blockEnd := blockStart + len(block)
		copyStart := startByte
		if copyStart < blockStart {
			copyStart = blockStart
		}
		copyEnd := endByte
		if copyEnd > blockEnd {
			copyEnd = blockEnd
		}
		copy(dst[copyStart-startByte:copyEnd-startByte], block[copyStart-blockStart:copyEnd-blockStart])
	}
	return nil
}
