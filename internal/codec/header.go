package codec

import (
	"encoding/binary"

	"github.com/fenilsonani/carray/internal/cerrors"
)

// headerSize is the width of the self-describing buffer header that
// precedes every compressed payload produced by Compress. It carries enough
// information for BufferInfo to be answered without touching the codec
// registry.
const headerSize = 16

// flag bits stored in the header's Flags byte.
const (
	flagShuffleByte = 1 << 0
	flagShuffleBit  = 1 << 1
	flagQuantized   = 1 << 2
)

const headerVersion = 1

// Info is the decoded form of a compressed buffer's header: the sizes
// and codec identity needed to decompress it without guessing.
type Info struct {
	NBytes    int
	CBytes    int
	BlockSize int
	TypeSize  int
	Flags     uint8
	Version   uint8
	CodecID   uint8
}

// putHeader writes the 16-byte self-describing header into dst[:16].
func putHeader(dst []byte, nbytes, blockSize, typeSize int, flags uint8, codecID uint8) {
	_ = dst[headerSize-1]
	binary.LittleEndian.PutUint32(dst[0:4], uint32(nbytes))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(blockSize))
	binary.LittleEndian.PutUint16(dst[8:10], uint16(typeSize))
	dst[10] = flags
	dst[11] = headerVersion
	dst[12] = codecID
	dst[13] = 0
	dst[14] = 0
	dst[15] = 0
}

// BufferInfo decodes the header of a compressed buffer produced by
// Compress, without decompressing the payload.
func BufferInfo(src []byte) (Info, error) {
	if len(src) < headerSize {
		return Info{}, cerrors.ErrCorruptBuffer
	}
	info := Info{
		NBytes:    int(binary.LittleEndian.Uint32(src[0:4])),
		BlockSize: int(binary.LittleEndian.Uint32(src[4:8])),
		TypeSize:  int(binary.LittleEndian.Uint16(src[8:10])),
		Flags:     src[10],
		Version:   src[11],
		CodecID:   src[12],
		CBytes:    len(src),
	}
	return info, nil
}
