// Package store implements the chunk store: the capability-set
// abstraction over where a CArray's compressed chunk bytes actually live,
// plus the two concrete backings, MemStore and DiskStore.
package store

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/fenilsonani/carray/internal/cerrors"
)

// packMagic identifies the pack header below.
var packMagic = [4]byte{'b', 'l', 'p', 'k'}

const packFormatVersion = 1

const headerLen = 16

// packHeader is the exact 16-byte, little-endian header written before
// every chunk file's codec buffer: magic, format version, 3 reserved
// zero bytes, then a signed 64-bit chunk count. Every file this store
// writes holds exactly one chunk, so nchunks is always 1; -1 marks a
// file whose chunk count is unknown, which decodePackHeader accepts
// alongside 1 instead of treating it as corruption.
type packHeader struct {
	version uint8
	nchunks int64
}

func encodePackHeader(h packHeader) []byte {
	buf := make([]byte, headerLen)
	copy(buf[0:4], packMagic[:])
	buf[4] = h.version
	// buf[5:8] reserved, left zero
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.nchunks))
	return buf
}

func decodePackHeader(buf []byte) (packHeader, error) {
	if len(buf) < headerLen || buf[0] != packMagic[0] || buf[1] != packMagic[1] || buf[2] != packMagic[2] || buf[3] != packMagic[3] {
		return packHeader{}, cerrors.ErrCorruptBuffer
	}
	nchunks := int64(binary.LittleEndian.Uint64(buf[8:16]))
	if nchunks != 1 && nchunks != -1 {
		return packHeader{}, cerrors.ErrCorruptBuffer
	}
	return packHeader{version: buf[4], nchunks: nchunks}, nil
}

// checksumLen is the width of the xxhash64 integrity checksum stored
// immediately after the 16-byte pack header and before the codec buffer.
// A chunk file's length on disk is therefore
// headerLen + checksumLen + ctbytes.
const checksumLen = 8

// encodeChecksum returns the 8-byte little-endian xxhash64 digest of the
// codec buffer payload.
func encodeChecksum(payload []byte) []byte {
	buf := make([]byte, checksumLen)
	binary.LittleEndian.PutUint64(buf, xxhash.Sum64(payload))
	return buf
}

// verifyChecksum reports whether want (as stored on disk) matches the
// digest of payload.
func verifyChecksum(want []byte, payload []byte) bool {
	if len(want) != checksumLen {
		return false
	}
	return binary.LittleEndian.Uint64(want) == xxhash.Sum64(payload)
}
