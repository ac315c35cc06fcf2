package codec

import (
	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/pierrec/lz4/v4"
)

// lz4Codec adapts github.com/pierrec/lz4/v4's raw block API, switching to
// the HC compressor at the higher levels.
type lz4Codec struct{}

func (lz4Codec) id() uint8 { return 4 }

func (lz4Codec) compressBlock(src []byte, level int) ([]byte, error) {
	var c lz4.Compressor
	if level >= 7 {
		var hc lz4.CompressorHC
		hc.Level = lz4.CompressionLevel(1 << uint(9+level-7))
		dst := make([]byte, lz4.CompressBlockBound(len(src)))
		n, err := hc.CompressBlock(src, dst)
		if err != nil || (len(src) > 0 && n == 0) {
			return nil, cerrors.ErrCompressionFailed
		}
		return dst[:n], nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := c.CompressBlock(src, dst)
	if err != nil || (len(src) > 0 && n == 0) {
		return nil, cerrors.ErrCompressionFailed
	}
	return dst[:n], nil
}

func (lz4Codec) decompressBlock(src []byte, uncompressedLen int) ([]byte, error) {
	if uncompressedLen == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, uncompressedLen)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, cerrors.ErrCorruptBuffer
	}
	if n != uncompressedLen {
		return nil, cerrors.ErrCorruptBuffer
	}
	return dst, nil
}

func init() {
	register("lz4", 4, lz4Codec{})
}
