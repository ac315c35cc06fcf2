package codec

import (
	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/klauspost/compress/s2"
)

// s2Codec adapts github.com/klauspost/compress/s2, a Snappy-compatible
// but faster codec from the same module as the zstd backend.
type s2Codec struct{}

func (s2Codec) id() uint8 { return 2 }

func (s2Codec) compressBlock(src []byte, level int) ([]byte, error) {
	var out []byte
	if level >= 7 {
		out = s2.EncodeBetter(nil, src)
	} else {
		out = s2.Encode(nil, src)
	}
	if len(src) > 0 && len(out) == 0 {
		return nil, cerrors.ErrCompressionFailed
	}
	return out, nil
}

func (s2Codec) decompressBlock(src []byte, uncompressedLen int) ([]byte, error) {
	out := make([]byte, uncompressedLen)
	dst, err := s2.Decode(out, src)
	if err != nil {
		return nil, cerrors.ErrCorruptBuffer
	}
	if len(dst) != uncompressedLen {
		return nil, cerrors.ErrCorruptBuffer
	}
	return dst, nil
}

func init() {
	register("s2", 2, s2Codec{})
}
