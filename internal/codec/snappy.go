package codec

import (
	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/golang/snappy"
)

// snappyCodec adapts the canonical github.com/golang/snappy
// implementation.
type snappyCodec struct{}

func (snappyCodec) id() uint8 { return 3 }

func (snappyCodec) compressBlock(src []byte, level int) ([]byte, error) {
	out := snappy.Encode(nil, src)
	if len(src) > 0 && len(out) == 0 {
		return nil, cerrors.ErrCompressionFailed
	}
	return out, nil
}

func (snappyCodec) decompressBlock(src []byte, uncompressedLen int) ([]byte, error) {
	out, err := snappy.Decode(make([]byte, 0, uncompressedLen), src)
	if err != nil {
		return nil, cerrors.ErrCorruptBuffer
	}
	if len(out) != uncompressedLen {
		return nil, cerrors.ErrCorruptBuffer
	}
	return out, nil
}

func init() {
	register("snappy", 3, snappyCodec{})
}
