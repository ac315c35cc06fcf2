package codec

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/fenilsonani/carray/internal/cerrors"
)

// zlibCodec wraps the standard library's compress/zlib as the lowest
// common denominator codec: no external binary format, no CGO.
type zlibCodec struct{}

func (zlibCodec) id() uint8 { return 5 }

func (zlibCodec) compressBlock(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zlibLevel := level
	if zlibLevel < zlib.BestSpeed {
		zlibLevel = zlib.DefaultCompression
	}
	if zlibLevel > zlib.BestCompression {
		zlibLevel = zlib.BestCompression
	}
	w, err := zlib.NewWriterLevel(&buf, zlibLevel)
	if err != nil {
		return nil, cerrors.ErrCompressionFailed
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, cerrors.ErrCompressionFailed
	}
	if err := w.Close(); err != nil {
		return nil, cerrors.ErrCompressionFailed
	}
	return buf.Bytes(), nil
}

func (zlibCodec) decompressBlock(src []byte, uncompressedLen int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, cerrors.ErrCorruptBuffer
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, cerrors.ErrCorruptBuffer
	}
	if len(out) != uncompressedLen {
		return nil, cerrors.ErrCorruptBuffer
	}
	return out, nil
}

func init() {
	register("zlib", 5, zlibCodec{})
}
