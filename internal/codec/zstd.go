package codec

import (
	"sync"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/klauspost/compress/zstd"
)

// zstdCodec adapts github.com/klauspost/compress/zstd to blockCodec,
// pooling encoders and decoders since their allocation is not cheap.
// Encoders are pooled per zstd level, since the level is fixed at
// construction time.
type zstdCodec struct {
	mu       sync.Mutex
	encoders map[zstd.EncoderLevel]*sync.Pool
	decoders sync.Pool
}

func newZstdCodec() *zstdCodec {
	z := &zstdCodec{encoders: map[zstd.EncoderLevel]*sync.Pool{}}
	z.decoders = sync.Pool{
		New: func() interface{} {
			d, _ := zstd.NewReader(nil)
			return d
		},
	}
	return z
}

func (z *zstdCodec) id() uint8 { return 1 }

func (z *zstdCodec) encoderPool(level zstd.EncoderLevel) *sync.Pool {
	z.mu.Lock()
	defer z.mu.Unlock()
	p, ok := z.encoders[level]
	if !ok {
		p = &sync.Pool{
			New: func() interface{} {
				e, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
				return e
			},
		}
		z.encoders[level] = p
	}
	return p
}

func (z *zstdCodec) compressBlock(src []byte, level int) ([]byte, error) {
	pool := z.encoderPool(levelToZstd(level))
	ev := pool.Get()
	enc, ok := ev.(*zstd.Encoder)
	if !ok || enc == nil {
		return nil, cerrors.ErrCompressionFailed
	}
	defer pool.Put(enc)
	out := enc.EncodeAll(src, nil)
	if len(src) > 0 && len(out) == 0 {
		return nil, cerrors.ErrCompressionFailed
	}
	return out, nil
}

func (z *zstdCodec) decompressBlock(src []byte, uncompressedLen int) ([]byte, error) {
	dv := z.decoders.Get()
	dec, ok := dv.(*zstd.Decoder)
	if !ok || dec == nil {
		return nil, cerrors.ErrCorruptBuffer
	}
	defer z.decoders.Put(dec)
	out, err := dec.DecodeAll(src, make([]byte, 0, uncompressedLen))
	if err != nil {
		return nil, cerrors.ErrCorruptBuffer
	}
	if len(out) != uncompressedLen {
		return nil, cerrors.ErrCorruptBuffer
	}
	return out, nil
}

func levelToZstd(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 4:
		return zstd.SpeedDefault
	case level <= 7:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

func init() {
	register("zstd", 1, newZstdCodec())
}
