package chunk

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/codec"
	"github.com/stretchr/testify/require"
)

func int32s(n int, fill func(i int) int32) []byte {
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(fill(i)))
	}
	return buf
}

func TestFromArrayRoundTrip(t *testing.T) {
	et := NewElementType(KindInt32)
	data := int32s(1000, func(i int) int32 { return int32(i) })

	c, err := FromArray(data, et, 1000, codec.Params{Level: 3, CodecName: "zstd"}, true)
	require.NoError(t, err)
	require.False(t, c.IsConstant)

	dst := make([]byte, len(data))
	require.NoError(t, c.Get(dst, 0, 1000))
	require.Equal(t, data, dst)

	partial := make([]byte, 100*4)
	require.NoError(t, c.Get(partial, 400, 500))
	require.Equal(t, data[400*4:500*4], partial)
}

func TestFromArrayConstantDetection(t *testing.T) {
	et := NewElementType(KindInt32)
	data := int32s(256, func(i int) int32 { return 0 })

	c, err := FromArray(data, et, 256, codec.Params{Level: 3, CodecName: "zstd"}, true)
	require.NoError(t, err)
	require.True(t, c.IsConstant)
	require.Nil(t, c.Compressed)

	dst := make([]byte, 50*4)
	require.NoError(t, c.Get(dst, 10, 60))
	require.Equal(t, data[10*4:60*4], dst)
}

func TestFromArrayBroadcastConstant(t *testing.T) {
	et := NewElementType(KindInt32)
	data := int32s(64, func(i int) int32 { return 7 })

	c, err := FromArray(data, et, 64, codec.Params{Level: 3, CodecName: "zstd"}, true)
	require.NoError(t, err)
	require.True(t, c.IsConstant)
}

func TestFromArrayDiskNeverConstant(t *testing.T) {
	et := NewElementType(KindInt32)
	data := int32s(64, func(i int) int32 { return 0 })

	c, err := FromArray(data, et, 64, codec.Params{Level: 3, CodecName: "zstd"}, false)
	require.NoError(t, err)
	require.False(t, c.IsConstant)
	require.NotNil(t, c.Compressed)
}

func TestFromCompressedBytes(t *testing.T) {
	et := NewElementType(KindInt32)
	data := int32s(500, func(i int) int32 { return int32(i * 2) })
	compressed, _, err := codec.Compress(data, et.CodecTypeSize(), codec.Params{Level: 3, CodecName: "s2"})
	require.NoError(t, err)

	c, err := FromCompressedBytes(compressed, et, 500)
	require.NoError(t, err)
	require.False(t, c.IsConstant)

	dst := make([]byte, len(data))
	require.NoError(t, c.Get(dst, 0, 500))
	require.Equal(t, data, dst)
}

func TestSetNotSupported(t *testing.T) {
	et := NewElementType(KindInt32)
	c, err := FromArray(int32s(8, func(i int) int32 { return int32(i) }), et, 8, codec.Params{Level: 1, CodecName: "zstd"}, true)
	require.NoError(t, err)
	require.ErrorIs(t, c.Set(nil, 0, 0), cerrors.ErrNotSupported)
}

func TestTrueCountBool(t *testing.T) {
	et := NewElementType(KindBool)
	data := make([]byte, 100)
	want := 0
	for i := range data {
		if i%3 == 0 {
			data[i] = 1
			want++
		}
	}
	c, err := FromArray(data, et, 100, codec.Params{Level: 3, CodecName: "zstd"}, true)
	require.NoError(t, err)
	require.False(t, c.IsConstant)

	n, err := c.TrueCount()
	require.NoError(t, err)
	require.Equal(t, want, n)

	// second call hits the cached value, not a fresh decompress
	n2, err := c.TrueCount()
	require.NoError(t, err)
	require.Equal(t, want, n2)
}

func TestTrueCountConstantBool(t *testing.T) {
	et := NewElementType(KindBool)
	allTrue := make([]byte, 32)
	for i := range allTrue {
		allTrue[i] = 1
	}
	c, err := FromArray(allTrue, et, 32, codec.Params{Level: 1, CodecName: "zstd"}, true)
	require.NoError(t, err)
	require.True(t, c.IsConstant)

	n, err := c.TrueCount()
	require.NoError(t, err)
	require.Equal(t, 32, n)
}

func TestTrueCountWrongKind(t *testing.T) {
	et := NewElementType(KindInt32)
	c, err := FromArray(int32s(4, func(i int) int32 { return int32(i) }), et, 4, codec.Params{Level: 1, CodecName: "zstd"}, true)
	require.NoError(t, err)
	_, err = c.TrueCount()
	require.ErrorIs(t, err, cerrors.ErrTypeMismatch)
}

func TestFromPickledObjectRoundTrip(t *testing.T) {
	blob := []byte("a host-serialized value of arbitrary length")
	c, err := FromPickledObject(blob, codec.Params{Level: 3, CodecName: "zstd"})
	require.NoError(t, err)
	require.Equal(t, KindObject, c.ElemType.Kind)
	require.Equal(t, 1, c.ChunkLen)

	got, err := c.GetObject()
	require.NoError(t, err)
	require.Equal(t, blob, got)

	err = c.Get(make([]byte, 0), 0, 0)
	require.ErrorIs(t, err, cerrors.ErrNotSupported)
}

func TestQuantizeRoundsFloatsOnly(t *testing.T) {
	et := NewElementType(KindFloat64)
	data := make([]byte, 4*8)
	vals := []float64{3.14159265, 2.71828182, 1.41421356, 0}
	for i, v := range vals {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	c, err := FromArray(data, et, 4, codec.Params{Level: 3, CodecName: "zstd", Quantize: 3}, false)
	require.NoError(t, err)

	dst := make([]byte, len(data))
	require.NoError(t, c.Get(dst, 0, 4))
	require.Equal(t, 3.14, math.Float64frombits(binary.LittleEndian.Uint64(dst[0:8])))
	require.Equal(t, 2.72, math.Float64frombits(binary.LittleEndian.Uint64(dst[8:16])))
	require.Equal(t, 1.41, math.Float64frombits(binary.LittleEndian.Uint64(dst[16:24])))
	require.Equal(t, 0.0, math.Float64frombits(binary.LittleEndian.Uint64(dst[24:32])))

	// An integer chunk built with the same params is left untouched.
	ints := int32s(4, func(i int) int32 { return int32(i + 1000) })
	ci, err := FromArray(ints, NewElementType(KindInt32), 4, codec.Params{Level: 3, CodecName: "zstd", Quantize: 3}, false)
	require.NoError(t, err)
	idst := make([]byte, len(ints))
	require.NoError(t, ci.Get(idst, 0, 4))
	require.Equal(t, ints, idst)
}

func TestFromArrayWrongLength(t *testing.T) {
	et := NewElementType(KindInt32)
	_, err := FromArray(make([]byte, 10), et, 4, codec.Params{Level: 1, CodecName: "zstd"}, true)
	require.ErrorIs(t, err, cerrors.ErrInvalidArgument)
}

func TestGetOutOfRange(t *testing.T) {
	et := NewElementType(KindInt32)
	c, err := FromArray(int32s(8, func(i int) int32 { return int32(i) }), et, 8, codec.Params{Level: 1, CodecName: "zstd"}, true)
	require.NoError(t, err)
	require.ErrorIs(t, c.Get(make([]byte, 4), 6, 9), cerrors.ErrOutOfRange)
}

func TestFixedStringPartialGet(t *testing.T) {
	et := NewFixedString(KindBytes, 8)
	data := make([]byte, 8*20)
	for i := 0; i < 20; i++ {
		copy(data[i*8:], []byte{byte(i), byte(i), byte(i), byte(i), byte(i), byte(i), byte(i), byte(i)})
	}
	c, err := FromArray(data, et, 20, codec.Params{Level: 1, CodecName: "zstd"}, true)
	require.NoError(t, err)
	require.False(t, c.IsConstant)

	dst := make([]byte, 8*5)
	require.NoError(t, c.Get(dst, 10, 15))
	require.Equal(t, data[10*8:15*8], dst)
}

func TestGobObjectCodecRoundTrip(t *testing.T) {
	type payload struct {
		Name string
		N    int
	}
	codecObj := NewGobObjectCodec()
	enc, err := codecObj.Encode(payload{Name: "x", N: 42})
	require.NoError(t, err)

	var out payload
	require.NoError(t, codecObj.Decode(enc, &out))
	require.Equal(t, payload{Name: "x", N: 42}, out)
}
