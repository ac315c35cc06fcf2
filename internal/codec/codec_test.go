package codec

import (
	"encoding/binary"
	"testing"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/stretchr/testify/require"
)

func makeInts(n int) []byte {
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(i))
	}
	return buf
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	for _, name := range []string{"zstd", "s2", "snappy", "lz4", "zlib"} {
		t.Run(name, func(t *testing.T) {
			src := makeInts(10000)
			compressed, blockSize, err := Compress(src, 4, Params{Level: 5, CodecName: name})
			require.NoError(t, err)
			require.Greater(t, blockSize, 0)

			info, err := BufferInfo(compressed)
			require.NoError(t, err)
			require.Equal(t, len(src), info.NBytes)

			dst := make([]byte, len(src))
			require.NoError(t, Decompress(compressed, dst))
			require.Equal(t, src, dst)
		})
	}
}

func TestCompressShuffleRoundTrip(t *testing.T) {
	src := makeInts(5000)
	for _, mode := range []ShuffleMode{ShuffleNone, ShuffleByte, ShuffleBit} {
		compressed, _, err := Compress(src, 4, Params{Level: 3, CodecName: "zstd", Shuffle: mode})
		require.NoError(t, err)
		dst := make([]byte, len(src))
		require.NoError(t, Decompress(compressed, dst))
		require.Equal(t, src, dst)
	}
}

func TestDecompressRange(t *testing.T) {
	src := makeInts(10000)
	compressed, _, err := Compress(src, 4, Params{Level: 3, CodecName: "zstd"})
	require.NoError(t, err)

	dst := make([]byte, 100*4)
	require.NoError(t, DecompressRange(compressed, 4000, 100, dst))
	require.Equal(t, src[4000*4:4100*4], dst)
}

func TestUnknownCodec(t *testing.T) {
	_, _, err := Compress(makeInts(10), 4, Params{CodecName: "nope"})
	require.ErrorIs(t, err, cerrors.ErrUnknownCodec)
}

func TestThreadPolicyAllow(t *testing.T) {
	require.True(t, ThreadsAlways.Allow(false))
	require.False(t, ThreadsNever.Allow(true))
	require.True(t, ThreadsAdaptive.Allow(true))
	require.False(t, ThreadsAdaptive.Allow(false))
}
