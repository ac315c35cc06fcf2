package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
	"github.com/fenilsonani/carray/internal/codec"
	"github.com/stretchr/testify/require"
)

var testElemType = chunk.NewElementType(chunk.KindInt32)

const testChunkLen = 4

func makeChunk(t *testing.T, fill byte) *chunk.Chunk {
	t.Helper()
	data := make([]byte, testChunkLen*4)
	for i := range data {
		data[i] = fill
	}
	c, err := chunk.FromArray(data, testElemType, testChunkLen, codec.Params{Level: 3, CodecName: "zstd"}, false)
	require.NoError(t, err)
	require.False(t, c.IsConstant)
	return c
}

func TestMemStoreAppendGetPop(t *testing.T) {
	s := NewMemStore()

	c0 := makeChunk(t, 0)
	c1 := makeChunk(t, 1)

	i0, err := s.Append(c0)
	require.NoError(t, err)
	require.Equal(t, 0, i0)

	i1, err := s.Append(c1)
	require.NoError(t, err)
	require.Equal(t, 1, i1)

	n, err := s.Len()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := s.Get(0)
	require.NoError(t, err)
	require.Same(t, c0, got)

	c0b := makeChunk(t, 9)
	require.NoError(t, s.Set(0, c0b))
	got, err = s.Get(0)
	require.NoError(t, err)
	require.Same(t, c0b, got)

	require.NoError(t, s.Pop())
	n, err = s.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = s.Get(5)
	require.ErrorIs(t, err, cerrors.ErrOutOfRange)
}

func TestMemStoreReadOnly(t *testing.T) {
	s := NewMemStore()
	s.SetReadOnly(true)
	_, err := s.Append(makeChunk(t, 0))
	require.ErrorIs(t, err, cerrors.ErrReadOnly)
}

func TestMemStoreTail(t *testing.T) {
	s := NewMemStore()
	tail := makeChunk(t, 7)
	require.NoError(t, s.FlushTail(tail))
	got, err := s.Tail()
	require.NoError(t, err)
	require.Same(t, tail, got)
}

func newDiskStore(t *testing.T) (*DiskStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := OpenDiskStore(filepath.Join(dir, "data"), false, testElemType, testChunkLen)
	require.NoError(t, err)
	return s, filepath.Join(dir, "data")
}

func TestDiskStoreAppendGetPop(t *testing.T) {
	s, _ := newDiskStore(t)

	for i := 0; i < 5; i++ {
		idx, err := s.Append(makeChunk(t, byte(i)))
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}

	n, err := s.Len()
	require.NoError(t, err)
	require.Equal(t, 5, n)

	got, err := s.Get(3)
	require.NoError(t, err)
	dst := make([]byte, testChunkLen*4)
	require.NoError(t, got.Get(dst, 0, testChunkLen))
	for _, b := range dst {
		require.Equal(t, byte(3), b)
	}

	require.NoError(t, s.Pop())
	n, err = s.Len()
	require.NoError(t, err)
	require.Equal(t, 4, n)

	_, err = s.Get(4)
	require.ErrorIs(t, err, cerrors.ErrOutOfRange)
}

func TestDiskStoreReopenRescansCount(t *testing.T) {
	s, root := newDiskStore(t)
	for i := 0; i < 3; i++ {
		_, err := s.Append(makeChunk(t, byte(i)))
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	reopened, err := OpenDiskStore(root, false, testElemType, testChunkLen)
	require.NoError(t, err)
	n, err := reopened.Len()
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestDiskStoreUnknownChunkCountFieldIsTolerated(t *testing.T) {
	s, _ := newDiskStore(t)
	for i := 0; i < 4; i++ {
		_, err := s.Append(makeChunk(t, byte(i)))
		require.NoError(t, err)
	}

	// Rewrite chunk 2's pack header with an unknown (-1) chunk-count
	// field: reads must tolerate it rather than treating it as
	// corruption.
	raw, err := os.ReadFile(s.chunkPath(2))
	require.NoError(t, err)
	hdr := encodePackHeader(packHeader{version: packFormatVersion, nchunks: -1})
	require.NoError(t, writeFileAtomic(s.chunkPath(2), append(hdr, raw[headerLen:]...)))
	s.FreeCache()

	got, err := s.Get(2)
	require.NoError(t, err)
	dst := make([]byte, testChunkLen*4)
	require.NoError(t, got.Get(dst, 0, testChunkLen))
	require.Equal(t, byte(2), dst[0])
}

func TestDiskStoreSet(t *testing.T) {
	s, _ := newDiskStore(t)
	_, err := s.Append(makeChunk(t, 1))
	require.NoError(t, err)

	require.NoError(t, s.Set(0, makeChunk(t, 2)))
	got, err := s.Get(0)
	require.NoError(t, err)
	dst := make([]byte, testChunkLen*4)
	require.NoError(t, got.Get(dst, 0, testChunkLen))
	require.Equal(t, byte(2), dst[0])
}

func TestDiskStoreReadOnlyRejectsMutation(t *testing.T) {
	_, root := newDiskStore(t)
	ro, err := OpenDiskStore(root, true, testElemType, testChunkLen)
	require.NoError(t, err)
	require.True(t, ro.ReadOnly())

	_, err = ro.Append(makeChunk(t, 0))
	require.ErrorIs(t, err, cerrors.ErrReadOnly)

	err = ro.FlushTail(makeChunk(t, 0))
	require.ErrorIs(t, err, cerrors.ErrReadOnly)
}

func TestDiskStoreTailRoundTrip(t *testing.T) {
	s, _ := newDiskStore(t)
	tail := makeChunk(t, 9)
	require.NoError(t, s.FlushTail(tail))

	got, err := s.Tail()
	require.NoError(t, err)
	dst := make([]byte, testChunkLen*4)
	require.NoError(t, got.Get(dst, 0, testChunkLen))
	require.Equal(t, byte(9), dst[0])
}

func TestDiskStoreTailAbsentIsEmpty(t *testing.T) {
	s, _ := newDiskStore(t)
	tail, err := s.Tail()
	require.NoError(t, err)
	require.Nil(t, tail)
}

func TestDiskStorePopRemovesStaleTail(t *testing.T) {
	s, _ := newDiskStore(t)
	_, err := s.Append(makeChunk(t, 1))
	require.NoError(t, err)
	require.NoError(t, s.FlushTail(makeChunk(t, 2)))

	require.NoError(t, s.Pop())
	tail, err := s.Tail()
	require.NoError(t, err)
	require.Nil(t, tail)
}

func TestDiskStoreDetectsFlippedBitViaChecksum(t *testing.T) {
	s, _ := newDiskStore(t)
	_, err := s.Append(makeChunk(t, 1))
	require.NoError(t, err)

	raw, err := os.ReadFile(s.chunkPath(0))
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF // flip every bit of the codec payload's last byte
	require.NoError(t, writeFileAtomic(s.chunkPath(0), raw))
	s.FreeCache()

	_, err = s.Get(0)
	require.ErrorIs(t, err, cerrors.ErrCorruptBuffer)
}
