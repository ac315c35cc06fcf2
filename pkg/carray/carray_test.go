package carray

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fenilsonani/carray/internal/chunk"
	"github.com/stretchr/testify/require"
)

func i32Bytes(vals ...int32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func u16Bytes(vals ...uint16) []byte {
	buf := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

func f64Bytes(vals ...float64) []byte {
	buf := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func i8Bytes(vals ...int8) []byte {
	buf := make([]byte, len(vals))
	for i, v := range vals {
		buf[i] = byte(v)
	}
	return buf
}

func boolBytes(vals ...bool) []byte {
	buf := make([]byte, len(vals))
	for i, v := range vals {
		if v {
			buf[i] = 1
		}
	}
	return buf
}

func readI32(t *testing.T, a *CArray, p int) int32 {
	t.Helper()
	dst := make([]byte, 4)
	require.NoError(t, a.GetAt(p, dst))
	return int32(binary.LittleEndian.Uint32(dst))
}

// Scenario 1: 1,000,000 32-bit signed integers built from a range.
func TestEndToEndRangeSumInt32(t *testing.T) {
	n := 1_000_000
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(i))
	}
	a, err := New(data, chunk.NewElementType(chunk.KindInt32), 0, DefaultParams())
	require.NoError(t, err)

	ln, err := a.Len()
	require.NoError(t, err)
	require.Equal(t, n, ln)
	require.Equal(t, int32(0), readI32(t, a, 0))
	require.Equal(t, int32(999_999), readI32(t, a, n-1))

	sum, err := a.Sum()
	require.NoError(t, err)
	require.False(t, sum.IsFloat)
	require.Equal(t, int64(499_999_500_000), sum.Int64)
}

// Scenario 2: constant all-zero float64 chunk.
func TestEndToEndConstantFloat64Chunk(t *testing.T) {
	n := 10_000
	vals := make([]float64, n)
	data := f64Bytes(vals...)

	a, err := New(data, chunk.NewElementType(chunk.KindFloat64), 0, DefaultParams())
	require.NoError(t, err)

	nchunks, err := a.nchunks()
	require.NoError(t, err)
	require.Equal(t, 1, nchunks)
	c, err := a.store.Get(0)
	require.NoError(t, err)
	require.True(t, c.IsConstant)
	require.Nil(t, c.Compressed)
	require.Less(t, len(c.ConstantValue)+8, 1024)

	dst := make([]byte, 8)
	require.NoError(t, a.GetAt(5_000, dst))
	require.Equal(t, 0.0, math.Float64frombits(binary.LittleEndian.Uint64(dst)))

	sum, err := a.Sum()
	require.NoError(t, err)
	require.True(t, sum.IsFloat)
	require.Equal(t, 0.0, sum.Float64)
}

// Scenario 3: one-row-at-a-time append with wraparound mod-7 values,
// then a disk round trip.
func TestEndToEndAppendOneRowAtATimeWithDiskRoundTrip(t *testing.T) {
	root := filepath.Join(t.TempDir(), "arr")
	a, err := Create(root, nil, chunk.NewElementType(chunk.KindUint16), 256, DefaultParams(), nil)
	require.NoError(t, err)

	for i := 0; i < 1_000; i++ {
		require.NoError(t, a.Append(u16Bytes(uint16(i%7))))
	}
	require.NoError(t, a.Close())

	reopened, err := Open(root, ModeAppend)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Len()
	require.NoError(t, err)
	require.Equal(t, 1_000, n)

	dst := make([]byte, 2)
	require.NoError(t, reopened.GetAt(257, dst))
	require.Equal(t, uint16(257%7), binary.LittleEndian.Uint16(dst))

	for i := 0; i < 1_000; i++ {
		require.NoError(t, reopened.GetAt(i, dst))
		require.Equal(t, uint16(i%7), binary.LittleEndian.Uint16(dst))
	}
}

// Scenario 4: persistent trim leaving exactly 9 chunk files.
func TestEndToEndPersistentTrimLeavesExpectedChunkFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "arr")
	n := 5_000
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(i*i))
	}
	a, err := Create(root, data, chunk.NewElementType(chunk.KindInt32), 500, DefaultParams(), nil)
	require.NoError(t, err)

	require.NoError(t, a.Trim(750))
	ln, err := a.Len()
	require.NoError(t, err)
	require.Equal(t, 4_250, ln)
	require.Equal(t, int32(4_249*4_249), readI32(t, a, 4_249))
	require.NoError(t, a.Close())

	entries, err := os.ReadDir(filepath.Join(root, "data"))
	require.NoError(t, err)
	require.Len(t, entries, 9)
}

// Scenario 5: wheretrue with skip/limit over a multiple-of-17 mask.
// Index 0 is excluded so the hits are 17, 34, 51, 68, …: skip=3 consumes
// the first three and limit=5 bounds the emitted indices to 68..136.
func TestEndToEndWhereTrueSkipLimit(t *testing.T) {
	n := 10_000
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = i != 0 && i%17 == 0
	}
	a, err := New(boolBytes(mask...), chunk.NewElementType(chunk.KindBool), 0, DefaultParams())
	require.NoError(t, err)

	it, err := a.WhereTrue(5, 3)
	require.NoError(t, err)
	var got []int
	for {
		idx, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, idx)
	}
	require.Equal(t, []int{4 * 17, 5 * 17, 6 * 17, 7 * 17, 8 * 17}, got)
}

// Iter with both a positive skip and a positive limit must yield exactly
// limit atoms, counted after the skipped positions are consumed.
func TestIterSkipAndLimitTogetherYieldsExactlyLimit(t *testing.T) {
	n := 100
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(i))
	}
	a, err := New(data, chunk.NewElementType(chunk.KindInt32), 0, DefaultParams())
	require.NoError(t, err)

	it, err := a.Iter(0, n, 1, 5, 3)
	require.NoError(t, err)
	var got []int32
	for {
		atom, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, int32(binary.LittleEndian.Uint32(atom)))
	}
	require.Equal(t, []int32{3, 4, 5, 6, 7}, got)
}

// Scenario 6: boolean-mask scalar assignment.
func TestEndToEndBooleanMaskAssignment(t *testing.T) {
	n := 100
	vals := make([]int8, n)
	for i := range vals {
		vals[i] = int8(i % 4)
	}
	a, err := New(i8Bytes(vals...), chunk.NewElementType(chunk.KindInt8), 0, DefaultParams())
	require.NoError(t, err)

	mask := make([]bool, n)
	for i, v := range vals {
		mask[i] = v < 2
	}
	trueCount := 0
	for _, b := range mask {
		if b {
			trueCount++
		}
	}
	fill := make([]byte, trueCount)
	for i := range fill {
		fill[i] = 99
	}
	require.NoError(t, a.SetMasked(mask, fill))

	got, err := a.GetSlice(0, n, 1)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		want := int8(i % 4)
		if want < 2 {
			want = 99
		}
		require.Equal(t, want, int8(got[i]), "index %d", i)
	}
}

func TestAppendPromotesTailExactlyAtChunkLen(t *testing.T) {
	a, err := New(nil, chunk.NewElementType(chunk.KindInt32), 4, DefaultParams())
	require.NoError(t, err)
	require.NoError(t, a.Append(i32Bytes(1, 2)))
	require.Equal(t, 2, a.leftoverRows)

	require.NoError(t, a.Append(i32Bytes(3, 4)))
	require.Equal(t, 0, a.leftoverRows)
	nchunks, err := a.nchunks()
	require.NoError(t, err)
	require.Equal(t, 1, nchunks)
}

func TestTrimExactlyLeftoverRowsEmptiesTailOnly(t *testing.T) {
	a, err := New(i32Bytes(1, 2, 3, 4, 5, 6), chunk.NewElementType(chunk.KindInt32), 4, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, 2, a.leftoverRows)

	require.NoError(t, a.Trim(2))
	require.Equal(t, 0, a.leftoverRows)
	nchunks, err := a.nchunks()
	require.NoError(t, err)
	require.Equal(t, 1, nchunks)
	ln, err := a.Len()
	require.NoError(t, err)
	require.Equal(t, 4, ln)
}

func TestResizeUpFillsWithDefault(t *testing.T) {
	dflt := i32Bytes(42)
	root := filepath.Join(t.TempDir(), "arr")
	a, err := Create(root, i32Bytes(1, 2, 3), chunk.NewElementType(chunk.KindInt32), 4, DefaultParams(), dflt)
	require.NoError(t, err)

	require.NoError(t, a.Resize(6))
	ln, err := a.Len()
	require.NoError(t, err)
	require.Equal(t, 6, ln)
	require.Equal(t, int32(42), readI32(t, a, 3))
	require.Equal(t, int32(42), readI32(t, a, 5))
}

func TestResizeDownTruncates(t *testing.T) {
	a, err := New(i32Bytes(1, 2, 3, 4, 5), chunk.NewElementType(chunk.KindInt32), 4, DefaultParams())
	require.NoError(t, err)
	require.NoError(t, a.Resize(2))
	ln, err := a.Len()
	require.NoError(t, err)
	require.Equal(t, 2, ln)
	require.Equal(t, int32(2), readI32(t, a, 1))
}

func TestReshapeInfersSingleMinusOne(t *testing.T) {
	a, err := New(i32Bytes(1, 2, 3, 4, 5, 6), chunk.NewElementType(chunk.KindInt32), 0, DefaultParams())
	require.NoError(t, err)
	reshaped, err := a.Reshape([]int{2, -1})
	require.NoError(t, err)
	shape, err := reshaped.Shape()
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, shape)
}

func TestConstantChunkDetectionStrideZeroAndAllZero(t *testing.T) {
	allZero, err := New(i32Bytes(0, 0, 0, 0), chunk.NewElementType(chunk.KindInt32), 4, DefaultParams())
	require.NoError(t, err)
	c, err := allZero.store.Get(0)
	require.NoError(t, err)
	require.True(t, c.IsConstant)

	stride0, err := New(i32Bytes(7, 7, 7, 7), chunk.NewElementType(chunk.KindInt32), 4, DefaultParams())
	require.NoError(t, err)
	c2, err := stride0.store.Get(0)
	require.NoError(t, err)
	require.True(t, c2.IsConstant)
	dst := make([]byte, 4)
	require.NoError(t, stride0.GetAt(2, dst))
	require.Equal(t, int32(7), int32(binary.LittleEndian.Uint32(dst)))
}

func TestBlockCacheInterleavedReadsInAndOutOfBlock(t *testing.T) {
	n := 2048
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(i))
	}
	a, err := New(data, chunk.NewElementType(chunk.KindInt32), n, DefaultParams())
	require.NoError(t, err)

	order := []int{0, 1, 500, 1, 1999, 0, 1024}
	for _, p := range order {
		require.Equal(t, int32(p), readI32(t, a, p))
	}
}

func TestOpenModeWriteTruncatesToZero(t *testing.T) {
	root := filepath.Join(t.TempDir(), "arr")
	a, err := Create(root, i32Bytes(1, 2, 3), chunk.NewElementType(chunk.KindInt32), 2, DefaultParams(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	w, err := Open(root, ModeWrite)
	require.NoError(t, err)
	defer w.Close()
	n, err := w.Len()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestReadOnlyModeRejectsMutation(t *testing.T) {
	root := filepath.Join(t.TempDir(), "arr")
	a, err := Create(root, i32Bytes(1, 2, 3), chunk.NewElementType(chunk.KindInt32), 2, DefaultParams(), nil)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	ro, err := Open(root, ModeRead)
	require.NoError(t, err)
	defer ro.Close()
	require.True(t, ro.IsReadOnly())
	require.ErrorIs(t, ro.Append(i32Bytes(9)), ErrReadOnly)
}

func TestPersistentRoundTripPreservesMetadata(t *testing.T) {
	root := filepath.Join(t.TempDir(), "arr")
	params := Params{Level: 7, Shuffle: DefaultParams().Shuffle, CodecName: "s2"}
	a, err := Create(root, i32Bytes(1, 2, 3, 4, 5), chunk.NewElementType(chunk.KindInt32), 2, params, i32Bytes(-1))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened, err := Open(root, ModeAppend)
	require.NoError(t, err)
	defer reopened.Close()

	shape1, err := a.Shape()
	require.NoError(t, err)
	shape2, err := reopened.Shape()
	require.NoError(t, err)
	require.Equal(t, shape1, shape2)
	require.Equal(t, a.ElementType().String(), reopened.ElementType().String())
	require.Equal(t, a.ChunkLen(), reopened.ChunkLen())

	got, err := reopened.GetSlice(0, 5, 1)
	require.NoError(t, err)
	require.Equal(t, i32Bytes(1, 2, 3, 4, 5), got)
}

func TestAttrsPersistAcrossReopen(t *testing.T) {
	root := filepath.Join(t.TempDir(), "arr")
	a, err := Create(root, i32Bytes(1, 2, 3), chunk.NewElementType(chunk.KindInt32), 2, DefaultParams(), nil)
	require.NoError(t, err)
	require.NoError(t, a.SetAttr("owner", "alice"))
	require.NoError(t, a.SetAttr("epoch", 7))
	require.NoError(t, a.Close())

	reopened, err := Open(root, ModeRead)
	require.NoError(t, err)
	defer reopened.Close()

	s, ok := reopened.GetStringAttr("owner")
	require.True(t, ok)
	require.Equal(t, "alice", s)
	n, ok := reopened.GetIntAttr("epoch")
	require.True(t, ok)
	require.Equal(t, int64(7), n)
	_, ok = reopened.GetFloatAttr("missing")
	require.False(t, ok)
}

func TestObjectArrayAppendGetTrim(t *testing.T) {
	a, err := NewObjectArray(DefaultParams())
	require.NoError(t, err)

	codecObj := chunk.NewGobObjectCodec()
	for _, s := range []string{"alpha", "beta", "gamma"} {
		blob, err := codecObj.Encode(s)
		require.NoError(t, err)
		require.NoError(t, a.AppendObject(blob))
	}

	n, err := a.Len()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	blob, err := a.GetObjectAt(1)
	require.NoError(t, err)
	var got string
	require.NoError(t, codecObj.Decode(blob, &got))
	require.Equal(t, "beta", got)

	require.ErrorIs(t, a.Append(i32Bytes(1)), ErrNotSupported)

	require.NoError(t, a.Trim(2))
	n, err = a.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestViewSharesStoreNotCache(t *testing.T) {
	a, err := New(i32Bytes(1, 2, 3, 4), chunk.NewElementType(chunk.KindInt32), 4, DefaultParams())
	require.NoError(t, err)
	v := a.View()
	require.Equal(t, int32(2), readI32(t, v, 1))
	require.Same(t, a.store, v.store)
	require.Equal(t, cacheValid, v.cache.state)
	require.Equal(t, cacheEmpty, a.cache.state)
}
