// Package chunk implements the immutable compressed chunk: one fixed-size
// run of elements of a single element type, optionally stored symbolically
// as a constant instead of compressed bytes.
package chunk

import (
	"fmt"

	"github.com/fenilsonani/carray/internal/cerrors"
)

// Kind enumerates the supported element kinds.
type Kind uint8

const (
	KindInt8 Kind = iota
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindBytes  // fixed-length byte string
	KindUCS4   // fixed-length UCS-4 string
	KindOpaque // fixed-size opaque composite record
	KindObject // "O": variable-length opaque, one element per chunk
)

// maxCodecTypeSize is the widest opaque atom handed to the codec as a
// single type-size item; wider opaque atoms fall back to a
// byte-granular typesize of 1.
const maxCodecTypeSize = 255

// baseItemSize returns the per-scalar size in bytes for the built-in kinds.
// KindBytes/KindUCS4/KindOpaque/KindObject carry their own size separately
// (see ElementType).
func (k Kind) baseItemSize() int {
	switch k {
	case KindInt8, KindUint8, KindBool:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

func (k Kind) IsInteger() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	default:
		return false
	}
}

// ElementType is a fixed-size record description: ItemSize bytes per
// scalar, Dims the trailing (non-leading) shape dimensions folded into
// the atom.
type ElementType struct {
	Kind     Kind
	ItemSize int // bytes per scalar; 0 means "use Kind's intrinsic size"
	Dims     []int
}

// NewElementType builds an ElementType for one of the fixed-width built-in
// kinds.
func NewElementType(k Kind, dims ...int) ElementType {
	return ElementType{Kind: k, ItemSize: k.baseItemSize(), Dims: append([]int(nil), dims...)}
}

// NewFixedString builds a fixed-length byte-string or UCS-4 ElementType.
func NewFixedString(k Kind, length int) ElementType {
	unit := 1
	if k == KindUCS4 {
		unit = 4
	}
	return ElementType{Kind: k, ItemSize: unit, Dims: []int{length}}
}

// NewOpaque builds a fixed-size opaque composite ElementType of the given
// byte size.
func NewOpaque(size int) ElementType {
	return ElementType{Kind: KindOpaque, ItemSize: size}
}

// NewObject builds the variable-length opaque ("O") ElementType.
func NewObject() ElementType {
	return ElementType{Kind: KindObject, ItemSize: 0}
}

// trailingCount returns the product of the trailing dims (1 if none).
func (e ElementType) trailingCount() int {
	n := 1
	for _, d := range e.Dims {
		n *= d
	}
	return n
}

// AtomSize is the number of bytes in one logical row, folding in all
// trailing shape dimensions.
func (e ElementType) AtomSize() int {
	return e.ItemSize * e.trailingCount()
}

// CodecTypeSize is the item size handed to the compression codec: 1 for
// fixed byte strings, 4 for UCS-4, the base scalar size for numeric/bool
// kinds, and a fallback of 1 for any opaque atom wider than
// maxCodecTypeSize.
func (e ElementType) CodecTypeSize() int {
	switch e.Kind {
	case KindBytes:
		return 1
	case KindUCS4:
		return 4
	case KindOpaque:
		if e.AtomSize() > maxCodecTypeSize {
			return 1
		}
		return e.AtomSize()
	default:
		size := e.ItemSize
		if size <= 0 {
			size = 1
		}
		return size
	}
}

// Validate rejects atoms too wide to address: atom size must be < 2^31.
func (e ElementType) Validate() error {
	if e.AtomSize() >= (1 << 31) {
		return cerrors.ErrTypeTooLarge
	}
	return nil
}

// itemsPerAtom is the number of codec-granularity items (CodecTypeSize
// bytes each) that make up one atom. It lets Chunk.Get translate a row
// range into the item range codec.DecompressRange expects, regardless of
// whether the codec sees whole atoms (scalars), sub-atom units (fixed
// strings), or a single oversized opaque blob split into byte-items.
func (e ElementType) itemsPerAtom() int {
	cts := e.CodecTypeSize()
	if cts <= 0 {
		return 1
	}
	return e.AtomSize() / cts
}

// String renders the canonical dtype descriptor persisted in
// meta/storage: i1/i2/i4/i8, u1/u2/u4/u8, f4/f8, b1 for the fixed-width kinds,
// S<n>/U<n> for fixed-length byte/UCS-4 strings, V<n> for opaque records,
// and O for the variable-length opaque kind.
func (e ElementType) String() string {
	switch e.Kind {
	case KindInt8:
		return "i1"
	case KindInt16:
		return "i2"
	case KindInt32:
		return "i4"
	case KindInt64:
		return "i8"
	case KindUint8:
		return "u1"
	case KindUint16:
		return "u2"
	case KindUint32:
		return "u4"
	case KindUint64:
		return "u8"
	case KindFloat32:
		return "f4"
	case KindFloat64:
		return "f8"
	case KindBool:
		return "b1"
	case KindBytes:
		return fmt.Sprintf("S%d", e.trailingCount())
	case KindUCS4:
		return fmt.Sprintf("U%d", e.trailingCount())
	case KindOpaque:
		return fmt.Sprintf("V%d", e.ItemSize)
	case KindObject:
		return "O"
	default:
		return "?"
	}
}

// ParseElementType parses the canonical dtype descriptor String produces.
func ParseElementType(s string) (ElementType, error) {
	switch s {
	case "i1":
		return NewElementType(KindInt8), nil
	case "i2":
		return NewElementType(KindInt16), nil
	case "i4":
		return NewElementType(KindInt32), nil
	case "i8":
		return NewElementType(KindInt64), nil
	case "u1":
		return NewElementType(KindUint8), nil
	case "u2":
		return NewElementType(KindUint16), nil
	case "u4":
		return NewElementType(KindUint32), nil
	case "u8":
		return NewElementType(KindUint64), nil
	case "f4":
		return NewElementType(KindFloat32), nil
	case "f8":
		return NewElementType(KindFloat64), nil
	case "b1":
		return NewElementType(KindBool), nil
	case "O":
		return NewObject(), nil
	}
	if len(s) >= 2 {
		var n int
		if _, err := fmt.Sscanf(s[1:], "%d", &n); err == nil {
			switch s[0] {
			case 'S':
				return NewFixedString(KindBytes, n), nil
			case 'U':
				return NewFixedString(KindUCS4, n), nil
			case 'V':
				return NewOpaque(n), nil
			}
		}
	}
	return ElementType{}, cerrors.ErrInvalidArgument
}
