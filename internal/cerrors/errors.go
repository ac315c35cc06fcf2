// Package cerrors defines the sentinel error kinds shared by every layer of
// carray, from the codec wrapper up through the public CArray API. Keeping
// them in one leaf package lets internal/codec, internal/chunk,
// internal/store and internal/meta return the same values that
// pkg/carray re-exports, without an import cycle back into pkg/carray.
package cerrors

import "errors"

var (
	// ErrReadOnly is returned for any mutation attempted on a read-only array.
	ErrReadOnly = errors.New("carray: read-only")

	// ErrOutOfRange is returned for an index or slice outside [0, N), or a
	// trim count greater than the current length.
	ErrOutOfRange = errors.New("carray: out of range")

	// ErrTypeMismatch is returned when an input atom's type is incompatible
	// with the array's element type.
	ErrTypeMismatch = errors.New("carray: type mismatch")

	// ErrInvalidArgument covers negative lengths, empty tuple keys,
	// unsupported key kinds, and chunklen < 1.
	ErrInvalidArgument = errors.New("carray: invalid argument")

	// ErrNotSupported covers zero and negative steps, scalar-input
	// construction, and object element arrays of rank > 1.
	ErrNotSupported = errors.New("carray: not supported")

	// ErrTypeTooLarge is returned when an atom size is >= 2^31.
	ErrTypeTooLarge = errors.New("carray: type too large")

	// ErrUnknownCodec is returned when a codec name is not registered.
	ErrUnknownCodec = errors.New("carray: unknown codec")

	// ErrCompressionFailed is returned when a backing codec reports failure
	// compressing a buffer.
	ErrCompressionFailed = errors.New("carray: compression failed")

	// ErrCorruptBuffer is returned when a backing codec reports failure
	// decompressing a buffer, or a checksum fails to verify.
	ErrCorruptBuffer = errors.New("carray: corrupt buffer")

	// ErrIO is returned when a metadata file under a persistent root cannot
	// be read. The chunk store does not use it: a missing chunk file is
	// reported as ErrOutOfRange, and other chunk-file I/O failures are
	// returned as the wrapped filesystem error.
	ErrIO = errors.New("carray: I/O error")

	// ErrRootExists is returned when creating a persistent array at a root
	// directory that already exists and mode is not "w".
	ErrRootExists = errors.New("carray: root already exists")
)
