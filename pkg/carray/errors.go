package carray

import "github.com/fenilsonani/carray/internal/cerrors"

// Error sentinels re-exported from internal/cerrors so callers of
// this package never need to import the internal package directly.
var (
	ErrReadOnly          = cerrors.ErrReadOnly
	ErrOutOfRange        = cerrors.ErrOutOfRange
	ErrTypeMismatch      = cerrors.ErrTypeMismatch
	ErrInvalidArgument   = cerrors.ErrInvalidArgument
	ErrNotSupported      = cerrors.ErrNotSupported
	ErrTypeTooLarge      = cerrors.ErrTypeTooLarge
	ErrUnknownCodec      = cerrors.ErrUnknownCodec
	ErrCompressionFailed = cerrors.ErrCompressionFailed
	ErrCorruptBuffer     = cerrors.ErrCorruptBuffer
	ErrIO                = cerrors.ErrIO
	ErrRootExists        = cerrors.ErrRootExists
)
