package codec

import "github.com/fenilsonani/carray/internal/cerrors"

// blockCodec is the minimal contract a backing compressor must satisfy:
// compress/decompress one block of bytes, no framing. The shared
// self-describing-header, blocking, and shuffle logic is built on top of
// whichever blockCodec is registered under a given name.
type blockCodec interface {
	// id is the single byte persisted in the buffer header identifying
	// this codec, so a compressed buffer is self-describing.
	id() uint8
	// compressBlock returns the compressed form of src. level is the 0-9
	// knob from Params.
	compressBlock(src []byte, level int) ([]byte, error)
	// decompressBlock decompresses src into a buffer of exactly
	// uncompressedLen bytes.
	decompressBlock(src []byte, uncompressedLen int) ([]byte, error)
}

var registry = map[string]blockCodec{}
var registryByID = map[uint8]string{}

func register(name string, id uint8, c blockCodec) {
	registry[name] = c
	registryByID[id] = name
}

func lookup(name string) (blockCodec, error) {
	c, ok := registry[name]
	if !ok {
		return nil, cerrors.ErrUnknownCodec
	}
	return c, nil
}

func lookupByID(id uint8) (blockCodec, error) {
	name, ok := registryByID[id]
	if !ok {
		return nil, cerrors.ErrCorruptBuffer
	}
	return registry[name], nil
}

// Names returns the registered codec names, for CLI/attrs introspection.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
