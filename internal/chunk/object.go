package chunk

import (
	"bytes"
	"encoding/gob"
)

// ObjectCodec serializes and deserializes host values stored in a
// KindObject chunk (the variable-length "O" element type: one element
// per chunk, host-pickled).
type ObjectCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

// gobObjectCodec is the default ObjectCodec, built on encoding/gob. gob
// needs no schema registration for concrete struct types and round-trips
// the host-language values this library is meant to carry opaquely.
type gobObjectCodec struct{}

// NewGobObjectCodec returns the default ObjectCodec.
func NewGobObjectCodec() ObjectCodec {
	return gobObjectCodec{}
}

func (gobObjectCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobObjectCodec) Decode(data []byte, out any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(out)
}
