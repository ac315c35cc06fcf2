package carray

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"path/filepath"

	"github.com/fenilsonani/carray/internal/cerrors"
	"github.com/fenilsonani/carray/internal/chunk"
	"github.com/fenilsonani/carray/internal/codec"
	"github.com/fenilsonani/carray/internal/meta"
)

func paramsToCParams(p Params) meta.CParams {
	var q *int
	if p.Quantize > 0 {
		v := p.Quantize
		q = &v
	}
	return meta.CParams{CLevel: p.Level, Shuffle: int(p.Shuffle), CName: p.CodecName, Quantize: q}
}

func paramsFromCParams(c meta.CParams) Params {
	q := 0
	if c.Quantize != nil {
		q = *c.Quantize
	}
	return Params{Level: c.CLevel, Shuffle: codec.ShuffleMode(c.Shuffle), CodecName: c.CName, Quantize: q}
}

// encodeDfltJSON renders one atom as the JSON value persisted in
// meta/storage's "dflt" field: a scalar for plain numeric/bool
// kinds, a string for fixed byte strings, an array of code units for
// UCS-4 strings, and a base64 string (encoding/json's form for a byte
// slice) for opaque records.
func encodeDfltJSON(atom []byte, et chunk.ElementType) (json.RawMessage, error) {
	switch et.Kind {
	case chunk.KindInt8:
		return json.Marshal(int8(atom[0]))
	case chunk.KindUint8:
		return json.Marshal(atom[0])
	case chunk.KindInt16:
		return json.Marshal(int16(binary.LittleEndian.Uint16(atom)))
	case chunk.KindUint16:
		return json.Marshal(binary.LittleEndian.Uint16(atom))
	case chunk.KindInt32:
		return json.Marshal(int32(binary.LittleEndian.Uint32(atom)))
	case chunk.KindUint32:
		return json.Marshal(binary.LittleEndian.Uint32(atom))
	case chunk.KindInt64:
		return json.Marshal(int64(binary.LittleEndian.Uint64(atom)))
	case chunk.KindUint64:
		return json.Marshal(binary.LittleEndian.Uint64(atom))
	case chunk.KindFloat32:
		return json.Marshal(math.Float32frombits(binary.LittleEndian.Uint32(atom)))
	case chunk.KindFloat64:
		return json.Marshal(math.Float64frombits(binary.LittleEndian.Uint64(atom)))
	case chunk.KindBool:
		return json.Marshal(atom[0] != 0)
	case chunk.KindBytes:
		return json.Marshal(string(atom))
	case chunk.KindUCS4:
		units := make([]uint32, len(atom)/4)
		for i := range units {
			units[i] = binary.LittleEndian.Uint32(atom[i*4 : i*4+4])
		}
		return json.Marshal(units)
	case chunk.KindOpaque:
		ints := make([]byte, len(atom))
		copy(ints, atom)
		return json.Marshal(ints)
	default:
		return json.Marshal(nil)
	}
}

func decodeDfltJSON(raw json.RawMessage, et chunk.ElementType) ([]byte, error) {
	atomSize := et.AtomSize()
	atom := make([]byte, atomSize)
	switch et.Kind {
	case chunk.KindInt8:
		var v int8
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		atom[0] = byte(v)
	case chunk.KindUint8:
		var v uint8
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		atom[0] = v
	case chunk.KindInt16:
		var v int16
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		binary.LittleEndian.PutUint16(atom, uint16(v))
	case chunk.KindUint16:
		var v uint16
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		binary.LittleEndian.PutUint16(atom, v)
	case chunk.KindInt32:
		var v int32
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		binary.LittleEndian.PutUint32(atom, uint32(v))
	case chunk.KindUint32:
		var v uint32
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		binary.LittleEndian.PutUint32(atom, v)
	case chunk.KindInt64:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		binary.LittleEndian.PutUint64(atom, uint64(v))
	case chunk.KindUint64:
		var v uint64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		binary.LittleEndian.PutUint64(atom, v)
	case chunk.KindFloat32:
		var v float32
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		binary.LittleEndian.PutUint32(atom, math.Float32bits(v))
	case chunk.KindFloat64:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		binary.LittleEndian.PutUint64(atom, math.Float64bits(v))
	case chunk.KindBool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		if v {
			atom[0] = 1
		}
	case chunk.KindBytes:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		copy(atom, s)
	case chunk.KindUCS4:
		var units []uint32
		if err := json.Unmarshal(raw, &units); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		for i, u := range units {
			if (i+1)*4 > len(atom) {
				break
			}
			binary.LittleEndian.PutUint32(atom[i*4:i*4+4], u)
		}
	case chunk.KindOpaque:
		var bs []byte
		if err := json.Unmarshal(raw, &bs); err != nil {
			return nil, cerrors.ErrCorruptBuffer
		}
		copy(atom, bs)
	}
	return atom, nil
}

// writeStorageMeta persists the storage descriptor for a freshly
// constructed persistent array.
func (a *CArray) writeStorageMeta() error {
	dfltJSON, err := encodeDfltJSON(a.dflt, a.elemType)
	if err != nil {
		return err
	}
	s := meta.Storage{
		Dtype:       a.elemType.String(),
		CParams:     paramsToCParams(a.params),
		ChunkLen:    a.chunkLen,
		ExpectedLen: a.expectedLen,
		Dflt:        dfltJSON,
	}
	return meta.WriteStorage(a.root, s)
}

func attrsPath(root string) string { return filepath.Join(root, "attrs") }
