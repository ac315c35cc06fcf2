package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fenilsonani/carray/internal/chunk"
)

// parseValues converts a comma-separated list of numeric literals into a
// flat atom buffer for the given dtype string, one of i1/i2/i4/i8,
// u1/u2/u4/u8, f4/f8 (the numeric subset of the dtype descriptors).
func parseValues(dtype, csv string) ([]byte, chunk.ElementType, error) {
	et, err := chunk.ParseElementType(dtype)
	if err != nil {
		return nil, et, fmt.Errorf("unknown dtype %q: %w", dtype, err)
	}
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return []byte{}, et, nil
	}
	fields := strings.Split(csv, ",")
	atomSize := et.AtomSize()
	buf := make([]byte, len(fields)*atomSize)

	isFloat := et.Kind == chunk.KindFloat32 || et.Kind == chunk.KindFloat64
	for i, f := range fields {
		f = strings.TrimSpace(f)
		atom := buf[i*atomSize : (i+1)*atomSize]
		if isFloat {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, et, fmt.Errorf("invalid value %q: %w", f, err)
			}
			putFloat(atom, et.Kind, v)
		} else {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return nil, et, fmt.Errorf("invalid value %q: %w", f, err)
			}
			putInt(atom, et.Kind, v)
		}
	}
	return buf, et, nil
}

func putInt(atom []byte, kind chunk.Kind, v int64) {
	switch kind {
	case chunk.KindInt8, chunk.KindUint8, chunk.KindBool:
		atom[0] = byte(v)
	case chunk.KindInt16, chunk.KindUint16:
		binary.LittleEndian.PutUint16(atom, uint16(v))
	case chunk.KindInt32, chunk.KindUint32:
		binary.LittleEndian.PutUint32(atom, uint32(v))
	case chunk.KindInt64, chunk.KindUint64:
		binary.LittleEndian.PutUint64(atom, uint64(v))
	}
}

func putFloat(atom []byte, kind chunk.Kind, v float64) {
	switch kind {
	case chunk.KindFloat32:
		binary.LittleEndian.PutUint32(atom, math.Float32bits(float32(v)))
	case chunk.KindFloat64:
		binary.LittleEndian.PutUint64(atom, math.Float64bits(v))
	}
}

func formatAtom(atom []byte, kind chunk.Kind) string {
	switch kind {
	case chunk.KindInt8:
		return strconv.FormatInt(int64(int8(atom[0])), 10)
	case chunk.KindUint8:
		return strconv.FormatUint(uint64(atom[0]), 10)
	case chunk.KindInt16:
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(atom))), 10)
	case chunk.KindUint16:
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint16(atom)), 10)
	case chunk.KindInt32:
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(atom))), 10)
	case chunk.KindUint32:
		return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(atom)), 10)
	case chunk.KindInt64:
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(atom)), 10)
	case chunk.KindUint64:
		return strconv.FormatUint(binary.LittleEndian.Uint64(atom), 10)
	case chunk.KindFloat32:
		return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(atom))), 'g', -1, 32)
	case chunk.KindFloat64:
		return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(atom)), 'g', -1, 64)
	case chunk.KindBool:
		if atom[0] != 0 {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%x", atom)
	}
}
