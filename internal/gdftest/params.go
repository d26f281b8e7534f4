package gdftest

import (
	"encoding/binary"
	"math"

	"github.com/samcharles93/gdf/pkg/gdf"
)

// Numeric parameter values are padded to 16 bytes, as writers reserve a fixed
// slot for them.
const numericSlot = 16

func numeric(name, typ string, raw []byte) gdf.Parameter {
	v := make([]byte, numericSlot)
	copy(v, raw)
	return gdf.Parameter{Name: name, Value: v, Type: typ}
}

func Int8Param(name string, v int8) gdf.Parameter {
	return numeric(name, gdf.TypeInt8, []byte{byte(v)})
}

func UInt16Param(name string, v uint16) gdf.Parameter {
	return numeric(name, gdf.TypeUInt16, binary.BigEndian.AppendUint16(nil, v))
}

func Int32Param(name string, v int32) gdf.Parameter {
	return numeric(name, gdf.TypeInt32, binary.BigEndian.AppendUint32(nil, uint32(v)))
}

func UInt32Param(name string, v uint32) gdf.Parameter {
	return numeric(name, gdf.TypeUInt32, binary.BigEndian.AppendUint32(nil, v))
}

func FloatParam(name string, v float32) gdf.Parameter {
	return numeric(name, gdf.TypeFloat, binary.BigEndian.AppendUint32(nil, math.Float32bits(v)))
}

// TextParam stores s as UTF-16BE text/plain.
func TextParam(name, s string) gdf.Parameter {
	b, _ := utf16BE.NewEncoder().Bytes([]byte(s))
	return gdf.Parameter{Name: name, Value: b, Type: gdf.TypeText}
}

func ASCIIParam(name, s string) gdf.Parameter {
	return gdf.Parameter{Name: name, Value: []byte(s), Type: gdf.TypeASCII}
}
