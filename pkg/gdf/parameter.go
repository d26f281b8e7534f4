package gdf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MIME types that tag parameter values.
const (
	TypeInt8   = "text/x-calvin-integer-8"
	TypeUInt8  = "text/x-calvin-unsigned-integer-8"
	TypeInt16  = "text/x-calvin-integer-16"
	TypeUInt16 = "text/x-calvin-unsigned-integer-16"
	TypeInt32  = "text/x-calvin-integer-32"
	TypeUInt32 = "text/x-calvin-unsigned-integer-32"
	TypeFloat  = "text/x-calvin-float"
	TypeText   = "text/plain"
	TypeASCII  = "text/ascii"
)

// Parameter is a named, typed value. Value holds the raw blob as stored on
// disk; numeric types occupy its leading bytes in big-endian order.
type Parameter struct {
	Name  string
	Value []byte
	Type  string
}

func (p Parameter) fixed(typ string, n int) ([]byte, error) {
	if p.Type != typ {
		return nil, fmt.Errorf("%w: %s is %q, not %q", ErrParameterType, p.Name, p.Type, typ)
	}
	if len(p.Value) < n {
		return nil, fmt.Errorf("%w: %s value has %d bytes, need %d", ErrCorruptFile, p.Name, len(p.Value), n)
	}
	return p.Value[:n], nil
}

func (p Parameter) Int8() (int8, error) {
	b, err := p.fixed(TypeInt8, 1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

func (p Parameter) UInt8() (uint8, error) {
	b, err := p.fixed(TypeUInt8, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p Parameter) Int16() (int16, error) {
	b, err := p.fixed(TypeInt16, 2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (p Parameter) UInt16() (uint16, error) {
	b, err := p.fixed(TypeUInt16, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (p Parameter) Int32() (int32, error) {
	b, err := p.fixed(TypeInt32, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (p Parameter) UInt32() (uint32, error) {
	b, err := p.fixed(TypeUInt32, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (p Parameter) Float() (float32, error) {
	b, err := p.fixed(TypeFloat, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// Text returns a text/plain (UTF-16BE) or text/ascii value without its NUL
// padding.
func (p Parameter) Text() (string, error) {
	switch p.Type {
	case TypeText:
		if len(p.Value)%2 != 0 {
			return "", fmt.Errorf("%w: %s has odd-length utf-16 value", ErrCorruptFile, p.Name)
		}
		s, err := decodeUTF16(p.Value)
		if err != nil {
			return "", err
		}
		return trimNUL(s), nil
	case TypeASCII:
		return trimNUL(string(p.Value)), nil
	default:
		return "", fmt.Errorf("%w: %s is %q, not text", ErrParameterType, p.Name, p.Type)
	}
}

// Decode decodes the parameter according to its type. Unknown types yield the
// raw bytes.
func (p Parameter) Decode() (any, error) {
	switch p.Type {
	case TypeInt8:
		return p.Int8()
	case TypeUInt8:
		return p.UInt8()
	case TypeInt16:
		return p.Int16()
	case TypeUInt16:
		return p.UInt16()
	case TypeInt32:
		return p.Int32()
	case TypeUInt32:
		return p.UInt32()
	case TypeFloat:
		return p.Float()
	case TypeText, TypeASCII:
		return p.Text()
	default:
		return append([]byte(nil), p.Value...), nil
	}
}

// String formats the decoded value, falling back to a byte count.
func (p Parameter) String() string {
	v, err := p.Decode()
	if err != nil {
		return fmt.Sprintf("<%d bytes %s>", len(p.Value), p.Type)
	}
	if b, ok := v.([]byte); ok {
		return fmt.Sprintf("<%d bytes %s>", len(b), p.Type)
	}
	return fmt.Sprint(v)
}
