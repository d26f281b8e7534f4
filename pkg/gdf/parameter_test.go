package gdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterNumericAccessors(t *testing.T) {
	t.Parallel()
	pad := func(b ...byte) []byte { return append(b, make([]byte, 16-len(b))...) }

	p := Parameter{Name: "cols", Value: pad(0x00, 0x00, 0x01, 0x00), Type: TypeInt32}
	v, err := p.Int32()
	require.NoError(t, err)
	assert.Equal(t, int32(256), v)

	_, err = p.Float()
	assert.ErrorIs(t, err, ErrParameterType)

	f := Parameter{Name: "scale", Value: pad(0x40, 0x20, 0x00, 0x00), Type: TypeFloat}
	fv, err := f.Float()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), fv)

	i8 := Parameter{Name: "flag", Value: pad(0xFF), Type: TypeInt8}
	got, err := i8.Decode()
	require.NoError(t, err)
	assert.Equal(t, int8(-1), got)

	short := Parameter{Name: "short", Value: []byte{0x01}, Type: TypeUInt16}
	_, err = short.UInt16()
	assert.ErrorIs(t, err, ErrCorruptFile)
}

func TestParameterText(t *testing.T) {
	t.Parallel()

	wide := Parameter{Name: "algorithm", Value: []byte{0x00, 'P', 0x00, 'M', 0x00, 0x00}, Type: TypeText}
	s, err := wide.Text()
	require.NoError(t, err)
	assert.Equal(t, "PM", s)

	ascii := Parameter{Name: "barcode", Value: []byte("A12\x00\x00"), Type: TypeASCII}
	s, err = ascii.Text()
	require.NoError(t, err)
	assert.Equal(t, "A12", s)
	assert.Equal(t, "A12", ascii.String())

	_, err = Parameter{Name: "n", Value: make([]byte, 4), Type: TypeUInt32}.Text()
	assert.ErrorIs(t, err, ErrParameterType)

	odd := Parameter{Name: "odd", Value: []byte{0x00}, Type: TypeText}
	_, err = odd.Text()
	assert.ErrorIs(t, err, ErrCorruptFile)
}

func TestParameterUnknownTypeKeepsBytes(t *testing.T) {
	t.Parallel()
	p := Parameter{Name: "raw", Value: []byte{1, 2, 3}, Type: "application/octet-stream"}
	v, err := p.Decode()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, v)
	assert.Equal(t, "<3 bytes application/octet-stream>", p.String())
}
