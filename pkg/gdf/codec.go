package gdf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// byteSource hands out exactly n bytes or fails. The returned slice is only
// valid until the next call.
type byteSource interface {
	take(n int) ([]byte, error)
	remaining() int64
}

// decoder implements the big-endian primitive reads shared by Stream and Cursor.
type decoder struct {
	src byteSource
}

func (d decoder) ReadUInt8() (uint8, error) {
	b, err := d.src.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d decoder) ReadInt8() (int8, error) {
	v, err := d.ReadUInt8()
	return int8(v), err
}

func (d decoder) ReadUInt16() (uint16, error) {
	b, err := d.src.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d decoder) ReadInt16() (int16, error) {
	v, err := d.ReadUInt16()
	return int16(v), err
}

func (d decoder) ReadUInt32() (uint32, error) {
	b, err := d.src.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUInt32()
	return int32(v), err
}

func (d decoder) ReadFloat() (float32, error) {
	v, err := d.ReadUInt32()
	return math.Float32frombits(v), err
}

// ReadString8 reads n 8-bit code units.
func (d decoder) ReadString8(n int) (string, error) {
	if err := d.checkLen(int64(n)); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	b, err := d.src.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadString8Prefixed reads a u32 length followed by that many 8-bit units.
func (d decoder) ReadString8Prefixed() (string, error) {
	n, err := d.ReadUInt32()
	if err != nil {
		return "", err
	}
	return d.ReadString8(int(n))
}

// ReadString16 reads n 16-bit big-endian code units.
func (d decoder) ReadString16(n int) (string, error) {
	if err := d.checkLen(2 * int64(n)); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	b, err := d.src.take(2 * n)
	if err != nil {
		return "", err
	}
	return decodeUTF16(b)
}

// ReadString16Prefixed reads a u32 length followed by that many 16-bit units.
func (d decoder) ReadString16Prefixed() (string, error) {
	n, err := d.ReadUInt32()
	if err != nil {
		return "", err
	}
	return d.ReadString16(int(n))
}

// ReadBlob reads a u32 size followed by that many bytes. The result is owned
// by the caller.
func (d decoder) ReadBlob() ([]byte, error) {
	n, err := d.ReadUInt32()
	if err != nil {
		return nil, err
	}
	if err := d.checkLen(int64(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n == 0 {
		return out, nil
	}
	b, err := d.src.take(int(n))
	if err != nil {
		return nil, err
	}
	copy(out, b)
	return out, nil
}

func (d decoder) skipPrefixed(unit int64) error {
	n, err := d.ReadUInt32()
	if err != nil {
		return err
	}
	size := int64(n) * unit
	if err := d.checkLen(size); err != nil {
		return err
	}
	for size > 0 {
		chunk := min(size, 1<<16)
		if _, err := d.src.take(int(chunk)); err != nil {
			return err
		}
		size -= chunk
	}
	return nil
}

// checkLen rejects a decoded length that cannot be satisfied by the bytes left.
func (d decoder) checkLen(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrCorruptFile, n)
	}
	if rem := d.src.remaining(); n > rem {
		return fmt.Errorf("%w: length %d exceeds %d remaining bytes: %w", ErrCorruptFile, n, rem, io.ErrUnexpectedEOF)
	}
	return nil
}

// checkCount rejects an element count whose minimum encoding cannot fit in
// the bytes left.
func (d decoder) checkCount(what string, count uint32, minSize int64) error {
	if need := int64(count) * minSize; need > d.src.remaining() {
		return fmt.Errorf("%w: %s count %d needs at least %d bytes, %d remain", ErrCorruptFile, what, count, need, d.src.remaining())
	}
	return nil
}

func decodeUTF16(b []byte) (string, error) {
	out, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}
	return string(out), nil
}

// trimNUL drops the zero padding used by fixed-width text cells.
func trimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}

// Stream decodes primitives from a seekable byte stream.
type Stream struct {
	decoder
	r    io.ReadSeeker
	size int64
	pos  int64
	buf  []byte
}

// NewStream wraps r, recording its total size and rewinding it to offset 0.
func NewStream(r io.ReadSeeker) (*Stream, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek start: %w", err)
	}
	s := &Stream{r: r, size: size, buf: make([]byte, 64)}
	s.decoder = decoder{src: s}
	return s, nil
}

// Pos returns the absolute read position.
func (s *Stream) Pos() int64 { return s.pos }

// Size returns the stream length in bytes.
func (s *Stream) Size() int64 { return s.size }

// Seek moves to an absolute offset. Offsets beyond the end of the stream fail.
func (s *Stream) Seek(off int64) error {
	if off < 0 || off > s.size {
		return fmt.Errorf("seek to %d outside %d-byte file: %w", off, s.size, io.ErrUnexpectedEOF)
	}
	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return err
	}
	s.pos = off
	return nil
}

func (s *Stream) remaining() int64 { return s.size - s.pos }

func (s *Stream) take(n int) ([]byte, error) {
	if int64(n) > s.remaining() {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, s.pos, io.ErrUnexpectedEOF)
	}
	if n > len(s.buf) {
		s.buf = make([]byte, n)
	}
	b := s.buf[:n]
	read, err := io.ReadFull(s.r, b)
	s.pos += int64(read)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, s.pos-int64(read), err)
	}
	return b, nil
}

// Cursor decodes primitives from an in-memory slice, advancing as it goes.
type Cursor struct {
	decoder
	data []byte
	off  int
}

// NewCursor returns a cursor at the start of b.
func NewCursor(b []byte) *Cursor {
	c := &Cursor{data: b}
	c.decoder = decoder{src: c}
	return c
}

// Offset returns the number of bytes consumed.
func (c *Cursor) Offset() int { return c.off }

func (c *Cursor) remaining() int64 { return int64(len(c.data) - c.off) }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || int64(n) > c.remaining() {
		return nil, fmt.Errorf("read %d bytes at %d of %d: %w", n, c.off, len(c.data), io.ErrUnexpectedEOF)
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}
