// Package gdftest encodes Generic Data Files for tests.
//
// The encoder writes the same layout the gdf reader expects: the fixed file
// header, the root GenericDataHeader, then each DataGroup followed by its
// DataSets, every DataSet header immediately followed by its rows. Offsets are
// reserved as zero and patched once the target position is known.
package gdftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"

	"github.com/samcharles93/gdf/pkg/gdf"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// File describes a file to encode. Magic and Version are written verbatim so
// tests can produce invalid files.
type File struct {
	Magic   uint8
	Version uint8
	Header  gdf.GenericDataHeader
	Groups  []Group
}

type Group struct {
	Name     string
	DataSets []DataSet
}

// DataSet rows hold one value per column: integers, float32/float64 or
// strings, converted to the column type when encoded.
type DataSet struct {
	Name    string
	Columns []gdf.ColumnDescriptor
	Rows    [][]any
}

// Layout records where the encoder placed each structure.
type Layout struct {
	FirstGroupPos uint32
	GroupCountPos uint32
	GroupPos      []uint32
	DataSetPos    [][]uint32
	DataStartPos  [][]uint32
	FileSize      uint32

	// Count fields of the root header.
	ParamCountPos  uint32
	ParentCountPos uint32
}

// New returns a valid File with a fresh root header.
func New(fileTypeID string, groups ...Group) File {
	return File{Magic: gdf.Magic, Version: gdf.Version, Header: NewHeader(fileTypeID), Groups: groups}
}

// NewHeader returns a header with a generated GUID and the current time.
func NewHeader(fileTypeID string) gdf.GenericDataHeader {
	return gdf.GenericDataHeader{
		FileTypeID:   fileTypeID,
		FileID:       uuid.NewString(),
		CreationTime: time.Now().UTC().Format(time.RFC3339),
		Locale:       "en-US",
	}
}

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) pos() uint32 { return uint32(e.buf.Len()) }

func (e *encoder) u8(v uint8) { e.buf.WriteByte(v) }

func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

// reserve writes a zero u32 and returns its position for patch.
func (e *encoder) reserve() uint32 {
	p := e.pos()
	e.u32(0)
	return p
}

func (e *encoder) patch(at, v uint32) {
	binary.BigEndian.PutUint32(e.buf.Bytes()[at:], v)
}

func (e *encoder) str8(s string) {
	e.u32(uint32(len(s)))
	e.buf.WriteString(s)
}

func (e *encoder) str16(s string) error {
	b, err := utf16BE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return err
	}
	e.u32(uint32(len(b) / 2))
	e.buf.Write(b)
	return nil
}

func (e *encoder) blob(b []byte) {
	e.u32(uint32(len(b)))
	e.buf.Write(b)
}

// header writes h. When l is non-nil the positions of the count fields are
// recorded in it.
func (e *encoder) header(h *gdf.GenericDataHeader, l *Layout) error {
	e.str8(h.FileTypeID)
	e.str8(h.FileID)
	if err := e.str16(h.CreationTime); err != nil {
		return err
	}
	if err := e.str16(h.Locale); err != nil {
		return err
	}
	if l != nil {
		l.ParamCountPos = e.pos()
	}
	e.u32(uint32(len(h.Parameters)))
	for _, p := range h.Parameters {
		if err := e.str16(p.Name); err != nil {
			return err
		}
		e.blob(p.Value)
		if err := e.str16(p.Type); err != nil {
			return err
		}
	}
	if l != nil {
		l.ParentCountPos = e.pos()
	}
	e.u32(uint32(len(h.Parents)))
	for i := range h.Parents {
		if err := e.header(&h.Parents[i], nil); err != nil {
			return err
		}
	}
	return nil
}

// Encode serialises f.
func Encode(f File) ([]byte, Layout, error) {
	var e encoder
	var l Layout

	e.u8(f.Magic)
	e.u8(f.Version)
	l.GroupCountPos = e.pos()
	e.u32(uint32(len(f.Groups)))
	firstGroup := e.reserve()
	if err := e.header(&f.Header, &l); err != nil {
		return nil, Layout{}, fmt.Errorf("generic data header: %w", err)
	}

	var prevNext uint32
	for gi, g := range f.Groups {
		gpos := e.pos()
		if gi == 0 {
			e.patch(firstGroup, gpos)
			l.FirstGroupPos = gpos
		} else {
			e.patch(prevNext, gpos)
		}
		l.GroupPos = append(l.GroupPos, gpos)

		prevNext = e.reserve()
		firstDataSet := e.reserve()
		e.u32(uint32(len(g.DataSets)))
		if err := e.str16(g.Name); err != nil {
			return nil, Layout{}, err
		}

		var dsPos, dataPos []uint32
		var prevDS uint32
		for di, ds := range g.DataSets {
			p := e.pos()
			if di == 0 {
				e.patch(firstDataSet, p)
			} else {
				e.patch(prevDS, p)
			}
			dsPos = append(dsPos, p)

			dataStart := e.reserve()
			e.u32(uint32(len(ds.Columns)))
			for _, c := range ds.Columns {
				if err := e.str16(c.Name); err != nil {
					return nil, Layout{}, err
				}
				e.u8(uint8(c.Type))
				e.u32(c.Size)
			}
			e.u32(uint32(len(ds.Rows)))
			prevDS = e.reserve()
			if err := e.str16(ds.Name); err != nil {
				return nil, Layout{}, err
			}

			e.patch(dataStart, e.pos())
			dataPos = append(dataPos, e.pos())
			for ri, row := range ds.Rows {
				if len(row) != len(ds.Columns) {
					return nil, Layout{}, fmt.Errorf("data set %q row %d has %d values for %d columns", ds.Name, ri, len(row), len(ds.Columns))
				}
				for ci, v := range row {
					if err := e.cell(ds.Columns[ci], v); err != nil {
						return nil, Layout{}, fmt.Errorf("data set %q row %d column %q: %w", ds.Name, ri, ds.Columns[ci].Name, err)
					}
				}
			}
		}
		if len(g.DataSets) > 0 {
			e.patch(prevDS, e.pos())
		}
		l.DataSetPos = append(l.DataSetPos, dsPos)
		l.DataStartPos = append(l.DataStartPos, dataPos)
	}
	l.FileSize = e.pos()
	return e.buf.Bytes(), l, nil
}

func (e *encoder) cell(c gdf.ColumnDescriptor, v any) error {
	start := e.buf.Len()
	switch c.Type {
	case gdf.ColumnInt8, gdf.ColumnUInt8:
		n, err := toInt(v)
		if err != nil {
			return err
		}
		e.u8(uint8(n))
	case gdf.ColumnInt16, gdf.ColumnUInt16:
		n, err := toInt(v)
		if err != nil {
			return err
		}
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(n))
		e.buf.Write(b[:])
	case gdf.ColumnInt32, gdf.ColumnUInt32:
		n, err := toInt(v)
		if err != nil {
			return err
		}
		e.u32(uint32(n))
	case gdf.ColumnFloat:
		var f float32
		switch x := v.(type) {
		case float32:
			f = x
		case float64:
			f = float32(x)
		default:
			return fmt.Errorf("want float, got %T", v)
		}
		e.u32(math.Float32bits(f))
	case gdf.ColumnASCII:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", v)
		}
		e.str8(s)
	case gdf.ColumnUnicode:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", v)
		}
		if err := e.str16(s); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported column type %s", c.Type)
	}
	written := e.buf.Len() - start
	if written > int(c.Size) {
		return fmt.Errorf("value needs %d bytes, column holds %d", written, c.Size)
	}
	e.buf.Write(make([]byte, int(c.Size)-written))
	return nil
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("want integer, got %T", v)
	}
}

// WriteFile encodes f into a file under t.TempDir and returns its path and
// layout.
func WriteFile(t testing.TB, f File) (string, Layout) {
	t.Helper()
	data, l, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return WriteBytes(t, data), l
}

// WriteBytes writes raw file contents under t.TempDir and returns the path.
func WriteBytes(t testing.TB, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.gdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
