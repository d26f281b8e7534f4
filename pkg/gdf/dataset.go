package gdf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataSet gives random access to the rows of one DataSet. It reads from the
// memory map while one is held by its GenericData and from the file stream
// otherwise.
type DataSet struct {
	data    *GenericData
	header  *DataSetHeader
	offsets []int64
	rowSize int64
}

func newDataSet(d *GenericData, h *DataSetHeader) (*DataSet, error) {
	if !h.Loaded() {
		return nil, fmt.Errorf("%w: data set %q header not loaded", ErrCorruptFile, h.Name)
	}
	offsets := make([]int64, len(h.Columns))
	var off int64
	for i, c := range h.Columns {
		offsets[i] = off
		off += int64(c.Size)
	}
	return &DataSet{data: d, header: h, offsets: offsets, rowSize: off}, nil
}

func (ds *DataSet) Header() *DataSetHeader { return ds.header }

func (ds *DataSet) Name() string { return ds.header.Name }

func (ds *DataSet) Columns() []ColumnDescriptor { return ds.header.Columns }

// Rows returns the number of rows.
func (ds *DataSet) Rows() int { return int(ds.header.RowCount) }

// Mapped reports whether rows are currently served from the memory map.
func (ds *DataSet) Mapped() bool { return ds.data.IsMapped() }

// rowBytes returns count consecutive rows starting at row start.
func (ds *DataSet) rowBytes(start, count int) ([]byte, error) {
	if start < 0 || count < 0 || start+count > ds.Rows() {
		return nil, fmt.Errorf("%w: rows [%d, %d) of %d in %q", ErrOutOfRows, start, start+count, ds.Rows(), ds.header.Name)
	}
	off := int64(ds.header.DataStartFilePos) + int64(start)*ds.rowSize
	n := int64(count) * ds.rowSize
	if b, ok := ds.data.payload(off, n); ok {
		return b, nil
	}
	b := make([]byte, n)
	if n == 0 {
		return b, nil
	}
	if err := ds.data.readAt(b, off); err != nil {
		return nil, fmt.Errorf("data set %q: %w", ds.header.Name, err)
	}
	return b, nil
}

// Row returns row i. Rows backed by the memory map are only valid until the
// file is unmapped.
func (ds *DataSet) Row(i int) (Row, error) {
	b, err := ds.rowBytes(i, 1)
	if err != nil {
		return Row{}, err
	}
	return Row{ds: ds, index: i, b: b}, nil
}

func (ds *DataSet) column(col int, want ...ColumnType) error {
	if col < 0 || col >= len(ds.header.Columns) {
		return fmt.Errorf("%w: column %d of %d in %q", ErrColumnType, col, len(ds.header.Columns), ds.header.Name)
	}
	got := ds.header.Columns[col].Type
	for _, t := range want {
		if got == t {
			return nil
		}
	}
	return fmt.Errorf("%w: column %q is %s, want %v", ErrColumnType, ds.header.Columns[col].Name, got, want)
}

// Float32Column reads count values of float column col starting at row start.
func (ds *DataSet) Float32Column(col, start, count int) ([]float32, error) {
	if err := ds.column(col, ColumnFloat); err != nil {
		return nil, err
	}
	b, err := ds.rowBytes(start, count)
	if err != nil {
		return nil, err
	}
	out := make([]float32, count)
	off := ds.offsets[col]
	for i := range out {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(b[off:]))
		off += ds.rowSize
	}
	return out, nil
}

// UInt32Column reads count values of uint32 column col starting at row start.
func (ds *DataSet) UInt32Column(col, start, count int) ([]uint32, error) {
	if err := ds.column(col, ColumnUInt32); err != nil {
		return nil, err
	}
	b, err := ds.rowBytes(start, count)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	off := ds.offsets[col]
	for i := range out {
		out[i] = binary.BigEndian.Uint32(b[off:])
		off += ds.rowSize
	}
	return out, nil
}

// Int32Column reads count values of int32 column col starting at row start.
func (ds *DataSet) Int32Column(col, start, count int) ([]int32, error) {
	if err := ds.column(col, ColumnInt32); err != nil {
		return nil, err
	}
	b, err := ds.rowBytes(start, count)
	if err != nil {
		return nil, err
	}
	out := make([]int32, count)
	off := ds.offsets[col]
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(b[off:]))
		off += ds.rowSize
	}
	return out, nil
}

// Row is one decoded row of a DataSet.
type Row struct {
	ds    *DataSet
	index int
	b     []byte
}

// Index returns the row number.
func (r Row) Index() int { return r.index }

// Bytes returns the raw row.
func (r Row) Bytes() []byte { return r.b }

func (r Row) cell(col int, want ...ColumnType) (*Cursor, error) {
	if err := r.ds.column(col, want...); err != nil {
		return nil, err
	}
	off := r.ds.offsets[col]
	return NewCursor(r.b[off : off+int64(r.ds.header.Columns[col].Size)]), nil
}

func (r Row) Int8(col int) (int8, error) {
	c, err := r.cell(col, ColumnInt8)
	if err != nil {
		return 0, err
	}
	return c.ReadInt8()
}

func (r Row) UInt8(col int) (uint8, error) {
	c, err := r.cell(col, ColumnUInt8)
	if err != nil {
		return 0, err
	}
	return c.ReadUInt8()
}

func (r Row) Int16(col int) (int16, error) {
	c, err := r.cell(col, ColumnInt16)
	if err != nil {
		return 0, err
	}
	return c.ReadInt16()
}

func (r Row) UInt16(col int) (uint16, error) {
	c, err := r.cell(col, ColumnUInt16)
	if err != nil {
		return 0, err
	}
	return c.ReadUInt16()
}

func (r Row) Int32(col int) (int32, error) {
	c, err := r.cell(col, ColumnInt32)
	if err != nil {
		return 0, err
	}
	return c.ReadInt32()
}

func (r Row) UInt32(col int) (uint32, error) {
	c, err := r.cell(col, ColumnUInt32)
	if err != nil {
		return 0, err
	}
	return c.ReadUInt32()
}

func (r Row) Float(col int) (float32, error) {
	c, err := r.cell(col, ColumnFloat)
	if err != nil {
		return 0, err
	}
	return c.ReadFloat()
}

// Text decodes an ASCII or UTF-16 cell without its NUL padding.
func (r Row) Text(col int) (string, error) {
	c, err := r.cell(col, ColumnASCII, ColumnUnicode)
	if err != nil {
		return "", err
	}
	var s string
	if r.ds.header.Columns[col].Type == ColumnASCII {
		s, err = c.ReadString8Prefixed()
	} else {
		s, err = c.ReadString16Prefixed()
	}
	if err != nil {
		return "", fmt.Errorf("column %q row %d: %w", r.ds.header.Columns[col].Name, r.index, err)
	}
	return trimNUL(s), nil
}

// Value decodes column col according to its type.
func (r Row) Value(col int) (any, error) {
	if col < 0 || col >= len(r.ds.header.Columns) {
		return nil, fmt.Errorf("%w: column %d of %d", ErrColumnType, col, len(r.ds.header.Columns))
	}
	switch t := r.ds.header.Columns[col].Type; t {
	case ColumnInt8:
		return r.Int8(col)
	case ColumnUInt8:
		return r.UInt8(col)
	case ColumnInt16:
		return r.Int16(col)
	case ColumnUInt16:
		return r.UInt16(col)
	case ColumnInt32:
		return r.Int32(col)
	case ColumnUInt32:
		return r.UInt32(col)
	case ColumnFloat:
		return r.Float(col)
	case ColumnASCII, ColumnUnicode:
		return r.Text(col)
	default:
		return nil, fmt.Errorf("%w: column %q has unknown type %s", ErrColumnType, r.ds.header.Columns[col].Name, t)
	}
}

// Values decodes every column.
func (r Row) Values() ([]any, error) {
	out := make([]any, len(r.ds.header.Columns))
	for i := range out {
		v, err := r.Value(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DataSetReader reads the rows of a DataSet in order.
type DataSetReader struct {
	ds   *DataSet
	next int
}

// DataSet returns the random-access view the reader walks.
func (r *DataSetReader) DataSet() *DataSet { return r.ds }

func (r *DataSetReader) Header() *DataSetHeader { return r.ds.header }

// Remaining returns the number of rows not yet read.
func (r *DataSetReader) Remaining() int { return r.ds.Rows() - r.next }

// ReadRow returns the next row, or ErrOutOfRows once every row was read.
func (r *DataSetReader) ReadRow() (Row, error) {
	if r.next >= r.ds.Rows() {
		return Row{}, fmt.Errorf("%w: %d rows in %q", ErrOutOfRows, r.ds.Rows(), r.ds.header.Name)
	}
	row, err := r.ds.Row(r.next)
	if err != nil {
		return Row{}, err
	}
	r.next++
	return row, nil
}

// SeekRow positions the reader so the next ReadRow returns row i.
func (r *DataSetReader) SeekRow(i int) error {
	if i < 0 || i > r.ds.Rows() {
		return fmt.Errorf("%w: row %d of %d in %q", ErrOutOfRows, i, r.ds.Rows(), r.ds.header.Name)
	}
	r.next = i
	return nil
}

// Reset rewinds to the first row.
func (r *DataSetReader) Reset() { r.next = 0 }

// DataGroupReader resolves the DataSets of one group.
type DataGroupReader struct {
	data   *GenericData
	header *DataGroupHeader
}

func (g *DataGroupReader) Header() *DataGroupHeader { return g.header }

func (g *DataGroupReader) Name() string { return g.header.Name }

func (g *DataGroupReader) DataSetCnt() int { return len(g.header.DataSets) }

func (g *DataGroupReader) DataSetNames() []string { return g.header.DataSetNames() }

// DataSetReader returns a reader for the DataSet at index.
func (g *DataGroupReader) DataSetReader(index int) (*DataSetReader, error) {
	if index < 0 || index >= len(g.header.DataSets) {
		return nil, fmt.Errorf("%w: index %d of %d in group %q", ErrDataSetNotFound, index, len(g.header.DataSets), g.header.Name)
	}
	return g.data.openDataSet(&g.header.DataSets[index])
}

// DataSetReaderByName returns a reader for the DataSet called name.
func (g *DataGroupReader) DataSetReaderByName(name string) (*DataSetReader, error) {
	h, err := g.data.FindDataSetHeader(g.header, name)
	if err != nil {
		return nil, err
	}
	return g.data.openDataSet(h)
}
