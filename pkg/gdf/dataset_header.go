package gdf

import "fmt"

// ColumnType tags the element type of a DataSet column.
type ColumnType uint8

const (
	ColumnInt8 ColumnType = iota
	ColumnUInt8
	ColumnInt16
	ColumnUInt16
	ColumnInt32
	ColumnUInt32
	ColumnFloat
	ColumnASCII
	ColumnUnicode
)

var columnTypeNames = [...]string{
	ColumnInt8:    "int8",
	ColumnUInt8:   "uint8",
	ColumnInt16:   "int16",
	ColumnUInt16:  "uint16",
	ColumnInt32:   "int32",
	ColumnUInt32:  "uint32",
	ColumnFloat:   "float",
	ColumnASCII:   "ascii",
	ColumnUnicode: "unicode",
}

func (t ColumnType) String() string {
	if int(t) < len(columnTypeNames) {
		return columnTypeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// FixedSize returns the encoded width of numeric types, or 0 for text and
// unknown tags.
func (t ColumnType) FixedSize() int {
	switch t {
	case ColumnInt8, ColumnUInt8:
		return 1
	case ColumnInt16, ColumnUInt16:
		return 2
	case ColumnInt32, ColumnUInt32, ColumnFloat:
		return 4
	default:
		return 0
	}
}

// ColumnDescriptor describes one column. Size is the on-disk width of each
// cell; text cells carry a u32 length prefix inside that width.
type ColumnDescriptor struct {
	Name string
	Type ColumnType
	Size uint32
}

func (c ColumnDescriptor) validate() error {
	switch {
	case c.Type.FixedSize() > 0:
		if c.Size < uint32(c.Type.FixedSize()) {
			return fmt.Errorf("%w: column %q of type %s has size %d", ErrCorruptFile, c.Name, c.Type, c.Size)
		}
	case c.Type == ColumnASCII || c.Type == ColumnUnicode:
		if c.Size < 4 {
			return fmt.Errorf("%w: text column %q has size %d", ErrCorruptFile, c.Name, c.Size)
		}
	}
	return nil
}

// DataSetHeader describes a DataSet. A header read in minimum-info mode is a
// stub: it knows its name and offsets but has no columns or row count until
// it is completed. Loaded distinguishes a stub from a complete header that
// happens to be empty.
type DataSetHeader struct {
	Name               string
	HeaderStartFilePos uint32
	DataStartFilePos   uint32
	NextDataSetFilePos uint32
	Columns            []ColumnDescriptor
	RowCount           uint32

	loaded bool
}

// Loaded reports whether columns and row count have been read.
func (h *DataSetHeader) Loaded() bool { return h.loaded }

func (h *DataSetHeader) ColumnCount() int { return len(h.Columns) }

// RowSize is the number of bytes per row.
func (h *DataSetHeader) RowSize() int64 {
	var n int64
	for _, c := range h.Columns {
		n += int64(c.Size)
	}
	return n
}

// DataSize is the number of payload bytes starting at DataStartFilePos.
func (h *DataSetHeader) DataSize() int64 {
	return h.RowSize() * int64(h.RowCount)
}

// FindColumn returns the index of the column called name.
func (h *DataSetHeader) FindColumn(name string) (int, bool) {
	for i, c := range h.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// DataSetHeaderReader parses DataSet headers from a stream.
type DataSetHeaderReader struct {
	s *Stream
}

func NewDataSetHeaderReader(s *Stream) *DataSetHeaderReader {
	return &DataSetHeaderReader{s: s}
}

// ReadHeader parses a complete header at the current stream position.
func (r *DataSetHeaderReader) ReadHeader(h *DataSetHeader) error {
	return r.read(h, true)
}

// ReadMinimumInfo parses only the name and offsets. Column descriptors are
// skipped without being decoded; Columns stays nil and RowCount zero.
func (r *DataSetHeaderReader) ReadMinimumInfo(h *DataSetHeader) error {
	return r.read(h, false)
}

func (r *DataSetHeaderReader) read(h *DataSetHeader, full bool) error {
	s := r.s
	start := s.Pos()
	if start > int64(^uint32(0)) {
		return fmt.Errorf("%w: data set header at %d beyond 32-bit offsets", ErrCorruptFile, start)
	}
	if err := s.checkCount("data set header", 1, minDataSetHeaderSize); err != nil {
		return err
	}

	var next DataSetHeader
	next.HeaderStartFilePos = uint32(start)

	var err error
	if next.DataStartFilePos, err = s.ReadUInt32(); err != nil {
		return fmt.Errorf("data start offset: %w", err)
	}
	colCount, err := s.ReadUInt32()
	if err != nil {
		return fmt.Errorf("column count: %w", err)
	}
	if err := s.checkCount("column", colCount, minColumnSize); err != nil {
		return err
	}
	if full {
		next.Columns = make([]ColumnDescriptor, 0, colCount)
	}
	for i := range colCount {
		if !full {
			if err := s.skipPrefixed(2); err != nil {
				return fmt.Errorf("column %d name: %w", i, err)
			}
			if _, err := s.take(1 + 4); err != nil {
				return fmt.Errorf("column %d descriptor: %w", i, err)
			}
			continue
		}
		var c ColumnDescriptor
		if c.Name, err = s.ReadString16Prefixed(); err != nil {
			return fmt.Errorf("column %d name: %w", i, err)
		}
		tag, err := s.ReadUInt8()
		if err != nil {
			return fmt.Errorf("column %q type: %w", c.Name, err)
		}
		c.Type = ColumnType(tag)
		if c.Size, err = s.ReadUInt32(); err != nil {
			return fmt.Errorf("column %q size: %w", c.Name, err)
		}
		if err := c.validate(); err != nil {
			return err
		}
		next.Columns = append(next.Columns, c)
	}

	rowCount, err := s.ReadUInt32()
	if err != nil {
		return fmt.Errorf("row count: %w", err)
	}
	if next.NextDataSetFilePos, err = s.ReadUInt32(); err != nil {
		return fmt.Errorf("next data set offset: %w", err)
	}
	if next.Name, err = s.ReadString16Prefixed(); err != nil {
		return fmt.Errorf("data set name: %w", err)
	}
	if full {
		next.RowCount = rowCount
		next.loaded = true
		if end := int64(next.DataStartFilePos) + next.DataSize(); end > s.Size() {
			return fmt.Errorf("%w: data set %q payload ends at %d, file has %d bytes", ErrCorruptFile, next.Name, end, s.Size())
		}
	}
	*h = next
	return nil
}
