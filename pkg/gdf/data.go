package gdf

import (
	"errors"
	"fmt"
	"os"
)

// GenericData holds the parsed header tree of one file and the resources used
// to reach its payloads: a file stream opened on demand and a memory map
// created on first data access.
//
// A GenericData is not safe for concurrent use. Resolving a DataSet may
// complete a minimum-info header in place.
type GenericData struct {
	path   string
	header FileHeader
	depth  ReadDepth
	opts   options

	file     *os.File
	stream   *Stream
	borrowed bool // file belongs to a FileReader
	region   *Region
	closed   bool

	// mmapFailed stops openDataSet retrying a mapping that already failed.
	mmapFailed bool
}

// NewGenericData returns an empty GenericData. Populate it with
// FileReader.ReadHeader or FileReader.Open.
func NewGenericData(opts ...Option) *GenericData {
	return &GenericData{opts: buildOptions(opts)}
}

// reset discards any previous file state and installs a newly parsed header.
func (d *GenericData) reset(path string, h FileHeader, depth ReadDepth) error {
	err := d.Close()
	d.path = path
	d.header = h
	d.depth = depth
	d.closed = false
	d.mmapFailed = false
	return err
}

// Path returns the file the header was read from.
func (d *GenericData) Path() string { return d.path }

// Depth reports how far the directory was parsed.
func (d *GenericData) Depth() ReadDepth { return d.depth }

func (d *GenericData) Header() *FileHeader { return &d.header }

func (d *GenericData) GenericDataHeader() *GenericDataHeader {
	return &d.header.GenericDataHeader
}

// DataGroupCnt returns the number of parsed groups.
func (d *GenericData) DataGroupCnt() int { return len(d.header.DataGroups) }

// DataGroupNames lists group names in file order.
func (d *GenericData) DataGroupNames() []string {
	names := make([]string, len(d.header.DataGroups))
	for i := range d.header.DataGroups {
		names[i] = d.header.DataGroups[i].Name
	}
	return names
}

// DataGroupHeader returns the group at index.
func (d *GenericData) DataGroupHeader(index int) (*DataGroupHeader, error) {
	if index < 0 || index >= len(d.header.DataGroups) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrDataGroupNotFound, index, len(d.header.DataGroups))
	}
	return &d.header.DataGroups[index], nil
}

// FindDataGroupHeader returns the group called name.
func (d *GenericData) FindDataGroupHeader(name string) (*DataGroupHeader, error) {
	g, ok := d.header.FindDataGroup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDataGroupNotFound, name)
	}
	return g, nil
}

// FindDataSetHeader returns the DataSet called name within g.
func (d *GenericData) FindDataSetHeader(g *DataGroupHeader, name string) (*DataSetHeader, error) {
	ds, ok := g.FindDataSet(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in group %q", ErrDataSetNotFound, name, g.Name)
	}
	return ds, nil
}

// DataSetCnt returns the number of DataSets in the group at index.
func (d *GenericData) DataSetCnt(group int) (int, error) {
	g, err := d.DataGroupHeader(group)
	if err != nil {
		return 0, err
	}
	return len(g.DataSets), nil
}

// DataSetNames lists the DataSets of the group at index.
func (d *GenericData) DataSetNames(group int) ([]string, error) {
	g, err := d.DataGroupHeader(group)
	if err != nil {
		return nil, err
	}
	return g.DataSetNames(), nil
}

// DataSet resolves a DataSet by group and DataSet name and returns a reader
// positioned at its first row.
func (d *GenericData) DataSet(group, dataSet string) (*DataSetReader, error) {
	g, err := d.FindDataGroupHeader(group)
	if err != nil {
		return nil, err
	}
	h, err := d.FindDataSetHeader(g, dataSet)
	if err != nil {
		return nil, err
	}
	return d.openDataSet(h)
}

// DataSetByIndex resolves a DataSet by position.
func (d *GenericData) DataSetByIndex(group, dataSet int) (*DataSetReader, error) {
	g, err := d.DataGroupHeader(group)
	if err != nil {
		return nil, err
	}
	if dataSet < 0 || dataSet >= len(g.DataSets) {
		return nil, fmt.Errorf("%w: index %d of %d in group %q", ErrDataSetNotFound, dataSet, len(g.DataSets), g.Name)
	}
	return d.openDataSet(&g.DataSets[dataSet])
}

func (d *GenericData) openDataSet(h *DataSetHeader) (*DataSetReader, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if err := d.complete(h); err != nil {
		return nil, err
	}
	if d.opts.mmap && !d.mmapFailed {
		if err := d.MapFile(); err != nil {
			d.mmapFailed = true
			d.opts.log.Warn("memory map unavailable, reading through stream", "path", d.path, "error", err)
		}
	}
	ds, err := newDataSet(d, h)
	if err != nil {
		return nil, err
	}
	return &DataSetReader{ds: ds}, nil
}

// complete upgrades a minimum-info header to a full one by re-reading it at
// its recorded offset. Complete headers are left untouched.
func (d *GenericData) complete(h *DataSetHeader) error {
	if h.Loaded() {
		return nil
	}
	s, err := d.openStream()
	if err != nil {
		return err
	}
	if err := s.Seek(int64(h.HeaderStartFilePos)); err != nil {
		return fmt.Errorf("data set %q: %w", h.Name, err)
	}
	var full DataSetHeader
	if err := NewDataSetHeaderReader(s).ReadHeader(&full); err != nil {
		return fmt.Errorf("data set %q: %w", h.Name, err)
	}
	if full.Name != h.Name || full.DataStartFilePos != h.DataStartFilePos {
		return fmt.Errorf("%w: data set %q changed on disk", ErrCorruptFile, h.Name)
	}
	d.opts.log.Debug("completed data set header", "data_set", h.Name, "columns", len(full.Columns), "rows", full.RowCount)
	*h = full
	return nil
}

// DataGroup parses the group whose header starts at filePos, with all of its
// DataSet headers, using a fresh stream. It lets callers jump to a group
// offset recorded earlier without walking the group chain.
func (d *GenericData) DataGroup(filePos uint32) (*DataGroupReader, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.path == "" {
		return nil, ErrNotOpen
	}
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	defer func() { _ = f.Close() }()

	s, err := NewStream(f)
	if err != nil {
		return nil, err
	}
	if err := s.Seek(int64(filePos)); err != nil {
		return nil, fmt.Errorf("data group at %d: %w", filePos, err)
	}
	g := &DataGroupHeader{}
	if _, err := NewDataGroupHeaderReader(s).ReadAll(g); err != nil {
		return nil, fmt.Errorf("data group at %d: %w", filePos, err)
	}
	d.opts.log.Debug("read data group by offset", "offset", filePos, "group", g.Name, "data_sets", len(g.DataSets))
	return &DataGroupReader{data: d, header: g}, nil
}

// MapFile maps the file read-only. Mapping an already mapped file is a no-op.
func (d *GenericData) MapFile() error {
	if d.region != nil {
		return nil
	}
	if d.closed {
		return ErrClosed
	}
	if d.path == "" {
		return ErrNotOpen
	}
	r, err := MapFile(d.path)
	if err != nil {
		return err
	}
	d.region = r
	d.opts.log.Debug("mapped file", "path", d.path, "bytes", r.Len())
	return nil
}

// UnmapFile releases the mapping. Unmapping an unmapped file is a no-op.
// Rows obtained from the mapping must not be used afterwards.
func (d *GenericData) UnmapFile() error {
	if d.region == nil {
		return nil
	}
	err := d.region.Close()
	d.region = nil
	d.opts.log.Debug("unmapped file", "path", d.path)
	return err
}

// IsMapped reports whether a mapping is held.
func (d *GenericData) IsMapped() bool { return d.region != nil }

// Close releases the mapping and any stream opened by d. Header queries keep
// working; data access fails with ErrClosed.
func (d *GenericData) Close() error {
	err := d.UnmapFile()
	if d.file != nil && !d.borrowed {
		err = errors.Join(err, d.file.Close())
	}
	d.file = nil
	d.stream = nil
	d.borrowed = false
	d.closed = true
	return err
}

// attach binds a stream owned by a FileReader.
func (d *GenericData) attach(f *os.File, s *Stream) {
	if d.file != nil && !d.borrowed {
		_ = d.file.Close()
	}
	d.file = f
	d.stream = s
	d.borrowed = true
}

// detach forgets the borrowed stream f without closing it. A stream attached
// later by another reader is left in place.
func (d *GenericData) detach(f *os.File) {
	if d.borrowed && d.file == f {
		d.file = nil
		d.stream = nil
		d.borrowed = false
	}
}

func (d *GenericData) openStream() (*Stream, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.stream != nil {
		return d.stream, nil
	}
	if d.path == "" {
		return nil, ErrNotOpen
	}
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	s, err := NewStream(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	d.file = f
	d.stream = s
	d.borrowed = false
	return s, nil
}

// payload returns the mapped bytes for [off, off+n) when a mapping is held.
func (d *GenericData) payload(off, n int64) ([]byte, bool) {
	if d.region == nil {
		return nil, false
	}
	b := d.region.Bytes()
	if off < 0 || n < 0 || off+n > int64(len(b)) {
		return nil, false
	}
	return b[off : off+n : off+n], true
}

// readAt copies [off, off+len(p)) from the file stream.
func (d *GenericData) readAt(p []byte, off int64) error {
	if _, err := d.openStream(); err != nil {
		return err
	}
	if _, err := d.file.ReadAt(p, off); err != nil {
		return fmt.Errorf("read %d bytes at %d: %w", len(p), off, err)
	}
	return nil
}
