package gdf

import "fmt"

// DataGroupHeader is a named collection of DataSet headers. Groups are
// chained on disk through NextGroupFilePos; zero ends the chain.
type DataGroupHeader struct {
	Name                string
	HeaderStartFilePos  uint32
	NextGroupFilePos    uint32
	FirstDataSetFilePos uint32
	DataSets            []DataSetHeader
}

// FindDataSet returns the DataSet header called name.
func (g *DataGroupHeader) FindDataSet(name string) (*DataSetHeader, bool) {
	for i := range g.DataSets {
		if g.DataSets[i].Name == name {
			return &g.DataSets[i], true
		}
	}
	return nil, false
}

// DataSetNames lists DataSet names in file order.
func (g *DataGroupHeader) DataSetNames() []string {
	names := make([]string, len(g.DataSets))
	for i := range g.DataSets {
		names[i] = g.DataSets[i].Name
	}
	return names
}

// DataGroupHeaderReader walks DataGroup headers and their DataSet headers.
type DataGroupHeaderReader struct {
	s *Stream
}

func NewDataGroupHeaderReader(s *Stream) *DataGroupHeaderReader {
	return &DataGroupHeaderReader{s: s}
}

// ReadHeader parses the group fields at the current position and returns the
// number of DataSets the group declares.
func (r *DataGroupHeaderReader) ReadHeader(g *DataGroupHeader) (uint32, error) {
	s := r.s
	start := s.Pos()
	if start > int64(^uint32(0)) {
		return 0, fmt.Errorf("%w: data group header at %d beyond 32-bit offsets", ErrCorruptFile, start)
	}
	if err := s.checkCount("data group header", 1, minDataGroupSize); err != nil {
		return 0, err
	}
	g.HeaderStartFilePos = uint32(start)

	var err error
	if g.NextGroupFilePos, err = s.ReadUInt32(); err != nil {
		return 0, fmt.Errorf("next data group offset: %w", err)
	}
	if g.FirstDataSetFilePos, err = s.ReadUInt32(); err != nil {
		return 0, fmt.Errorf("first data set offset: %w", err)
	}
	count, err := s.ReadUInt32()
	if err != nil {
		return 0, fmt.Errorf("data set count: %w", err)
	}
	if g.Name, err = s.ReadString16Prefixed(); err != nil {
		return 0, fmt.Errorf("data group name: %w", err)
	}
	if err := s.checkCount("data set", count, minDataSetHeaderSize); err != nil {
		return 0, err
	}
	return count, nil
}

// ReadMinimumInfo parses one group with stub DataSet headers and returns the
// offset of the next group.
func (r *DataGroupHeaderReader) ReadMinimumInfo(g *DataGroupHeader) (uint32, error) {
	return r.readGroup(g, false)
}

// ReadAll parses one group with complete DataSet headers and returns the
// offset of the next group.
func (r *DataGroupHeaderReader) ReadAll(g *DataGroupHeader) (uint32, error) {
	return r.readGroup(g, true)
}

func (r *DataGroupHeaderReader) readGroup(g *DataGroupHeader, full bool) (uint32, error) {
	count, err := r.ReadHeader(g)
	if err != nil {
		return 0, err
	}
	dsr := NewDataSetHeaderReader(r.s)
	g.DataSets = make([]DataSetHeader, count)
	pos := g.FirstDataSetFilePos
	for i := range g.DataSets {
		if err := r.s.Seek(int64(pos)); err != nil {
			return 0, fmt.Errorf("group %q data set %d: %w", g.Name, i, err)
		}
		ds := &g.DataSets[i]
		if full {
			err = dsr.ReadHeader(ds)
		} else {
			err = dsr.ReadMinimumInfo(ds)
		}
		if err != nil {
			return 0, fmt.Errorf("group %q data set %d: %w", g.Name, i, err)
		}
		pos = ds.NextDataSetFilePos
	}
	return g.NextGroupFilePos, nil
}

// ReadAllMinimumInfo walks every group from the file header's first group
// offset, following the stored next-group links.
func (r *DataGroupHeaderReader) ReadAllMinimumInfo(h *FileHeader) error {
	return r.walk(h, false)
}

// ReadAllGroups walks every group and parses all DataSet headers in full.
func (r *DataGroupHeaderReader) ReadAllGroups(h *FileHeader) error {
	return r.walk(h, true)
}

func (r *DataGroupHeaderReader) walk(h *FileHeader, full bool) error {
	if err := r.s.checkCount("data group", h.DataGroupCount, minDataGroupSize); err != nil {
		return err
	}
	groups := make([]DataGroupHeader, h.DataGroupCount)
	seen := make(map[uint32]struct{}, len(groups))
	pos := h.FirstDataGroupFilePos
	for i := range groups {
		if _, dup := seen[pos]; dup {
			return fmt.Errorf("%w: data group %d revisits offset %d", ErrCorruptFile, i, pos)
		}
		seen[pos] = struct{}{}
		if err := r.s.Seek(int64(pos)); err != nil {
			return fmt.Errorf("data group %d: %w", i, err)
		}
		next, err := r.readGroup(&groups[i], full)
		if err != nil {
			return fmt.Errorf("data group %d: %w", i, err)
		}
		if next == 0 && i+1 < len(groups) {
			return fmt.Errorf("%w: data group chain ended after %d of %d groups", ErrCorruptFile, i+1, len(groups))
		}
		pos = next
	}
	h.DataGroups = groups
	return nil
}
