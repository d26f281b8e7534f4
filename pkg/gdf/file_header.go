package gdf

import "fmt"

// FileHeader is the fixed prefix of a Generic Data File together with the
// directory parsed from it.
type FileHeader struct {
	Magic                 uint8
	Version               uint8
	DataGroupCount        uint32
	FirstDataGroupFilePos uint32
	GenericDataHeader     GenericDataHeader

	// DataGroups is filled by the directory walk; it stays empty when only
	// the header was read.
	DataGroups []DataGroupHeader
}

// FindDataGroup returns the group called name.
func (h *FileHeader) FindDataGroup(name string) (*DataGroupHeader, bool) {
	for i := range h.DataGroups {
		if h.DataGroups[i].Name == name {
			return &h.DataGroups[i], true
		}
	}
	return nil, false
}

// FileHeaderReader parses the fixed header and the root GenericDataHeader.
type FileHeaderReader struct {
	s *Stream
}

func NewFileHeaderReader(s *Stream) *FileHeaderReader {
	return &FileHeaderReader{s: s}
}

// Read parses from the start of the stream. Magic and version are checked
// before anything else is read.
func (r *FileHeaderReader) Read(h *FileHeader) error {
	if err := r.s.Seek(0); err != nil {
		return err
	}
	magic, err := r.s.ReadUInt8()
	if err != nil {
		return fmt.Errorf("magic: %w", err)
	}
	if magic != Magic {
		return fmt.Errorf("%w: magic %d, want %d", ErrInvalidFileType, magic, Magic)
	}
	version, err := r.s.ReadUInt8()
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	if version != Version {
		return fmt.Errorf("%w: version %d, want %d", ErrInvalidVersion, version, Version)
	}
	h.Magic = magic
	h.Version = version

	if h.DataGroupCount, err = r.s.ReadUInt32(); err != nil {
		return fmt.Errorf("data group count: %w", err)
	}
	if h.FirstDataGroupFilePos, err = r.s.ReadUInt32(); err != nil {
		return fmt.Errorf("first data group offset: %w", err)
	}
	if err := NewGenericDataHeaderReader(r.s).Read(&h.GenericDataHeader); err != nil {
		return fmt.Errorf("generic data header: %w", err)
	}
	return nil
}
