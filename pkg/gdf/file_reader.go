package gdf

import (
	"fmt"
	"os"
)

// FileReader parses a Generic Data File into a GenericData.
//
// ReadHeader opens, parses and closes the file in one call. Open parses every
// header and keeps the stream open, bound to the GenericData, until Close.
type FileReader struct {
	path string
	opts options

	data *GenericData
	file *os.File
}

func NewFileReader(path string, opts ...Option) *FileReader {
	return &FileReader{path: path, opts: buildOptions(opts)}
}

func (r *FileReader) Path() string { return r.path }

// IsOpen reports whether Open succeeded and Close has not been called.
func (r *FileReader) IsOpen() bool { return r.file != nil }

// ReadHeader parses the file to the given depth into data. The file is closed
// before returning. It fails with ErrAlreadyOpen while the reader is open.
func (r *FileReader) ReadHeader(data *GenericData, depth ReadDepth) error {
	if r.IsOpen() {
		return ErrAlreadyOpen
	}
	f, s, err := r.openStream()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	h, err := r.parse(s, depth)
	if err != nil {
		return err
	}
	return data.reset(r.path, h, depth)
}

// Open parses every header into data and keeps the stream open. Only the All
// hint is supported.
func (r *FileReader) Open(data *GenericData, hint OpenHint) error {
	switch hint {
	case All:
	case Sequential:
		return fmt.Errorf("%w: sequential open", ErrNotImplemented)
	default:
		return fmt.Errorf("%w: open hint %d", ErrNotImplemented, hint)
	}
	if r.IsOpen() {
		return ErrAlreadyOpen
	}
	f, s, err := r.openStream()
	if err != nil {
		return err
	}
	h, err := r.parse(s, AllHeaders)
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := data.reset(r.path, h, AllHeaders); err != nil {
		r.opts.log.Warn("releasing previous file state", "error", err)
	}
	data.attach(f, s)
	r.data, r.file = data, f
	return nil
}

// DataGroupCnt returns the number of groups of the open file.
func (r *FileReader) DataGroupCnt() (int, error) {
	if !r.IsOpen() {
		return 0, ErrNotOpen
	}
	return r.data.DataGroupCnt(), nil
}

// DataGroupReader returns a reader for the group at index.
func (r *FileReader) DataGroupReader(index int) (*DataGroupReader, error) {
	if !r.IsOpen() {
		return nil, ErrNotOpen
	}
	g, err := r.data.DataGroupHeader(index)
	if err != nil {
		return nil, err
	}
	return &DataGroupReader{data: r.data, header: g}, nil
}

// DataGroupReaderByName returns a reader for the group called name.
func (r *FileReader) DataGroupReaderByName(name string) (*DataGroupReader, error) {
	if !r.IsOpen() {
		return nil, ErrNotOpen
	}
	g, err := r.data.FindDataGroupHeader(name)
	if err != nil {
		return nil, err
	}
	return &DataGroupReader{data: r.data, header: g}, nil
}

// Close closes the stream and detaches the reader from its GenericData.
// Closing a reader that is not open is a no-op.
func (r *FileReader) Close() error {
	if !r.IsOpen() {
		return nil
	}
	r.data.detach(r.file)
	err := r.file.Close()
	r.data, r.file = nil, nil
	return err
}

func (r *FileReader) openStream() (*os.File, *Stream, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	s, err := NewStream(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return f, s, nil
}

func (r *FileReader) parse(s *Stream, depth ReadDepth) (FileHeader, error) {
	log := r.opts.log.With("path", r.path)
	var h FileHeader
	if err := NewFileHeaderReader(s).Read(&h); err != nil {
		return FileHeader{}, fmt.Errorf("%s: %w", r.path, err)
	}
	log.Debug("read file header", "groups", h.DataGroupCount, "file_type", h.GenericDataHeader.FileTypeID, "depth", depth.String())

	gr := NewDataGroupHeaderReader(s)
	var err error
	switch depth {
	case NoDataGroupHeader:
	case MinDataGroupHeader:
		err = gr.ReadAllMinimumInfo(&h)
	case AllHeaders:
		err = gr.ReadAllGroups(&h)
	default:
		return FileHeader{}, fmt.Errorf("%w: read depth %d", ErrNotImplemented, depth)
	}
	if err != nil {
		return FileHeader{}, fmt.Errorf("%s: %w", r.path, err)
	}
	log.Debug("read data group headers", "groups", len(h.DataGroups))
	return h, nil
}

// ReadFile parses path to depth and returns the result. The returned
// GenericData opens the file again on first data access; Close it when done.
func ReadFile(path string, depth ReadDepth, opts ...Option) (*GenericData, error) {
	data := NewGenericData(opts...)
	if err := NewFileReader(path, opts...).ReadHeader(data, depth); err != nil {
		return nil, err
	}
	return data, nil
}
