package gdf

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenericDataHeader identifies a file and records how it was produced.
// Parents holds the headers of the files this one was derived from, each
// carrying its own parents. The tree is owned by value and has no back
// references.
type GenericDataHeader struct {
	FileTypeID   string
	FileID       string
	CreationTime string
	Locale       string
	Parameters   []Parameter
	Parents      []GenericDataHeader
}

// AppendParameter adds p without checking for an existing name.
func (h *GenericDataHeader) AppendParameter(p Parameter) {
	h.Parameters = append(h.Parameters, p)
}

// AppendParameterUnique replaces the value and type of an existing parameter
// with the same name, or appends p. Each call scans all parameters.
func (h *GenericDataHeader) AppendParameterUnique(p Parameter) {
	for i := range h.Parameters {
		if h.Parameters[i].Name == p.Name {
			h.Parameters[i] = p
			return
		}
	}
	h.Parameters = append(h.Parameters, p)
}

// AppendParent records parent as an ancestor of h.
func (h *GenericDataHeader) AppendParent(parent GenericDataHeader) {
	h.Parents = append(h.Parents, parent)
}

// FindParameter returns the first parameter called name.
func (h *GenericDataHeader) FindParameter(name string) (Parameter, bool) {
	for _, p := range h.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// FindParent searches the provenance tree depth-first for a header with the
// given file type identifier. h itself is not considered.
func (h *GenericDataHeader) FindParent(fileTypeID string) (*GenericDataHeader, bool) {
	for i := range h.Parents {
		p := &h.Parents[i]
		if p.FileTypeID == fileTypeID {
			return p, true
		}
		if found, ok := p.FindParent(fileTypeID); ok {
			return found, true
		}
	}
	return nil, false
}

// FileUUID parses FileID as a GUID.
func (h *GenericDataHeader) FileUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(h.FileID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("file id %q: %w", h.FileID, err)
	}
	return id, nil
}

var creationTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// CreatedAt parses CreationTime, which is written in ISO 8601 form.
func (h *GenericDataHeader) CreatedAt() (time.Time, error) {
	if h.CreationTime == "" {
		return time.Time{}, errors.New("creation time not set")
	}
	for _, layout := range creationTimeLayouts {
		if t, err := time.Parse(layout, h.CreationTime); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("creation time %q is not ISO 8601", h.CreationTime)
}

// GenericDataHeaderReader parses a GenericDataHeader and its parents.
type GenericDataHeaderReader struct {
	s *Stream
}

func NewGenericDataHeaderReader(s *Stream) *GenericDataHeaderReader {
	return &GenericDataHeaderReader{s: s}
}

// Read parses a header at the current stream position into h, appending
// every parameter as stored.
func (r *GenericDataHeaderReader) Read(h *GenericDataHeader) error {
	return r.read(h, 0, (*GenericDataHeader).AppendParameter)
}

// ReadMerge parses a header into h, replacing parameters already present by
// name. Use it when h already holds parameters that the file may override.
func (r *GenericDataHeaderReader) ReadMerge(h *GenericDataHeader) error {
	return r.read(h, 0, (*GenericDataHeader).AppendParameterUnique)
}

func (r *GenericDataHeaderReader) read(h *GenericDataHeader, depth int, add func(*GenericDataHeader, Parameter)) error {
	if depth > MaxParentDepth {
		return fmt.Errorf("%w: parent headers nested deeper than %d", ErrCorruptFile, MaxParentDepth)
	}
	s := r.s
	var err error
	if h.FileTypeID, err = s.ReadString8Prefixed(); err != nil {
		return fmt.Errorf("file type id: %w", err)
	}
	if h.FileID, err = s.ReadString8Prefixed(); err != nil {
		return fmt.Errorf("file id: %w", err)
	}
	if h.CreationTime, err = s.ReadString16Prefixed(); err != nil {
		return fmt.Errorf("creation time: %w", err)
	}
	if h.Locale, err = s.ReadString16Prefixed(); err != nil {
		return fmt.Errorf("locale: %w", err)
	}

	paramCount, err := s.ReadUInt32()
	if err != nil {
		return fmt.Errorf("parameter count: %w", err)
	}
	if err := s.checkCount("parameter", paramCount, minParameterSize); err != nil {
		return err
	}
	for i := range paramCount {
		var p Parameter
		if p.Name, err = s.ReadString16Prefixed(); err != nil {
			return fmt.Errorf("parameter %d name: %w", i, err)
		}
		if p.Value, err = s.ReadBlob(); err != nil {
			return fmt.Errorf("parameter %q value: %w", p.Name, err)
		}
		if p.Type, err = s.ReadString16Prefixed(); err != nil {
			return fmt.Errorf("parameter %q type: %w", p.Name, err)
		}
		add(h, p)
	}

	parentCount, err := s.ReadUInt32()
	if err != nil {
		return fmt.Errorf("parent count: %w", err)
	}
	if err := s.checkCount("parent", parentCount, minGenericHeaderSize); err != nil {
		return err
	}
	for i := range parentCount {
		var parent GenericDataHeader
		if err := r.read(&parent, depth+1, (*GenericDataHeader).AppendParameter); err != nil {
			return fmt.Errorf("parent %d: %w", i, err)
		}
		h.AppendParent(parent)
	}
	return nil
}
