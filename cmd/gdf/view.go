package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/gdf/pkg/gdf"
)

// The view types are the serialised form of a parsed file for json and yaml
// output. Offsets are absolute file positions.

type fileView struct {
	Path                  string      `json:"path" yaml:"path"`
	Magic                 uint8       `json:"magic" yaml:"magic"`
	Version               uint8       `json:"version" yaml:"version"`
	DataGroupCount        uint32      `json:"data_group_count" yaml:"data_group_count"`
	FirstDataGroupFilePos uint32      `json:"first_data_group_offset" yaml:"first_data_group_offset"`
	Depth                 string      `json:"depth" yaml:"depth"`
	Header                headerView  `json:"header" yaml:"header"`
	Groups                []groupView `json:"groups,omitempty" yaml:"groups,omitempty"`
}

type headerView struct {
	FileTypeID   string       `json:"file_type_id" yaml:"file_type_id"`
	FileID       string       `json:"file_id" yaml:"file_id"`
	CreationTime string       `json:"creation_time,omitempty" yaml:"creation_time,omitempty"`
	Locale       string       `json:"locale,omitempty" yaml:"locale,omitempty"`
	Parameters   []paramView  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Parents      []headerView `json:"parents,omitempty" yaml:"parents,omitempty"`
}

type paramView struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

type groupView struct {
	Name       string        `json:"name" yaml:"name"`
	Offset     uint32        `json:"offset" yaml:"offset"`
	NextOffset uint32        `json:"next_offset" yaml:"next_offset"`
	DataSets   []dataSetView `json:"data_sets" yaml:"data_sets"`
}

type dataSetView struct {
	Name       string       `json:"name" yaml:"name"`
	Offset     uint32       `json:"offset" yaml:"offset"`
	DataOffset uint32       `json:"data_offset" yaml:"data_offset"`
	Loaded     bool         `json:"loaded" yaml:"loaded"`
	Rows       uint32       `json:"rows" yaml:"rows"`
	Columns    []columnView `json:"columns,omitempty" yaml:"columns,omitempty"`
}

type columnView struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Size uint32 `json:"size" yaml:"size"`
}

func newFileView(d *gdf.GenericData) fileView {
	h := d.Header()
	v := fileView{
		Path:                  d.Path(),
		Magic:                 h.Magic,
		Version:               h.Version,
		DataGroupCount:        h.DataGroupCount,
		FirstDataGroupFilePos: h.FirstDataGroupFilePos,
		Depth:                 d.Depth().String(),
		Header:                newHeaderView(&h.GenericDataHeader),
	}
	for i := range h.DataGroups {
		v.Groups = append(v.Groups, newGroupView(&h.DataGroups[i]))
	}
	return v
}

func newHeaderView(h *gdf.GenericDataHeader) headerView {
	v := headerView{
		FileTypeID:   h.FileTypeID,
		FileID:       h.FileID,
		CreationTime: h.CreationTime,
		Locale:       h.Locale,
	}
	for _, p := range h.Parameters {
		v.Parameters = append(v.Parameters, paramView{Name: p.Name, Type: p.Type, Value: p.String()})
	}
	for i := range h.Parents {
		v.Parents = append(v.Parents, newHeaderView(&h.Parents[i]))
	}
	return v
}

func newGroupView(g *gdf.DataGroupHeader) groupView {
	v := groupView{
		Name:       g.Name,
		Offset:     g.HeaderStartFilePos,
		NextOffset: g.NextGroupFilePos,
		DataSets:   make([]dataSetView, 0, len(g.DataSets)),
	}
	for i := range g.DataSets {
		ds := &g.DataSets[i]
		dv := dataSetView{
			Name:       ds.Name,
			Offset:     ds.HeaderStartFilePos,
			DataOffset: ds.DataStartFilePos,
			Loaded:     ds.Loaded(),
			Rows:       ds.RowCount,
		}
		for _, c := range ds.Columns {
			dv.Columns = append(dv.Columns, columnView{Name: c.Name, Type: c.Type.String(), Size: c.Size})
		}
		v.DataSets = append(v.DataSets, dv)
	}
	return v
}

// encode writes v as json or yaml.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeFileText(w io.Writer, v fileView) error {
	tw := &treeWriter{w: w}
	tw.line(0, "file %s", v.Path)
	tw.line(1, "magic %d, version %d", v.Magic, v.Version)
	tw.line(1, "data groups %d, first at %d", v.DataGroupCount, v.FirstDataGroupFilePos)
	writeHeaderText(tw, 1, v.Header)
	for _, g := range v.Groups {
		tw.line(1, "group %q @%d next=%d", g.Name, g.Offset, g.NextOffset)
		for _, ds := range g.DataSets {
			if !ds.Loaded {
				tw.line(2, "data set %q @%d data=%d (stub)", ds.Name, ds.Offset, ds.DataOffset)
				continue
			}
			tw.line(2, "data set %q @%d data=%d rows=%d", ds.Name, ds.Offset, ds.DataOffset, ds.Rows)
			for _, c := range ds.Columns {
				tw.line(3, "%s %s[%d]", c.Name, c.Type, c.Size)
			}
		}
	}
	return tw.err
}

func writeHeaderText(tw *treeWriter, depth int, h headerView) {
	tw.line(depth, "header %s", h.FileTypeID)
	tw.line(depth+1, "file id: %s", h.FileID)
	if h.CreationTime != "" {
		tw.line(depth+1, "created: %s", h.CreationTime)
	}
	if h.Locale != "" {
		tw.line(depth+1, "locale:  %s", h.Locale)
	}
	for _, p := range h.Parameters {
		tw.line(depth+1, "%s = %s (%s)", p.Name, p.Value, p.Type)
	}
	for _, parent := range h.Parents {
		writeHeaderText(tw, depth+1, parent)
	}
}

// treeWriter indents lines by depth and keeps the first write error.
type treeWriter struct {
	w   io.Writer
	err error
}

func (t *treeWriter) line(depth int, format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%s"+format+"\n", append([]any{strings.Repeat("  ", depth)}, args...)...)
}
