package gdf_test

import (
	"github.com/samcharles93/gdf/internal/gdftest"
	"github.com/samcharles93/gdf/pkg/gdf"
)

var setColumns = []gdf.ColumnDescriptor{
	{Name: "a", Type: gdf.ColumnUInt32, Size: 4},
	{Name: "b", Type: gdf.ColumnFloat, Size: 4},
}

// singleSetFile has one group "Group1" holding "Set1" with ten (u32, f32) rows.
func singleSetFile() gdftest.File {
	rows := make([][]any, 10)
	for i := range rows {
		rows[i] = []any{uint32(100 + i), float32(i) + 0.25}
	}
	return gdftest.New("test", gdftest.Group{
		Name:     "Group1",
		DataSets: []gdftest.DataSet{{Name: "Set1", Columns: setColumns, Rows: rows}},
	})
}

// multiGroupFile has three groups with mixed column types and an empty set.
func multiGroupFile() gdftest.File {
	mixed := []gdf.ColumnDescriptor{
		{Name: "i8", Type: gdf.ColumnInt8, Size: 1},
		{Name: "u8", Type: gdf.ColumnUInt8, Size: 1},
		{Name: "i16", Type: gdf.ColumnInt16, Size: 2},
		{Name: "u16", Type: gdf.ColumnUInt16, Size: 2},
		{Name: "i32", Type: gdf.ColumnInt32, Size: 4},
		{Name: "probe", Type: gdf.ColumnASCII, Size: 4 + 8},
		{Name: "label", Type: gdf.ColumnUnicode, Size: 4 + 2*6},
	}
	return gdftest.New("affymetrix-calvin-intensity",
		gdftest.Group{
			Name: "Intensities",
			DataSets: []gdftest.DataSet{
				{Name: "Raw", Columns: setColumns, Rows: [][]any{{uint32(1), float32(1.5)}, {uint32(2), float32(2.5)}}},
				{Name: "Background", Columns: setColumns, Rows: [][]any{{uint32(7), float32(-0.5)}}},
				{Name: "Mixed", Columns: mixed, Rows: [][]any{
					{-3, 250, -1234, 65000, -70000, "AFFX-01", "café"},
					{4, 0, 12, 1, 1 << 20, "", "x"},
				}},
			},
		},
		gdftest.Group{
			Name: "Empty",
		},
		gdftest.Group{
			Name: "Summary",
			DataSets: []gdftest.DataSet{
				{Name: "NoRows", Columns: setColumns},
				{Name: "NoColumns"},
			},
		},
	)
}
