package gdf_test

import (
	"bytes"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/gdf/internal/gdftest"
	"github.com/samcharles93/gdf/internal/logger"
	"github.com/samcharles93/gdf/pkg/gdf"
)

func TestDataSetReadRows(t *testing.T) {
	t.Parallel()
	path, _ := gdftest.WriteFile(t, singleSetFile())

	for _, mmap := range []bool{true, false} {
		data, err := gdf.ReadFile(path, gdf.AllHeaders, gdf.WithMemoryMap(mmap))
		require.NoError(t, err)

		r, err := data.DataSet("Group1", "Set1")
		require.NoError(t, err)
		assert.Equal(t, mmap, r.DataSet().Mapped())
		assert.Equal(t, uint32(10), r.Header().RowCount)

		for i := range 10 {
			row, err := r.ReadRow()
			require.NoError(t, err, "row %d", i)
			a, err := row.UInt32(0)
			require.NoError(t, err)
			b, err := row.Float(1)
			require.NoError(t, err)
			assert.Equal(t, uint32(100+i), a)
			assert.InDelta(t, float32(i)+0.25, b, 1e-6)
		}
		_, err = r.ReadRow()
		require.ErrorIs(t, err, gdf.ErrOutOfRows)
		assert.Zero(t, r.Remaining())

		r.Reset()
		row, err := r.ReadRow()
		require.NoError(t, err)
		vals, err := row.Values()
		require.NoError(t, err)
		assert.Equal(t, []any{uint32(100), float32(0.25)}, vals)

		require.NoError(t, r.SeekRow(9))
		row, err = r.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 9, row.Index())
		require.ErrorIs(t, r.SeekRow(11), gdf.ErrOutOfRows)

		require.NoError(t, data.Close())
	}
}

func TestDataSetNotFound(t *testing.T) {
	t.Parallel()
	path, _ := gdftest.WriteFile(t, multiGroupFile())
	data, err := gdf.ReadFile(path, gdf.AllHeaders)
	require.NoError(t, err)
	defer data.Close()

	_, err = data.DataSet("Intensities", "Missing")
	require.ErrorIs(t, err, gdf.ErrDataSetNotFound)
	_, err = data.DataSet("Nope", "Raw")
	require.ErrorIs(t, err, gdf.ErrDataGroupNotFound)
	_, err = data.DataSetByIndex(0, 3)
	require.ErrorIs(t, err, gdf.ErrDataSetNotFound)
	_, err = data.DataGroupHeader(-1)
	require.ErrorIs(t, err, gdf.ErrDataGroupNotFound)

	r, err := data.DataSet("Intensities", "Background")
	require.NoError(t, err)
	row, err := r.ReadRow()
	require.NoError(t, err)
	v, err := row.UInt32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
}

func TestDataSetMixedColumns(t *testing.T) {
	t.Parallel()
	path, _ := gdftest.WriteFile(t, multiGroupFile())
	data, err := gdf.ReadFile(path, gdf.AllHeaders)
	require.NoError(t, err)
	defer data.Close()

	r, err := data.DataSet("Intensities", "Mixed")
	require.NoError(t, err)
	ds := r.DataSet()
	assert.Equal(t, int64(1+1+2+2+4+12+16), ds.Header().RowSize())

	row, err := ds.Row(0)
	require.NoError(t, err)
	vals, err := row.Values()
	require.NoError(t, err)
	assert.Equal(t, []any{int8(-3), uint8(250), int16(-1234), uint16(65000), int32(-70000), "AFFX-01", "café"}, vals)

	row, err = ds.Row(1)
	require.NoError(t, err)
	probe, err := row.Text(5)
	require.NoError(t, err)
	assert.Empty(t, probe)
	label, err := row.Text(6)
	require.NoError(t, err)
	assert.Equal(t, "x", label)
	n, err := row.Int32(4)
	require.NoError(t, err)
	assert.Equal(t, int32(1<<20), n)

	_, err = row.Float(0)
	require.ErrorIs(t, err, gdf.ErrColumnType)
	_, err = row.Text(0)
	require.ErrorIs(t, err, gdf.ErrColumnType)
	_, err = row.Value(7)
	require.ErrorIs(t, err, gdf.ErrColumnType)

	_, err = ds.Row(2)
	require.ErrorIs(t, err, gdf.ErrOutOfRows)
	_, err = ds.Row(-1)
	require.ErrorIs(t, err, gdf.ErrOutOfRows)

	i32, err := ds.Int32Column(4, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int32{-70000, 1 << 20}, i32)
	_, err = ds.UInt32Column(4, 0, 2)
	require.ErrorIs(t, err, gdf.ErrColumnType)
}

func TestDataSetColumnReads(t *testing.T) {
	t.Parallel()
	path, _ := gdftest.WriteFile(t, singleSetFile())

	for _, mmap := range []bool{true, false} {
		data, err := gdf.ReadFile(path, gdf.AllHeaders, gdf.WithMemoryMap(mmap))
		require.NoError(t, err)
		r, err := data.DataSet("Group1", "Set1")
		require.NoError(t, err)
		ds := r.DataSet()

		a, err := ds.UInt32Column(0, 2, 3)
		require.NoError(t, err)
		assert.Equal(t, []uint32{102, 103, 104}, a)

		b, err := ds.Float32Column(1, 8, 2)
		require.NoError(t, err)
		assert.Equal(t, []float32{8.25, 9.25}, b)

		empty, err := ds.Float32Column(1, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, empty)

		_, err = ds.Float32Column(1, 8, 3)
		require.ErrorIs(t, err, gdf.ErrOutOfRows)
		_, err = ds.Float32Column(0, 0, 1)
		require.ErrorIs(t, err, gdf.ErrColumnType)
		_, err = ds.Float32Column(2, 0, 1)
		require.ErrorIs(t, err, gdf.ErrColumnType)

		require.NoError(t, data.Close())
	}
}

func TestDataSetEmpty(t *testing.T) {
	t.Parallel()
	path, _ := gdftest.WriteFile(t, multiGroupFile())
	data, err := gdf.ReadFile(path, gdf.AllHeaders)
	require.NoError(t, err)
	defer data.Close()

	names, err := data.DataSetNames(1)
	require.NoError(t, err)
	assert.Empty(t, names)
	n, err := data.DataSetCnt(1)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, name := range []string{"NoRows", "NoColumns"} {
		r, err := data.DataSet("Summary", name)
		require.NoError(t, err, name)
		assert.True(t, r.Header().Loaded(), name)
		assert.Zero(t, r.Remaining(), name)
		_, err = r.ReadRow()
		require.ErrorIs(t, err, gdf.ErrOutOfRows, name)
	}
}

func TestLazyCompletion(t *testing.T) {
	t.Parallel()
	path, _ := gdftest.WriteFile(t, multiGroupFile())
	data, err := gdf.ReadFile(path, gdf.MinDataGroupHeader)
	require.NoError(t, err)
	defer data.Close()

	g, err := data.FindDataGroupHeader("Intensities")
	require.NoError(t, err)
	require.False(t, g.DataSets[0].Loaded())

	r, err := data.DataSet("Intensities", "Raw")
	require.NoError(t, err)
	assert.True(t, g.DataSets[0].Loaded())
	assert.Equal(t, uint32(2), g.DataSets[0].RowCount)
	assert.Equal(t, setColumns, g.DataSets[0].Columns)
	assert.Equal(t, 2, r.Remaining())

	// Siblings stay stubs.
	assert.False(t, g.DataSets[1].Loaded())
	assert.False(t, g.DataSets[2].Loaded())

	before := g.DataSets[0]
	r2, err := data.DataSet("Intensities", "Raw")
	require.NoError(t, err)
	assert.Equal(t, before, g.DataSets[0])
	row, err := r2.ReadRow()
	require.NoError(t, err)
	v, err := row.Float(1)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), v)

	// A stub with no columns completes to an empty, loaded header.
	r3, err := data.DataSet("Summary", "NoColumns")
	require.NoError(t, err)
	assert.True(t, r3.Header().Loaded())
	assert.Zero(t, r3.Header().ColumnCount())
}

func TestDataGroupByOffset(t *testing.T) {
	t.Parallel()
	path, layout := gdftest.WriteFile(t, multiGroupFile())
	data, err := gdf.ReadFile(path, gdf.NoDataGroupHeader)
	require.NoError(t, err)
	defer data.Close()

	g, err := data.DataGroup(layout.GroupPos[2])
	require.NoError(t, err)
	assert.Equal(t, "Summary", g.Name())
	assert.Equal(t, []string{"NoRows", "NoColumns"}, g.DataSetNames())
	assert.Equal(t, 2, g.DataSetCnt())

	r, err := g.DataSetReaderByName("NoRows")
	require.NoError(t, err)
	assert.Equal(t, setColumns, r.Header().Columns)
	_, err = g.DataSetReader(2)
	require.ErrorIs(t, err, gdf.ErrDataSetNotFound)
	_, err = g.DataSetReaderByName("Missing")
	require.ErrorIs(t, err, gdf.ErrDataSetNotFound)

	_, err = data.DataGroup(layout.FileSize + 100)
	require.Error(t, err)
}

func TestMapFileIdempotent(t *testing.T) {
	t.Parallel()
	path, layout := gdftest.WriteFile(t, singleSetFile())
	data, err := gdf.ReadFile(path, gdf.AllHeaders)
	require.NoError(t, err)

	assert.False(t, data.IsMapped())
	require.NoError(t, data.UnmapFile())
	require.NoError(t, data.MapFile())
	require.NoError(t, data.MapFile())
	assert.True(t, data.IsMapped())

	r, err := data.DataSet("Group1", "Set1")
	require.NoError(t, err)
	assert.True(t, r.DataSet().Mapped())

	require.NoError(t, data.UnmapFile())
	require.NoError(t, data.UnmapFile())
	assert.False(t, data.IsMapped())

	// Without a mapping the same data set reads through the stream.
	row, err := r.DataSet().Row(3)
	require.NoError(t, err)
	v, err := row.UInt32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(103), v)

	require.NoError(t, data.Close())
	require.ErrorIs(t, data.MapFile(), gdf.ErrClosed)
	_, err = data.DataSet("Group1", "Set1")
	require.ErrorIs(t, err, gdf.ErrClosed)
	assert.Equal(t, 1, data.DataGroupCnt())

	region, err := gdf.MapFile(path)
	require.NoError(t, err)
	assert.Equal(t, int(layout.FileSize), region.Len())
	assert.Equal(t, gdf.Magic, region.Bytes()[0])
	require.NoError(t, region.Close())
	require.NoError(t, region.Close())
}

func TestMapFileMissing(t *testing.T) {
	t.Parallel()
	_, err := gdf.MapFile(t.TempDir() + "/missing.gdf")
	require.ErrorIs(t, err, gdf.ErrFileNotFound)

	data := gdf.NewGenericData()
	require.ErrorIs(t, data.MapFile(), gdf.ErrNotOpen)
}

func TestOpenBorrowsStream(t *testing.T) {
	t.Parallel()
	path, _ := gdftest.WriteFile(t, multiGroupFile())

	r := gdf.NewFileReader(path, gdf.WithMemoryMap(false))
	data := gdf.NewGenericData(gdf.WithMemoryMap(false))
	require.NoError(t, r.Open(data, gdf.All))

	g, err := r.DataGroupReaderByName("Intensities")
	require.NoError(t, err)
	dr, err := g.DataSetReaderByName("Mixed")
	require.NoError(t, err)
	assert.False(t, dr.DataSet().Mapped())
	row, err := dr.ReadRow()
	require.NoError(t, err)
	s, err := row.Text(6)
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	// Closing the data leaves the reader's stream alone.
	require.NoError(t, data.Close())
	require.NoError(t, r.Close())
}

func TestReopenKeepsNewestStream(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("open files cannot be removed on windows")
	}
	t.Parallel()
	path, _ := gdftest.WriteFile(t, singleSetFile())
	data := gdf.NewGenericData(gdf.WithMemoryMap(false))

	r1 := gdf.NewFileReader(path)
	require.NoError(t, r1.Open(data, gdf.All))
	r2 := gdf.NewFileReader(path)
	require.NoError(t, r2.Open(data, gdf.All))

	// Closing the first reader must not strip the second reader's stream.
	require.NoError(t, r1.Close())
	require.NoError(t, os.Remove(path))

	r, err := data.DataSet("Group1", "Set1")
	require.NoError(t, err)
	row, err := r.ReadRow()
	require.NoError(t, err)
	v, err := row.UInt32(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), v)

	require.NoError(t, r2.Close())
}

func TestMapFailureWarnsOnce(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("open files cannot be removed on windows")
	}
	t.Parallel()
	path, _ := gdftest.WriteFile(t, singleSetFile())

	var logs bytes.Buffer
	log := logger.JSON(&logs, slog.LevelDebug)
	r := gdf.NewFileReader(path, gdf.WithLogger(log))
	data := gdf.NewGenericData(gdf.WithLogger(log))
	require.NoError(t, r.Open(data, gdf.All))
	defer func() { require.NoError(t, r.Close()) }()

	// The borrowed stream still reads the unlinked file; mapping it by path fails.
	require.NoError(t, os.Remove(path))
	for range 3 {
		dr, err := data.DataSet("Group1", "Set1")
		require.NoError(t, err)
		assert.False(t, dr.DataSet().Mapped())
		row, err := dr.ReadRow()
		require.NoError(t, err)
		f, err := row.Float(1)
		require.NoError(t, err)
		assert.Equal(t, float32(0.25), f)
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "memory map unavailable"))
}
