package gdf

import "errors"

var (
	ErrInvalidFileType   = errors.New("gdf: invalid file type")
	ErrInvalidVersion    = errors.New("gdf: invalid file version")
	ErrFileNotFound      = errors.New("gdf: file not found")
	ErrDataGroupNotFound = errors.New("gdf: data group not found")
	ErrDataSetNotFound   = errors.New("gdf: data set not found")
	ErrNotImplemented    = errors.New("gdf: not implemented")
	ErrCorruptFile       = errors.New("gdf: corrupt file")

	// ErrOutOfRows is returned by DataSetReader.ReadRow after the last row.
	ErrOutOfRows = errors.New("gdf: no more rows")

	ErrColumnType    = errors.New("gdf: column type mismatch")
	ErrParameterType = errors.New("gdf: parameter type mismatch")
	ErrNotOpen       = errors.New("gdf: reader not open")
	ErrAlreadyOpen   = errors.New("gdf: reader already open")
	ErrClosed        = errors.New("gdf: data is closed")
)
