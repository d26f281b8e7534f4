package gdf

import (
	"fmt"
	"os"
)

// Region is a read-only view of a whole file. Close releases the mapping and
// may be called more than once.
type Region struct {
	data    []byte
	release func() error
}

// MapFile maps path read-only into memory.
func MapFile(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := st.Size()
	if size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: %d-byte file cannot be mapped", ErrCorruptFile, size)
	}
	if size == 0 {
		return &Region{}, nil
	}
	data, release, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return &Region{data: data, release: release}, nil
}

// Bytes returns the mapped bytes. The slice must not be used after Close.
func (r *Region) Bytes() []byte {
	if r == nil {
		return nil
	}
	return r.data
}

func (r *Region) Len() int {
	if r == nil {
		return 0
	}
	return len(r.data)
}

func (r *Region) Close() error {
	if r == nil || r.release == nil {
		return nil
	}
	release := r.release
	r.release = nil
	r.data = nil
	return release()
}
