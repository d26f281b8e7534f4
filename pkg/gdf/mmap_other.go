//go:build !unix && !windows

package gdf

import (
	"fmt"
	"os"
	"runtime"
)

func mapFile(_ *os.File, _ int) ([]byte, func() error, error) {
	return nil, nil, fmt.Errorf("%w: memory mapping on %s", ErrNotImplemented, runtime.GOOS)
}
