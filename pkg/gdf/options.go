package gdf

import "github.com/samcharles93/gdf/internal/logger"

type options struct {
	log  logger.Logger
	mmap bool
}

// Option configures a FileReader or GenericData.
type Option func(*options)

// WithLogger sets the logger used for debug tracing. The default discards
// everything.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMemoryMap controls whether DataSet payloads are read through a memory
// map. It is enabled by default; when disabled or unavailable payloads are
// read from the file stream.
func WithMemoryMap(enabled bool) Option {
	return func(o *options) { o.mmap = enabled }
}

func buildOptions(opts []Option) options {
	o := options{log: logger.Nop(), mmap: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
