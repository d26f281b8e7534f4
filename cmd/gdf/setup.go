package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gdf/internal/config"
	"github.com/samcharles93/gdf/internal/logger"
	"github.com/samcharles93/gdf/pkg/gdf"
)

// setup loads the config file and installs the logger on the context.
func setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	loaded, err := config.Load(configFile)
	if err != nil {
		return ctx, err
	}
	cfg = loaded
	applyLoggingConfig(c, cfg, &logLevel, &logFormat)

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return ctx, err
	}
	if debug {
		level = slog.LevelDebug
	}
	log, err := logger.ForFormat(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, err
	}
	log.Debug("loaded config", "path", configFile)
	return logger.WithContext(ctx, log), nil
}

// flagSetter is the part of *cli.Command the apply functions need.
type flagSetter interface {
	IsSet(name string) bool
}

// applyLoggingConfig applies config file defaults to the logging flags when
// the corresponding flag was not explicitly set.
func applyLoggingConfig(c flagSetter, cfg config.Config, level, format *string) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		*format = cfg.LogFormat
	}
}

func applyOutputConfig(c flagSetter, cfg config.Config, output *string) {
	if cfg.Output != "" && !c.IsSet("output") {
		*output = cfg.Output
	}
}

func applyMmapConfig(c flagSetter, cfg config.Config, noMmap *bool) {
	if cfg.MemoryMap != nil && !c.IsSet("no-mmap") {
		*noMmap = !*cfg.MemoryMap
	}
}

func readerOptions(ctx context.Context, noMmap bool) []gdf.Option {
	return []gdf.Option{
		gdf.WithLogger(logger.FromContext(ctx)),
		gdf.WithMemoryMap(!noMmap),
	}
}

func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func fileArg(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("%s: expected exactly one FILE argument", c.Name)
	}
	return c.Args().First(), nil
}
