package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gdf/internal/config"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	debug      bool

	// cfg is loaded once in setup and consulted by each command for flags
	// the user did not set.
	cfg config.Config
)

func globalFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       config.DefaultPath(),
			Destination: &configFile,
		},
	}, loggingFlags()...)
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func outputFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "output",
		Aliases:     []string{"o"},
		Usage:       "output format (text, json, yaml)",
		Value:       "text",
		Destination: dest,
	}
}

func noMmapFlag(dest *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "no-mmap",
		Usage:       "read payloads through the file stream instead of a memory map",
		Destination: dest,
	}
}
