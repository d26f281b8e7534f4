package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gdf/internal/logger"
	"github.com/samcharles93/gdf/pkg/gdf"
)

func inspectCmd() *cli.Command {
	var (
		depthName string
		output    string
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the header tree and directory of a file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "depth",
				Aliases:     []string{"d"},
				Usage:       "how much of the directory to parse (none, min, all)",
				Value:       "all",
				Destination: &depthName,
			},
			outputFlag(&output),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path, err := fileArg(c)
			if err != nil {
				return err
			}
			if cfg.Depth != "" && !c.IsSet("depth") {
				depthName = cfg.Depth
			}
			applyOutputConfig(c, cfg, &output)

			depth, ok := gdf.ParseReadDepth(depthName)
			if !ok {
				return fmt.Errorf("unknown depth %q (want none, min or all)", depthName)
			}

			log := logger.FromContext(ctx)
			data, err := gdf.ReadFile(path, depth, gdf.WithLogger(log))
			if err != nil {
				return err
			}
			defer func() { _ = data.Close() }()
			log.Debug("inspected file", "path", path, "groups", data.DataGroupCnt())

			v := newFileView(data)
			if output == "text" {
				return writeFileText(stdout(c), v)
			}
			return encode(stdout(c), output, v)
		},
	}
}
