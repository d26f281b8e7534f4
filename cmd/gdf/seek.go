package main

import (
	"context"
	"fmt"
	"math"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gdf/pkg/gdf"
)

func seekCmd() *cli.Command {
	var (
		offset int64
		output string
	)

	return &cli.Command{
		Name:      "seek",
		Usage:     "Parse the data group whose header starts at a file offset",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "offset", Usage: "absolute offset of the group header", Required: true, Destination: &offset},
			outputFlag(&output),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path, err := fileArg(c)
			if err != nil {
				return err
			}
			applyOutputConfig(c, cfg, &output)
			if offset < 0 || offset > math.MaxUint32 {
				return fmt.Errorf("offset %d outside the 32-bit file range", offset)
			}

			data, err := gdf.ReadFile(path, gdf.NoDataGroupHeader, readerOptions(ctx, true)...)
			if err != nil {
				return err
			}
			defer func() { _ = data.Close() }()

			g, err := data.DataGroup(uint32(offset))
			if err != nil {
				return err
			}
			v := newGroupView(g.Header())
			if output == "text" {
				tw := &treeWriter{w: stdout(c)}
				tw.line(0, "group %q @%d next=%d", v.Name, v.Offset, v.NextOffset)
				for _, ds := range v.DataSets {
					tw.line(1, "data set %q @%d data=%d rows=%d columns=%d", ds.Name, ds.Offset, ds.DataOffset, ds.Rows, len(ds.Columns))
				}
				return tw.err
			}
			return encode(stdout(c), output, v)
		},
	}
}
