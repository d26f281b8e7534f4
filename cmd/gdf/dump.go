package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/gdf/pkg/gdf"
)

type tableView struct {
	Group   string       `json:"group" yaml:"group"`
	DataSet string       `json:"data_set" yaml:"data_set"`
	Rows    uint32       `json:"rows" yaml:"rows"`
	Columns []columnView `json:"columns" yaml:"columns"`
	Values  [][]any      `json:"values" yaml:"values"`
}

func dumpCmd() *cli.Command {
	var (
		group   string
		dataSet string
		limit   int
		noMmap  bool
		output  string
	)

	return &cli.Command{
		Name:      "dump",
		Usage:     "Print the rows of one data set",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "data group name", Required: true, Destination: &group},
			&cli.StringFlag{Name: "dataset", Aliases: []string{"s"}, Usage: "data set name", Required: true, Destination: &dataSet},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "maximum rows to print (0 = all)", Value: 20, Destination: &limit},
			noMmapFlag(&noMmap),
			outputFlag(&output),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path, err := fileArg(c)
			if err != nil {
				return err
			}
			if cfg.RowLimit != nil && !c.IsSet("limit") {
				limit = *cfg.RowLimit
			}
			applyMmapConfig(c, cfg, &noMmap)
			applyOutputConfig(c, cfg, &output)
			if limit < 0 {
				return fmt.Errorf("limit %d is negative", limit)
			}

			// Only the named data set is completed; its siblings stay stubs.
			data, err := gdf.ReadFile(path, gdf.MinDataGroupHeader, readerOptions(ctx, noMmap)...)
			if err != nil {
				return err
			}
			defer func() { _ = data.Close() }()

			r, err := data.DataSet(group, dataSet)
			if err != nil {
				return err
			}
			t, err := readTable(r, limit)
			if err != nil {
				return err
			}
			t.Group = group
			if output == "text" {
				return writeTableText(stdout(c), t)
			}
			return encode(stdout(c), output, t)
		},
	}
}

// readTable reads up to limit rows, or all rows when limit is zero.
func readTable(r *gdf.DataSetReader, limit int) (tableView, error) {
	h := r.Header()
	t := tableView{DataSet: h.Name, Rows: h.RowCount, Values: [][]any{}}
	for _, c := range h.Columns {
		t.Columns = append(t.Columns, columnView{Name: c.Name, Type: c.Type.String(), Size: c.Size})
	}
	for limit == 0 || len(t.Values) < limit {
		row, err := r.ReadRow()
		if errors.Is(err, gdf.ErrOutOfRows) {
			break
		}
		if err != nil {
			return tableView{}, err
		}
		vals, err := row.Values()
		if err != nil {
			return tableView{}, err
		}
		t.Values = append(t.Values, vals)
	}
	return t, nil
}

func writeTableText(w io.Writer, t tableView) error {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	if _, err := fmt.Fprintf(w, "# %s/%s: %d rows\n%s\n", t.Group, t.DataSet, t.Rows, strings.Join(names, "\t")); err != nil {
		return err
	}
	cells := make([]string, len(t.Columns))
	for _, row := range t.Values {
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	if n := len(t.Values); uint32(n) < t.Rows {
		_, err := fmt.Fprintf(w, "# ... %d more rows\n", t.Rows-uint32(n))
		return err
	}
	return nil
}
