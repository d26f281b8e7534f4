package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/samcharles93/gdf/internal/logger"
	"github.com/samcharles93/gdf/pkg/gdf"
)

// verifyResult summarises one file. Err is nil when every header parsed and
// every row of every data set could be read.
type verifyResult struct {
	Path     string
	Groups   int
	DataSets int
	Rows     int
	Err      error
}

func verifyCmd() *cli.Command {
	var (
		jobs   int
		noMmap bool
	)

	return &cli.Command{
		Name:      "verify",
		Usage:     "Parse every header and read every row of one or more files",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "files verified concurrently", Value: runtime.NumCPU(), Destination: &jobs},
			noMmapFlag(&noMmap),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return errors.New("verify: expected at least one FILE argument")
			}
			if cfg.Jobs != nil && !c.IsSet("jobs") {
				jobs = *cfg.Jobs
			}
			applyMmapConfig(c, cfg, &noMmap)

			results, err := verifyFiles(ctx, paths, jobs, readerOptions(ctx, noMmap)...)
			if err != nil {
				return err
			}
			return reportVerify(stdout(c), results)
		},
	}
}

// verifyFiles checks paths with at most jobs files in flight. Per-file
// failures are recorded in the results; the returned error is only set when
// ctx is cancelled.
func verifyFiles(ctx context.Context, paths []string, jobs int, opts ...gdf.Option) ([]verifyResult, error) {
	log := logger.FromContext(ctx)
	results := make([]verifyResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = verifyFile(path, opts...)
			log.Debug("verified file", "path", path, "error", results[i].Err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func verifyFile(path string, opts ...gdf.Option) verifyResult {
	res := verifyResult{Path: path}
	data, err := gdf.ReadFile(path, gdf.AllHeaders, opts...)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() { _ = data.Close() }()

	res.Groups = data.DataGroupCnt()
	for gi := range res.Groups {
		n, err := data.DataSetCnt(gi)
		if err != nil {
			res.Err = err
			return res
		}
		for di := range n {
			r, err := data.DataSetByIndex(gi, di)
			if err != nil {
				res.Err = err
				return res
			}
			res.DataSets++
			for {
				row, err := r.ReadRow()
				if errors.Is(err, gdf.ErrOutOfRows) {
					break
				}
				if err == nil {
					_, err = row.Values()
				}
				if err != nil {
					res.Err = fmt.Errorf("data set %q: %w", r.Header().Name, err)
					return res
				}
				res.Rows++
			}
		}
	}
	return res
}

func reportVerify(w io.Writer, results []verifyResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if _, err := fmt.Fprintf(w, "FAIL %s: %v\n", r.Path, r.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "ok   %s groups=%d data_sets=%d rows=%d\n", r.Path, r.Groups, r.DataSets, r.Rows); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, len(results))
	}
	return nil
}
