package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mchmarny/namedist/pkg/data"
	"github.com/mchmarny/namedist/pkg/pipeline"
	urfave "github.com/urfave/cli/v3"
)

const (
	noCheckpointsFlagName = "no-checkpoints"
	parallelFlagName      = "parallel"
)

func newBuildCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "build",
		Aliases:   []string{"b"},
		Usage:     "Build the names.txt and per-category binary tables",
		ArgsUsage: fmt.Sprintf("[%s|%s]", strings.Join(pipeline.DatasetNames, "|"), pipeline.DatasetAll),
		UsageText: `namedist build            # build every dataset
   namedist build last       # build only the surname tables
   namedist build --no-checkpoints first middle`,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  noCheckpointsFlagName,
				Usage: "Skip writing the intermediate counts, probabilities and cumulative CSVs",
			},
			&urfave.BoolFlag{
				Name:  parallelFlagName,
				Usage: "Build the selected datasets concurrently",
			},
		},
		Action: cmdBuild,
	}
}

func cmdBuild(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)

	list, err := pipeline.Datasets(cfg.Config, cmd.Args().Slice()...)
	if err != nil {
		return err
	}

	opts := pipeline.Options{Parallel: cmd.Bool(parallelFlagName)}
	if !cmd.Bool(noCheckpointsFlagName) {
		opts.Checkpointer = &pipeline.DirCheckpointer{Dir: cfg.Config.IntermediateDir}
	}

	prev := make(map[string]map[string]string, len(list))
	for _, ds := range list {
		m, err := data.GetLastChecksums(cfg.DB, ds.Name)
		if err != nil {
			return fmt.Errorf("reading previous run of %s: %w", ds.Name, err)
		}
		prev[ds.Name] = m
	}

	results, err := pipeline.RunAll(ctx, list, opts)
	if err != nil {
		return fmt.Errorf("building datasets: %w", err)
	}

	runs := make([]*data.Run, 0, len(results))
	for _, r := range results {
		run := toRun(r, prev[r.Dataset])
		if _, err := data.SaveRun(cfg.DB, run); err != nil {
			return fmt.Errorf("recording run of %s: %w", r.Dataset, err)
		}

		var size int64
		for _, a := range run.Artifacts {
			size += a.Size
		}
		slog.Info("run recorded",
			"dataset", run.Dataset,
			"id", run.ID,
			"size", humanize.Bytes(uint64(size)),
			"reproduced", run.Reproduced)

		runs = append(runs, run)
	}

	return encode(cmd, runs)
}

// toRun converts a pipeline result into a ledger run. The run counts as
// reproduced when every artifact matches the previous run checksum.
func toRun(r *pipeline.Result, prev map[string]string) *data.Run {
	run := &data.Run{
		Dataset:    r.Dataset,
		StartedAt:  r.StartedAt,
		Duration:   r.Duration,
		SourceRows: r.SourceRows,
		Dropped:    r.Dropped,
		Eligible:   r.Eligible,
		Selected:   r.Selected,
		Limit:      r.Limit,
		Uniform:    r.Uniform,
		Reproduced: len(prev) > 0,
		Artifacts:  make([]*data.Artifact, 0, len(r.Artifacts)),
		Crossings:  make([]*data.Crossing, 0, len(r.Crossings)),
	}

	for _, a := range r.Artifacts {
		if prev[a.Path] != a.Checksum {
			run.Reproduced = false
		}
		run.Artifacts = append(run.Artifacts, &data.Artifact{
			Path:     a.Path,
			Size:     a.Size,
			Checksum: a.Checksum,
		})
	}

	for _, c := range r.Crossings {
		run.Crossings = append(run.Crossings, &data.Crossing{
			Level: c.Level,
			Index: c.Index,
			Name:  c.Name,
			Mean:  c.Mean,
		})
	}

	return run
}
