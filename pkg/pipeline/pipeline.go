// Package pipeline runs the name distribution stages for a dataset: load
// and estimate counts, build the category matrix, rank, renormalize,
// accumulate, then report thresholds and export the lookup artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/namedist/pkg/dist"
	"github.com/mchmarny/namedist/pkg/export"
	"github.com/mchmarny/namedist/pkg/source"
	"golang.org/x/sync/errgroup"
)

// Options configure a run.
type Options struct {
	// Checkpointer receives the intermediate tables, Discard when nil.
	Checkpointer Checkpointer
	// Levels are the reported cumulative thresholds, dist.DefaultLevels when nil.
	Levels []float64
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Parallel lets RunAll build datasets concurrently.
	Parallel bool
}

// Result summarizes a completed run.
type Result struct {
	Dataset     string             `json:"dataset" yaml:"dataset"`
	OutputDir   string             `json:"output_dir" yaml:"outputDir"`
	StartedAt   time.Time          `json:"started_at" yaml:"startedAt"`
	Duration    time.Duration      `json:"duration" yaml:"duration"`
	Sources     []*source.Report   `json:"sources" yaml:"sources"`
	SourceRows  int                `json:"source_rows" yaml:"sourceRows"`
	Dropped     int                `json:"dropped" yaml:"dropped"`
	Eligible    int                `json:"eligible" yaml:"eligible"`
	Selected    int                `json:"selected" yaml:"selected"`
	Limit       int                `json:"limit" yaml:"limit"`
	Special     int                `json:"special,omitempty" yaml:"special,omitempty"`
	Uniform     []string           `json:"uniform,omitempty" yaml:"uniform,omitempty"`
	Crossings   []dist.Crossing    `json:"crossings" yaml:"crossings"`
	Artifacts   []*export.Artifact `json:"artifacts" yaml:"artifacts"`
	Checkpoints []*export.Artifact `json:"checkpoints,omitempty" yaml:"checkpoints,omitempty"`
}

// Run executes every stage of ds in order. Any stage error aborts the run.
func Run(ctx context.Context, ds *Dataset, opts Options) (*Result, error) {
	if ds == nil || ds.Load == nil {
		return nil, errors.New("dataset with loader required")
	}
	if ds.Limit <= 0 {
		return nil, fmt.Errorf("%s: limit must be positive: %d", ds.Name, ds.Limit)
	}

	cp := opts.Checkpointer
	if cp == nil {
		cp = Discard
	}
	levels := opts.Levels
	if levels == nil {
		levels = dist.DefaultLevels
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.WithGroup(ds.Name)

	res := &Result{
		Dataset:   ds.Name,
		OutputDir: ds.OutputDir,
		Limit:     ds.Limit,
		StartedAt: time.Now().UTC(),
	}

	checkpoint := func(stage string, t export.Table) error {
		a, err := cp.Checkpoint(ds.Name, stage, t)
		if err != nil {
			return err
		}
		if a != nil {
			res.Checkpoints = append(res.Checkpoints, a)
			log.Debug("checkpoint written", "stage", stage, "path", a.Path)
		}
		return nil
	}

	in, err := ds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: loading sources: %w", ds.Name, err)
	}
	if in == nil {
		return nil, fmt.Errorf("%s: loader returned no input", ds.Name)
	}
	res.Sources = in.Reports
	for _, r := range in.Reports {
		if r == nil {
			continue
		}
		res.SourceRows += r.Rows
		res.Dropped += r.Dropped
	}
	log.Info("sources loaded", "rows", res.SourceRows, "dropped", res.Dropped, "names", len(in.Rows))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts, err := dist.NewCountMatrix(in.Rows, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: building count matrix: %w", ds.Name, err)
	}
	if counts.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", ds.Name, dist.ErrEmptyMatrix)
	}
	res.Eligible = counts.Len()
	if err := checkpoint(StageCounts, counts); err != nil {
		return nil, err
	}

	top := dist.Rank(dist.Normalize(counts), ds.Limit)
	res.Selected = top.Len()
	log.Info("names ranked", "eligible", res.Eligible, "selected", res.Selected)

	if in.NameMap != nil {
		special := make([]string, 0)
		format := in.NameMap.Formatter(func(_, name string) {
			special = append(special, name)
		})
		for i := range top.Rows {
			top.Rows[i].Name = format(top.Rows[i].Key)
		}
		res.Special = len(special)
		log.Info("names using name map", "count", res.Special)
		if err := checkpoint(StageSpecial, export.List(special)); err != nil {
			return nil, err
		}
	}

	probs, uniform := dist.Renormalize(top)
	for _, c := range uniform {
		res.Uniform = append(res.Uniform, c.Symbol())
		log.Warn("category has no observations, using uniform distribution",
			"category", c.Symbol(), "rows", len(probs.Rows))
	}
	if err := checkpoint(StageProbabilities, probs); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cum, err := dist.Cumulate(probs)
	if err != nil {
		return nil, fmt.Errorf("%s: accumulating: %w", ds.Name, err)
	}
	if err := checkpoint(StageCumulative, cum); err != nil {
		return nil, err
	}

	res.Crossings = dist.Thresholds(cum, levels)
	for _, c := range res.Crossings {
		log.Info("threshold crossed",
			"level", fmt.Sprintf("%.3f", c.Level),
			"index", c.Index,
			"name", c.Name,
			"mean", fmt.Sprintf("%.5f", c.Mean))
	}

	if res.Artifacts, err = export.Export(ds.OutputDir, cum); err != nil {
		return nil, fmt.Errorf("%s: exporting: %w", ds.Name, err)
	}

	res.Duration = time.Since(res.StartedAt)
	log.Info("dataset built", "dir", ds.OutputDir, "files", len(res.Artifacts), "duration", res.Duration.Round(time.Millisecond))

	return res, nil
}

// RunAll runs the datasets one after another, or concurrently when
// opts.Parallel is set. Results keep the order of list. The first failure
// cancels the remaining runs.
func RunAll(ctx context.Context, list []*Dataset, opts Options) ([]*Result, error) {
	results := make([]*Result, len(list))
	g, ctx := errgroup.WithContext(ctx)
	if !opts.Parallel {
		g.SetLimit(1)
	}

	for i, ds := range list {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Run(ctx, ds, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
