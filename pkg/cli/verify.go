package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mchmarny/namedist/pkg/export"
	"github.com/mchmarny/namedist/pkg/pipeline"
	urfave "github.com/urfave/cli/v3"
)

func newVerifyCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "verify",
		Usage:     "Check that exported tables are aligned with names.txt, non-decreasing and end at 1",
		ArgsUsage: "[first|middle|last|all]",
		Action:    cmdVerify,
	}
}

func cmdVerify(_ context.Context, cmd *urfave.Command) error {
	conf := getConfig(cmd).Config

	list, err := pipeline.Datasets(conf, cmd.Args().Slice()...)
	if err != nil {
		return err
	}

	results := make([]*export.Verification, 0, len(list))
	var failed int
	for _, ds := range list {
		v, err := export.Verify(ds.OutputDir)
		switch {
		case errors.Is(err, export.ErrInvalidArtifacts):
			failed++
			slog.Error("invalid artifacts", "dataset", ds.Name, "problems", len(v.Problems))
		case err != nil:
			return fmt.Errorf("verifying %s: %w", ds.Name, err)
		default:
			slog.Info("artifacts valid", "dataset", ds.Name, "names", v.Names)
		}
		results = append(results, v)
	}

	if err := encode(cmd, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d datasets: %w", failed, len(list), export.ErrInvalidArtifacts)
	}
	return nil
}
