package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/namedist/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const (
	datasetFlagName = "dataset"
	limitFlagName   = "limit"
	stateFlagName   = "state"
	runLimitDefault = 20
)

func newRunsCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "runs",
		Usage: "List recorded build runs, newest first",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  datasetFlagName,
				Usage: "Only list runs of this dataset [first, middle, last]",
			},
			&urfave.IntFlag{
				Name:  limitFlagName,
				Usage: "Maximum number of runs to list",
				Value: runLimitDefault,
			},
			&urfave.BoolFlag{
				Name:  stateFlagName,
				Usage: "Print the row count of each ledger table instead of the runs",
			},
		},
		Action: cmdRuns,
	}
}

func cmdRuns(_ context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)

	if cmd.Bool(stateFlagName) {
		state, err := data.GetDataState(cfg.DB)
		if err != nil {
			return fmt.Errorf("reading ledger state: %w", err)
		}
		return encode(cmd, state)
	}

	var dataset *string
	if v := cmd.String(datasetFlagName); v != "" {
		dataset = &v
	}

	list, err := data.GetRuns(cfg.DB, dataset, int(cmd.Int(limitFlagName)))
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	return encode(cmd, list)
}
