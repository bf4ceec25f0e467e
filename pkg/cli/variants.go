package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mchmarny/namedist/pkg/variant"
	urfave "github.com/urfave/cli/v3"
)

const autoFlagName = "auto"

func newVariantsCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "variants",
		Aliases: []string{"v"},
		Usage:   "Resolve surname spelling variants into the name map used by the last name build",
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  autoFlagName,
				Usage: "Keep the first spelling of every group instead of prompting",
			},
		},
		Action: cmdVariants,
	}
}

type variantSummary struct {
	Input    string `json:"input" yaml:"input"`
	Output   string `json:"output" yaml:"output"`
	Names    int    `json:"names" yaml:"names"`
	Groups   int    `json:"groups" yaml:"groups"`
	Prompted int    `json:"prompted" yaml:"prompted"`
	Mappings int    `json:"mappings" yaml:"mappings"`
}

func cmdVariants(_ context.Context, cmd *urfave.Command) error {
	conf := getConfig(cmd).Config
	s := &variantSummary{
		Input:  conf.SourcePath(conf.Variants.Input),
		Output: conf.IntermediatePath(conf.Variants.Output),
	}

	in, err := os.Open(s.Input)
	if err != nil {
		return fmt.Errorf("opening surnames %s: %w", s.Input, err)
	}
	names, err := variant.ReadNames(in)
	in.Close()
	if err != nil {
		return err
	}
	s.Names = len(names)

	groups := variant.GroupNames(names)
	s.Groups = len(groups)
	for _, g := range groups {
		if len(g.Candidates) > 1 {
			s.Prompted++
		}
	}
	slog.Info("surname variants grouped", "names", s.Names, "groups", s.Groups, "ambiguous", s.Prompted)

	var chooser variant.Chooser = variant.NewConsoleChooser(reader(cmd), writer(cmd))
	if cmd.Bool(autoFlagName) {
		chooser = variant.FirstChooser
	}

	list, err := variant.Resolve(groups, chooser)
	if err != nil {
		return err
	}
	s.Mappings = len(list)

	if err := os.MkdirAll(filepath.Dir(s.Output), dirMode); err != nil {
		return fmt.Errorf("creating dir for %s: %w", s.Output, err)
	}
	out, err := os.Create(s.Output)
	if err != nil {
		return fmt.Errorf("creating name map %s: %w", s.Output, err)
	}
	if err := variant.WriteMap(out, list); err != nil {
		out.Close()
		return fmt.Errorf("writing name map %s: %w", s.Output, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing name map %s: %w", s.Output, err)
	}
	slog.Info("name map written", "path", s.Output, "mappings", s.Mappings)

	return encode(cmd, s)
}
