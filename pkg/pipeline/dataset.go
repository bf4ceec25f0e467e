package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mchmarny/namedist/pkg/config"
	"github.com/mchmarny/namedist/pkg/estimate"
	"github.com/mchmarny/namedist/pkg/source"
	"github.com/mchmarny/namedist/pkg/variant"
)

const (
	DatasetFirst  = "first"
	DatasetMiddle = "middle"
	DatasetLast   = "last"
	DatasetAll    = "all"

	outputDirSuffix = "_names"
)

// DatasetNames lists the built-in datasets in build order.
var DatasetNames = []string{DatasetFirst, DatasetMiddle, DatasetLast}

// Input is what a Loader hands to the matrix stage.
type Input struct {
	Rows    []estimate.Row
	Reports []*source.Report
	// NameMap, when set, supplies display spellings for selected names.
	NameMap variant.Map
}

// Loader reads and estimates the per-name category counts of a dataset.
type Loader func(ctx context.Context) (*Input, error)

// Dataset is one pipeline instantiation.
type Dataset struct {
	Name      string
	Limit     int
	OutputDir string
	Load      Loader
}

// OutputDir returns the artifact dir of a dataset under root.
func OutputDir(root, name string) string {
	return filepath.Join(root, name+outputDirSuffix)
}

// First joins name/gender counts with first name race percentages using
// the geometric mean.
func First(c *config.Config) *Dataset {
	return &Dataset{
		Name:      DatasetFirst,
		Limit:     c.First.Limit,
		OutputDir: OutputDir(c.OutputDir, DatasetFirst),
		Load:      joinedLoader(c, c.First, source.ReadFirstNameRaces, estimate.PolicyGeometricMean),
	}
}

// Middle joins name/gender counts with middle name race probabilities by
// rescaling the gender count.
func Middle(c *config.Config) *Dataset {
	return &Dataset{
		Name:      DatasetMiddle,
		Limit:     c.Middle.Limit,
		OutputDir: OutputDir(c.OutputDir, DatasetMiddle),
		Load:      joinedLoader(c, c.Middle, source.ReadMiddleNameRaces, estimate.PolicyProductRescale),
	}
}

// Last uses the census surname table alone and the optional surname
// variant map for display spellings.
func Last(c *config.Config) *Dataset {
	d := c.Last
	return &Dataset{
		Name:      DatasetLast,
		Limit:     d.Limit,
		OutputDir: OutputDir(c.OutputDir, DatasetLast),
		Load: func(ctx context.Context) (*Input, error) {
			opt := source.Options{Sentinels: c.Sentinels}
			races, rep, err := readSource(c.SourcePath(d.Races), source.ReadSurnameRaces, opt)
			if err != nil {
				return nil, err
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			in := &Input{
				Rows:    estimate.FromSingleSource(races),
				Reports: []*source.Report{rep},
			}

			if d.NameMap == "" {
				return in, nil
			}
			if in.NameMap, err = readNameMap(c.IntermediatePath(d.NameMap)); err != nil {
				return nil, err
			}
			return in, nil
		},
	}
}

// Datasets resolves dataset names, where "all" expands to every built-in
// dataset. No names means all.
func Datasets(c *config.Config, names ...string) ([]*Dataset, error) {
	if c == nil {
		return nil, errors.New("config required")
	}
	if len(names) == 0 {
		names = []string{DatasetAll}
	}

	seen := make(map[string]bool)
	list := make([]*Dataset, 0, len(DatasetNames))
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		switch name {
		case DatasetFirst:
			list = append(list, First(c))
		case DatasetMiddle:
			list = append(list, Middle(c))
		case DatasetLast:
			list = append(list, Last(c))
		}
	}

	for _, n := range names {
		switch n {
		case DatasetAll:
			for _, d := range DatasetNames {
				add(d)
			}
		case DatasetFirst, DatasetMiddle, DatasetLast:
			add(n)
		default:
			return nil, fmt.Errorf("unknown dataset %q, expected one of %v or %s", n, DatasetNames, DatasetAll)
		}
	}
	return list, nil
}

type raceReader func(io.Reader, source.Options) ([]estimate.RaceValue, *source.Report, error)

func joinedLoader(c *config.Config, d config.Dataset, read raceReader, policy estimate.Policy) Loader {
	return func(ctx context.Context) (*Input, error) {
		opt := source.Options{Sentinels: c.Sentinels}

		genders, grep, err := readSource(c.SourcePath(d.Genders), source.ReadGenders, opt)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		races, rrep, err := readSource(c.SourcePath(d.Races), read, opt)
		if err != nil {
			return nil, err
		}

		return &Input{
			Rows:    estimate.Join(genders, races, policy),
			Reports: []*source.Report{grep, rrep},
		}, nil
	}
}

func readSource[T any](path string, read func(io.Reader, source.Options) ([]T, *source.Report, error), opt source.Options) ([]T, *source.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening source %s: %w", path, err)
	}
	defer f.Close()

	list, rep, err := read(f, opt)
	if err != nil {
		return nil, nil, fmt.Errorf("reading source %s: %w", path, err)
	}
	return list, rep, nil
}

// readNameMap returns a nil map when the file does not exist yet.
func readNameMap(path string) (variant.Map, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("name map not found, capitalizing all names", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening name map %s: %w", path, err)
	}
	defer f.Close()

	m, err := variant.ReadMap(f)
	if err != nil {
		return nil, fmt.Errorf("reading name map %s: %w", path, err)
	}
	return m, nil
}
