package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mchmarny/namedist/pkg/export"
)

const (
	StageCounts        = "counts"
	StageProbabilities = "probabilities"
	StageCumulative    = "cumulative"
	StageSpecial       = "special"

	dirMode = 0755
)

// Checkpointer persists intermediate tables. Stages never read them back.
type Checkpointer interface {
	Checkpoint(dataset, stage string, t export.Table) (*export.Artifact, error)
}

// Discard is a Checkpointer that writes nothing.
var Discard Checkpointer = discard{}

type discard struct{}

func (discard) Checkpoint(string, string, export.Table) (*export.Artifact, error) {
	return nil, nil
}

// DirCheckpointer writes each table as <dataset>_name_<stage>.csv in Dir.
type DirCheckpointer struct {
	Dir string
}

// CheckpointFileName returns the file name of a dataset stage table.
func CheckpointFileName(dataset, stage string) string {
	return fmt.Sprintf("%s_name_%s.csv", dataset, stage)
}

func (d *DirCheckpointer) Checkpoint(dataset, stage string, t export.Table) (*export.Artifact, error) {
	if err := os.MkdirAll(d.Dir, dirMode); err != nil {
		return nil, fmt.Errorf("creating checkpoint dir %s: %w", d.Dir, err)
	}
	a, err := export.WriteTableFile(filepath.Join(d.Dir, CheckpointFileName(dataset, stage)), t)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s %s: %w", dataset, stage, err)
	}
	return a, nil
}
