package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	insertRunSQL = `INSERT INTO run (dataset, started_at, duration_ms, source_rows,
		dropped, eligible, selected, limit_n, uniform, reproduced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertArtifactSQL = `INSERT INTO artifact (run_id, path, size, checksum) VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, path) DO UPDATE SET size = ?, checksum = ?
	`

	insertCrossingSQL = `INSERT INTO crossing (run_id, level, row_index, name, mean) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, level) DO UPDATE SET row_index = ?, name = ?, mean = ?
	`

	timeFormat = time.RFC3339
)

// Run is one recorded pipeline execution.
type Run struct {
	ID         int64         `json:"id" yaml:"id"`
	Dataset    string        `json:"dataset" yaml:"dataset"`
	StartedAt  time.Time     `json:"started_at" yaml:"startedAt"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	SourceRows int           `json:"source_rows" yaml:"sourceRows"`
	Dropped    int           `json:"dropped" yaml:"dropped"`
	Eligible   int           `json:"eligible" yaml:"eligible"`
	Selected   int           `json:"selected" yaml:"selected"`
	Limit      int           `json:"limit" yaml:"limit"`
	Uniform    []string      `json:"uniform,omitempty" yaml:"uniform,omitempty"`
	Reproduced bool          `json:"reproduced" yaml:"reproduced"`
	Artifacts  []*Artifact   `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Crossings  []*Crossing   `json:"crossings,omitempty" yaml:"crossings,omitempty"`
}

// Artifact is a file written by a run.
type Artifact struct {
	Path     string `json:"path" yaml:"path"`
	Size     int64  `json:"size" yaml:"size"`
	Checksum string `json:"checksum" yaml:"checksum"`
}

// Crossing is a threshold crossing reported by a run.
type Crossing struct {
	Level float64 `json:"level" yaml:"level"`
	Index int     `json:"index" yaml:"index"`
	Name  string  `json:"name" yaml:"name"`
	Mean  float64 `json:"mean" yaml:"mean"`
}

// SaveRun stores r with its artifacts and crossings in one transaction and
// returns the new run ID.
func SaveRun(db *sql.DB, r *Run) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if r == nil || r.Dataset == "" {
		return 0, errors.New("run with dataset required")
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.Exec(insertRunSQL, r.Dataset, r.StartedAt.UTC().Format(timeFormat),
		r.Duration.Milliseconds(), r.SourceRows, r.Dropped, r.Eligible, r.Selected,
		r.Limit, strings.Join(r.Uniform, ","), r.Reproduced)
	if err != nil {
		rollbackTransaction(tx)
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		rollbackTransaction(tx)
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	artStmt, err := tx.Prepare(insertArtifactSQL)
	if err != nil {
		rollbackTransaction(tx)
		return 0, fmt.Errorf("failed to prepare artifact insert statement: %w", err)
	}
	defer artStmt.Close()

	for i, a := range r.Artifacts {
		if _, err = artStmt.Exec(id, a.Path, a.Size, a.Checksum, a.Size, a.Checksum); err != nil {
			rollbackTransaction(tx)
			return 0, fmt.Errorf("error inserting artifact[%d]: %s: %w", i, a.Path, err)
		}
	}

	crossStmt, err := tx.Prepare(insertCrossingSQL)
	if err != nil {
		rollbackTransaction(tx)
		return 0, fmt.Errorf("failed to prepare crossing insert statement: %w", err)
	}
	defer crossStmt.Close()

	for i, c := range r.Crossings {
		if _, err = crossStmt.Exec(id, c.Level, c.Index, c.Name, c.Mean, c.Index, c.Name, c.Mean); err != nil {
			rollbackTransaction(tx)
			return 0, fmt.Errorf("error inserting crossing[%d]: %v: %w", i, c.Level, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.ID = id
	return id, nil
}
