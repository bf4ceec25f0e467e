package data

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	runLimitDefault = 20

	selectRunsSQL = `SELECT id, dataset, started_at, duration_ms, source_rows,
		dropped, eligible, selected, limit_n, uniform, reproduced
		FROM run
		WHERE dataset = COALESCE(?, dataset)
		ORDER BY id DESC
		LIMIT ?
	`

	selectArtifactsSQL = `SELECT path, size, checksum FROM artifact
		WHERE run_id = ?
		ORDER BY path
	`

	selectCrossingsSQL = `SELECT level, row_index, name, mean FROM crossing
		WHERE run_id = ?
		ORDER BY level
	`

	selectLastRunIDSQL = `SELECT MAX(id) FROM run WHERE dataset = ?`
)

var (
	stateQueries = map[string]string{
		"run":      "SELECT COUNT(*) FROM run",
		"artifact": "SELECT COUNT(*) FROM artifact",
		"crossing": "SELECT COUNT(*) FROM crossing",
		"dataset":  "SELECT COUNT(DISTINCT dataset) FROM run",
	}
)

// GetRuns returns the most recent runs, newest first, with their artifacts
// and crossings. A nil dataset returns runs of every dataset.
func GetRuns(db *sql.DB, dataset *string, limit int) ([]*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = runLimitDefault
	}

	rows, err := db.Query(selectRunsSQL, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	list := make([]*Run, 0)
	for rows.Next() {
		r := &Run{}
		var started, uniform string
		var ms int64
		if err := rows.Scan(&r.ID, &r.Dataset, &started, &ms, &r.SourceRows,
			&r.Dropped, &r.Eligible, &r.Selected, &r.Limit, &uniform, &r.Reproduced); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeFormat, started); err != nil {
			return nil, fmt.Errorf("failed to parse run start %q: %w", started, err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		if uniform != "" {
			r.Uniform = strings.Split(uniform, ",")
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	for _, r := range list {
		if r.Artifacts, err = GetArtifacts(db, r.ID); err != nil {
			return nil, err
		}
		if r.Crossings, err = GetCrossings(db, r.ID); err != nil {
			return nil, err
		}
	}

	return list, nil
}

// GetArtifacts returns the artifacts of a run ordered by path.
func GetArtifacts(db *sql.DB, runID int64) ([]*Artifact, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectArtifactsSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts for run %d: %w", runID, err)
	}
	defer rows.Close()

	list := make([]*Artifact, 0)
	for rows.Next() {
		a := &Artifact{}
		if err := rows.Scan(&a.Path, &a.Size, &a.Checksum); err != nil {
			return nil, fmt.Errorf("failed to scan artifact row: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetCrossings returns the threshold crossings of a run ordered by level.
func GetCrossings(db *sql.DB, runID int64) ([]*Crossing, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectCrossingsSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query crossings for run %d: %w", runID, err)
	}
	defer rows.Close()

	list := make([]*Crossing, 0)
	for rows.Next() {
		c := &Crossing{}
		if err := rows.Scan(&c.Level, &c.Index, &c.Name, &c.Mean); err != nil {
			return nil, fmt.Errorf("failed to scan crossing row: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetLastChecksums returns path to checksum of the latest run of dataset.
// The map is empty when the dataset has never run.
func GetLastChecksums(db *sql.DB, dataset string) (map[string]string, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var id sql.NullInt64
	if err := db.QueryRow(selectLastRunIDSQL, dataset).Scan(&id); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get last run of %s: %w", dataset, err)
	}

	m := make(map[string]string)
	if !id.Valid {
		return m, nil
	}

	list, err := GetArtifacts(db, id.Int64)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		m[a.Path] = a.Checksum
	}
	return m, nil
}

// GetDataState returns the row count of each ledger table.
func GetDataState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, v := range stateQueries {
		var count int64
		if err := db.QueryRow(v).Scan(&count); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("error getting %s count: %w", k, err)
		}
		state[k] = count
	}

	return state, nil
}
