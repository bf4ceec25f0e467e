package data

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	db, err := GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRun(dataset string) *Run {
	return &Run{
		Dataset:    dataset,
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:   1500 * time.Millisecond,
		SourceRows: 10,
		Dropped:    2,
		Eligible:   8,
		Selected:   5,
		Limit:      5,
		Uniform:    []string{"maian", "faian"},
		Artifacts: []*Artifact{
			{Path: "out/names.txt", Size: 30, Checksum: "00000000000000aa"},
			{Path: "out/fwhite.bin", Size: 20, Checksum: "00000000000000bb"},
		},
		Crossings: []*Crossing{
			{Level: 0.5, Index: 2, Name: "Bob", Mean: 0.55},
			{Level: 0.1, Index: 0, Name: "Alice", Mean: 0.2},
		},
	}
}

func TestInit_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestInit_EmptyPath(t *testing.T) {
	err := Init("")
	assert.Error(t, err)
}

func TestInit_Idempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	require.NoError(t, Init(dbPath))
	assert.NoError(t, Init(dbPath))
}

func TestNilDB(t *testing.T) {
	_, err := SaveRun(nil, testRun("first"))
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = GetRuns(nil, nil, 0)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = GetArtifacts(nil, 1)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = GetCrossings(nil, 1)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = GetLastChecksums(nil, "first")
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = GetDataState(nil)
	assert.ErrorIs(t, err, errDBNotInitialized)
}

func TestSaveRun_RequiresDataset(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveRun(db, nil)
	assert.Error(t, err)
	_, err = SaveRun(db, &Run{})
	assert.Error(t, err)
}

func TestSaveRun_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	in := testRun("first")

	id, err := SaveRun(db, in)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, in.ID)

	list, err := GetRuns(db, nil, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	out := list[0]
	assert.Equal(t, id, out.ID)
	assert.Equal(t, "first", out.Dataset)
	assert.True(t, in.StartedAt.Equal(out.StartedAt))
	assert.Equal(t, in.Duration, out.Duration)
	assert.Equal(t, 10, out.SourceRows)
	assert.Equal(t, 2, out.Dropped)
	assert.Equal(t, 8, out.Eligible)
	assert.Equal(t, 5, out.Selected)
	assert.Equal(t, 5, out.Limit)
	assert.Equal(t, []string{"maian", "faian"}, out.Uniform)
	assert.False(t, out.Reproduced)

	require.Len(t, out.Artifacts, 2)
	assert.Equal(t, "out/fwhite.bin", out.Artifacts[0].Path)
	assert.Equal(t, "out/names.txt", out.Artifacts[1].Path)

	require.Len(t, out.Crossings, 2)
	assert.Equal(t, 0.1, out.Crossings[0].Level)
	assert.Equal(t, "Alice", out.Crossings[0].Name)
	assert.Equal(t, 2, out.Crossings[1].Index)
}

func TestGetRuns_FilterAndLimit(t *testing.T) {
	db := setupTestDB(t)
	for _, ds := range []string{"first", "last", "first", "middle"} {
		r := testRun(ds)
		r.Uniform = nil
		_, err := SaveRun(db, r)
		require.NoError(t, err)
	}

	all, err := GetRuns(db, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "middle", all[0].Dataset)
	assert.Nil(t, all[0].Uniform)

	ds := "first"
	first, err := GetRuns(db, &ds, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Greater(t, first[0].ID, first[1].ID)

	limited, err := GetRuns(db, nil, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetLastChecksums(t *testing.T) {
	db := setupTestDB(t)

	m, err := GetLastChecksums(db, "last")
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = SaveRun(db, testRun("last"))
	require.NoError(t, err)

	r := testRun("last")
	r.Artifacts[0].Checksum = "00000000000000cc"
	_, err = SaveRun(db, r)
	require.NoError(t, err)

	m, err = GetLastChecksums(db, "last")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"out/names.txt":  "00000000000000cc",
		"out/fwhite.bin": "00000000000000bb",
	}, m)
}

func TestGetDataState(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveRun(db, testRun("first"))
	require.NoError(t, err)
	_, err = SaveRun(db, testRun("middle"))
	require.NoError(t, err)

	state, err := GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), state["run"])
	assert.Equal(t, int64(4), state["artifact"])
	assert.Equal(t, int64(4), state["crossing"])
	assert.Equal(t, int64(2), state["dataset"])
}
