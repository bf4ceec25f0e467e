package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/namedist/pkg/category"
	"github.com/mchmarny/namedist/pkg/dist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCumulative() *dist.CumulativeMatrix {
	fill := func(v float64) [category.Count]float64 {
		var p [category.Count]float64
		for i := range p {
			p[i] = v
		}
		return p
	}
	return &dist.CumulativeMatrix{Rows: []dist.Row{
		{Key: "ANNA", Name: "Anna", Values: fill(0.2)},
		{Key: "BO", Name: "Bo", Values: fill(0.5)},
		{Key: "CY", Name: "Cy", Values: fill(1)},
	}}
}

func TestWriteColumn_LittleEndianFloat32(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteColumn(&buf, []float64{1.0, 0.5}))
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0x3f}, buf.Bytes())

	values, err := ReadColumn(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.0, 0.5}, values)
}

func TestReadColumn_BadLength(t *testing.T) {
	_, err := ReadColumn(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestWriteNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNames(&buf, []string{"Anna", "Élodie"}))
	assert.Equal(t, "Anna\nÉlodie\n", buf.String())

	names, err := ReadNames(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna", "Élodie"}, names)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, testCumulative()))
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Equal(t, "name,fhispanic,fwhite,fblack,fapi,faian,mhispanic,mwhite,mblack,mapi,maian", string(lines[0]))
	assert.Equal(t, "Cy,1,1,1,1,1,1,1,1,1,1", string(lines[3]))

	assert.Error(t, WriteTable(&buf, nil))
}

func TestWriteTable_List(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, List{"McDonald", "O'Brien"}))
	assert.Equal(t, "McDonald\nO'Brien\n", buf.String())

	assert.Error(t, WriteTable(&buf, nil))
}

func TestExport_AlignedAndVerified(t *testing.T) {
	dir := t.TempDir()
	list, err := Export(dir, testCumulative())
	require.NoError(t, err)
	require.Len(t, list, category.Count+1)

	assert.Equal(t, filepath.Join(dir, NamesFileName), list[0].Path)
	for _, a := range list[1:] {
		assert.Equal(t, int64(3*FloatSize), a.Size)
		assert.Len(t, a.Checksum, 16)
	}

	v, err := Verify(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Names)
	assert.Len(t, v.Columns, category.Count)
	for _, c := range v.Columns {
		assert.True(t, c.Aligned)
		assert.True(t, c.Monotonic)
		assert.Equal(t, float32(1), c.Last)
	}
}

func TestExport_Deterministic(t *testing.T) {
	a, err := Export(t.TempDir(), testCumulative())
	require.NoError(t, err)
	b, err := Export(t.TempDir(), testCumulative())
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i].Checksum, b[i].Checksum)
		ab, err := os.ReadFile(a[i].Path)
		require.NoError(t, err)
		bb, err := os.ReadFile(b[i].Path)
		require.NoError(t, err)
		assert.Equal(t, ab, bb)
	}
}

func TestExport_Empty(t *testing.T) {
	_, err := Export(t.TempDir(), &dist.CumulativeMatrix{})
	assert.ErrorIs(t, err, dist.ErrEmptyMatrix)
}

func TestVerify_DetectsProblems(t *testing.T) {
	dir := t.TempDir()
	_, err := Export(dir, testCumulative())
	require.NoError(t, err)

	// misaligned and not ending at 1
	var buf bytes.Buffer
	require.NoError(t, WriteColumn(&buf, []float64{0.5, 0.2}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fwhite.bin"), buf.Bytes(), 0644))
	require.NoError(t, os.Remove(filepath.Join(dir, "maian.bin")))

	v, err := Verify(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArtifacts))
	require.NotNil(t, v)
	assert.Len(t, v.Problems, 4)
	assert.False(t, v.Columns["fwhite"].Aligned)
	assert.False(t, v.Columns["fwhite"].Monotonic)
}

func TestVerify_MissingNames(t *testing.T) {
	_, err := Verify(t.TempDir())
	assert.Error(t, err)
}
