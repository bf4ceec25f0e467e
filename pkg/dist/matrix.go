// Package dist builds per-category probability and cumulative distribution
// tables from joint name counts.
package dist

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mchmarny/namedist/pkg/category"
	"github.com/mchmarny/namedist/pkg/estimate"
)

var (
	// ErrEmptyMatrix is returned when a stage receives no rows.
	ErrEmptyMatrix = errors.New("matrix has no rows")

	// ErrZeroColumn is returned when a cumulative column cannot be rescaled.
	ErrZeroColumn = errors.New("column sums to zero")
)

// Formatter maps an uppercase join key to its display name.
type Formatter func(key string) string

// CountRow is one name with its joint count per category.
type CountRow struct {
	Key    string
	Name   string
	Counts [category.Count]int
}

// Row is one name with a real value per category.
type Row struct {
	Key    string
	Name   string
	Values [category.Count]float64
}

// CountMatrix holds estimated joint counts in source order.
type CountMatrix struct {
	Rows []CountRow
}

// ProbabilityMatrix holds per-category probabilities. Every column sums to 1
// across rows, except columns with no observations which are all zero.
type ProbabilityMatrix struct {
	Rows []Row
}

// CumulativeMatrix holds per-category cumulative distributions in final
// output order. Every column is non-decreasing and ends at exactly 1.
type CumulativeMatrix struct {
	Rows []Row
}

// NewCountMatrix builds the count matrix from estimator rows. Keys must be
// unique and format supplies the display name.
func NewCountMatrix(rows []estimate.Row, format Formatter) (*CountMatrix, error) {
	if format == nil {
		format = Capitalize
	}

	seen := make(map[string]bool, len(rows))
	m := &CountMatrix{Rows: make([]CountRow, 0, len(rows))}
	for _, r := range rows {
		if seen[r.Key] {
			return nil, fmt.Errorf("duplicate name key: %s", r.Key)
		}
		seen[r.Key] = true

		for i, v := range r.Counts {
			if v < 0 {
				return nil, fmt.Errorf("negative count for %s in %s: %d", r.Key, category.All[i], v)
			}
		}

		m.Rows = append(m.Rows, CountRow{
			Key:    r.Key,
			Name:   format(r.Key),
			Counts: r.Counts,
		})
	}
	return m, nil
}

// Len returns the number of rows.
func (m *CountMatrix) Len() int {
	return len(m.Rows)
}

// ColumnSums returns the total count per category.
func (m *CountMatrix) ColumnSums() [category.Count]int {
	var sums [category.Count]int
	for _, r := range m.Rows {
		for i, v := range r.Counts {
			sums[i] += v
		}
	}
	return sums
}

// Header returns the CSV header.
func (m *CountMatrix) Header() []string {
	return header()
}

// Records returns the CSV rows.
func (m *CountMatrix) Records() [][]string {
	list := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		rec := make([]string, 0, category.Count+1)
		rec = append(rec, r.Name)
		for _, v := range r.Counts {
			rec = append(rec, strconv.Itoa(v))
		}
		list = append(list, rec)
	}
	return list
}

// Len returns the number of rows.
func (p *ProbabilityMatrix) Len() int {
	return len(p.Rows)
}

// ColumnSums returns the sum of each category column.
func (p *ProbabilityMatrix) ColumnSums() [category.Count]float64 {
	return columnSums(p.Rows)
}

// Header returns the CSV header.
func (p *ProbabilityMatrix) Header() []string {
	return header()
}

// Records returns the CSV rows.
func (p *ProbabilityMatrix) Records() [][]string {
	return records(p.Rows)
}

// Len returns the number of rows.
func (c *CumulativeMatrix) Len() int {
	return len(c.Rows)
}

// Names returns the display names in final order.
func (c *CumulativeMatrix) Names() []string {
	list := make([]string, len(c.Rows))
	for i, r := range c.Rows {
		list[i] = r.Name
	}
	return list
}

// Column returns the values of column i in row order.
func (c *CumulativeMatrix) Column(i int) []float64 {
	list := make([]float64, len(c.Rows))
	for j, r := range c.Rows {
		list[j] = r.Values[i]
	}
	return list
}

// Header returns the CSV header.
func (c *CumulativeMatrix) Header() []string {
	return header()
}

// Records returns the CSV rows.
func (c *CumulativeMatrix) Records() [][]string {
	return records(c.Rows)
}

func header() []string {
	return append([]string{"name"}, category.Symbols()...)
}

func records(rows []Row) [][]string {
	list := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := make([]string, 0, category.Count+1)
		rec = append(rec, r.Name)
		for _, v := range r.Values {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		list = append(list, rec)
	}
	return list
}

func columnSums(rows []Row) [category.Count]float64 {
	var sums [category.Count]float64
	for _, r := range rows {
		for i, v := range r.Values {
			sums[i] += v
		}
	}
	return sums
}
