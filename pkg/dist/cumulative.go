package dist

import (
	"fmt"

	"github.com/mchmarny/namedist/pkg/category"
)

// Cumulate computes the running sum down each column in row order and
// divides each column by its last value, so the last row is exactly 1. The
// row order of p becomes the final output order.
func Cumulate(p *ProbabilityMatrix) (*CumulativeMatrix, error) {
	if p == nil || len(p.Rows) == 0 {
		return nil, ErrEmptyMatrix
	}

	c := &CumulativeMatrix{Rows: make([]Row, len(p.Rows))}
	var running [category.Count]float64
	for j, r := range p.Rows {
		row := Row{Key: r.Key, Name: r.Name}
		for i, v := range r.Values {
			running[i] += v
			row.Values[i] = running[i]
		}
		c.Rows[j] = row
	}

	last := c.Rows[len(c.Rows)-1].Values
	for i, v := range last {
		if v <= 0 {
			return nil, fmt.Errorf("%s: %w", category.All[i], ErrZeroColumn)
		}
	}

	for j := range c.Rows {
		for i := range c.Rows[j].Values {
			c.Rows[j].Values[i] /= last[i]
		}
	}
	return c, nil
}
