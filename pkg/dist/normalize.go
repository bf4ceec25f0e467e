package dist

import (
	"github.com/mchmarny/namedist/pkg/category"
)

// Normalize divides every count by its category total. A category with no
// observations yields an all-zero column.
func Normalize(m *CountMatrix) *ProbabilityMatrix {
	sums := m.ColumnSums()
	p := &ProbabilityMatrix{Rows: make([]Row, 0, len(m.Rows))}
	for _, r := range m.Rows {
		row := Row{Key: r.Key, Name: r.Name}
		for i, v := range r.Counts {
			if sums[i] == 0 {
				continue
			}
			row.Values[i] = float64(v) / float64(sums[i])
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

// Renormalize restores the column-sum invariant on a reduced row set. A
// column that still sums to zero gets a uniform distribution over the rows
// so every category stays sampleable; those categories are returned.
func Renormalize(p *ProbabilityMatrix) (*ProbabilityMatrix, []category.Category) {
	sums := p.ColumnSums()
	out := &ProbabilityMatrix{Rows: make([]Row, len(p.Rows))}
	copy(out.Rows, p.Rows)

	var uniform []category.Category
	for i, s := range sums {
		if s == 0 && len(out.Rows) > 0 {
			uniform = append(uniform, category.All[i])
		}
	}

	n := float64(len(out.Rows))
	for j := range out.Rows {
		for i := range out.Rows[j].Values {
			if sums[i] == 0 {
				out.Rows[j].Values[i] = 1 / n
				continue
			}
			out.Rows[j].Values[i] /= sums[i]
		}
	}
	return out, uniform
}
