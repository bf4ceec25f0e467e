package dist

import (
	"sort"

	"github.com/mchmarny/namedist/pkg/category"
)

// Score is the mean of the strictly positive values. Categories a name never
// appears in are excluded so they do not penalize it. Returns 0 when all
// values are zero.
func Score(values [category.Count]float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Scores maps Score over the rows of p.
func Scores(p *ProbabilityMatrix) []float64 {
	list := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		list[i] = Score(r.Values)
	}
	return list
}

// Rank keeps the n rows with the highest Score. Scores are computed on
// per-category probabilities, so categories with more raw observations do
// not dominate the selection. Equal scores keep their input order.
func Rank(p *ProbabilityMatrix, n int) *ProbabilityMatrix {
	scores := Scores(p)

	order := make([]int, len(p.Rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if n < 0 {
		n = 0
	}
	if n > len(order) {
		n = len(order)
	}

	out := &ProbabilityMatrix{Rows: make([]Row, 0, n)}
	for _, i := range order[:n] {
		out.Rows = append(out.Rows, p.Rows[i])
	}
	return out
}
