package dist

// DefaultLevels are the cumulative levels reported by Thresholds.
var DefaultLevels = []float64{0, 0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875}

// Crossing marks the first row whose cross-category mean cumulative value
// reaches a level.
type Crossing struct {
	Level float64 `json:"level" yaml:"level"`
	Index int     `json:"index" yaml:"index"`
	Name  string  `json:"name" yaml:"name"`
	Mean  float64 `json:"mean" yaml:"mean"`
}

// Thresholds walks c in order and reports where the mean cumulative value
// first meets or exceeds each successive level. Levels must be ascending.
func Thresholds(c *CumulativeMatrix, levels []float64) []Crossing {
	list := make([]Crossing, 0, len(levels))
	if c == nil || len(levels) == 0 {
		return list
	}

	next := 0
	for j, r := range c.Rows {
		var sum float64
		for _, v := range r.Values {
			sum += v
		}
		mean := sum / float64(len(r.Values))

		if mean >= levels[next] {
			list = append(list, Crossing{
				Level: levels[next],
				Index: j,
				Name:  r.Name,
				Mean:  mean,
			})
			next++
			if next == len(levels) {
				break
			}
		}
	}
	return list
}
