// Package estimate derives integer joint (gender, race) counts per name from
// independent or shared-total observation sources.
package estimate

import (
	"math"

	"github.com/mchmarny/namedist/pkg/category"
)

// GenderCount holds observed counts for one name in category.Genders order.
type GenderCount struct {
	Key    string
	Counts [2]float64
}

// RaceValue holds one name's race values in category.Races order. Values are
// counts or probabilities depending on the source.
type RaceValue struct {
	Key    string
	Values [5]float64
}

// Row is the estimated joint count of one name for every category in
// category.All order.
type Row struct {
	Key    string
	Counts [category.Count]int
}

// Policy combines a gender count with a race value into a joint count.
type Policy func(gender, race float64) int

var (
	// PolicyGeometricMean is used when both inputs are counts on comparable
	// absolute scales.
	PolicyGeometricMean Policy = GeometricMean

	// PolicyProductRescale is used when the race input is a normalized
	// probability and gender carries the only absolute scale.
	PolicyProductRescale Policy = ProductRescale
)

// PercentOfTotal converts a percentage of a shared observation total into a count.
func PercentOfTotal(pct, total float64) int {
	return roundCount(pct * total / 100)
}

// GeometricMean returns round(sqrt(gender * race)).
func GeometricMean(gender, race float64) int {
	return roundCount(math.Sqrt(gender * race))
}

// ProductRescale returns round(gender * raceProbability).
func ProductRescale(gender, raceProbability float64) int {
	return roundCount(gender * raceProbability)
}

// roundCount rounds half to even and clamps negative or undefined values to 0.
func roundCount(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return int(math.RoundToEven(v))
}

// Join combines gender counts and race values keyed by name using policy.
// Names missing from either side are excluded. Output follows genders order.
func Join(genders []GenderCount, races []RaceValue, policy Policy) []Row {
	byKey := make(map[string]RaceValue, len(races))
	for _, r := range races {
		if _, ok := byKey[r.Key]; ok {
			continue
		}
		byKey[r.Key] = r
	}

	rows := make([]Row, 0, len(genders))
	for _, g := range genders {
		r, ok := byKey[g.Key]
		if !ok {
			continue
		}
		rows = append(rows, combine(g, r, policy))
	}
	return rows
}

func combine(g GenderCount, r RaceValue, policy Policy) Row {
	row := Row{Key: g.Key}
	for i, c := range category.All {
		gi := category.GenderIndex(c.Gender)
		ri := category.RaceIndex(c.Race)
		row.Counts[i] = policy(g.Counts[gi], r.Values[ri])
	}
	return row
}

// FromSingleSource builds rows from race counts that share one observation
// total. The source has no gender axis, so both genders get the race count.
func FromSingleSource(races []RaceValue) []Row {
	rows := make([]Row, 0, len(races))
	for _, r := range races {
		row := Row{Key: r.Key}
		for i, c := range category.All {
			row.Counts[i] = roundCount(r.Values[category.RaceIndex(c.Race)])
		}
		rows = append(rows, row)
	}
	return rows
}
