package source

import (
	"io"

	"github.com/mchmarny/namedist/pkg/estimate"
)

// ReadGenders reads a name,f,m count table. Names are uppercased and
// duplicate keys are merged by summing their counts.
func ReadGenders(r io.Reader, opt Options) ([]estimate.GenderCount, *Report, error) {
	recs, rep, err := readTable(r, schema{
		source:  "genders",
		nameCol: "name",
		cols:    []string{"f", "m"},
	}, opt)
	if err != nil {
		return nil, nil, err
	}

	pos := make(map[string]int, len(recs))
	list := make([]estimate.GenderCount, 0, len(recs))
	for _, rec := range recs {
		if i, ok := pos[rec.key]; ok {
			list[i].Counts[0] += rec.values[0]
			list[i].Counts[1] += rec.values[1]
			continue
		}
		pos[rec.key] = len(list)
		list = append(list, estimate.GenderCount{
			Key:    rec.key,
			Counts: [2]float64{rec.values[0], rec.values[1]},
		})
	}
	return list, rep, nil
}

// ReadFirstNameRaces reads the first name race table and converts the race
// percentages to counts of the shared obs total.
func ReadFirstNameRaces(r io.Reader, opt Options) ([]estimate.RaceValue, *Report, error) {
	recs, rep, err := readTable(r, schema{
		source:  "firstname-races",
		nameCol: "firstname",
		cols:    []string{"obs", "pcthispanic", "pctwhite", "pctblack", "pctapi", "pctaian"},
	}, opt)
	if err != nil {
		return nil, nil, err
	}
	return percentRows(recs), rep, nil
}

// ReadSurnameRaces reads the census surname table and converts the race
// percentages to counts of the shared count total.
func ReadSurnameRaces(r io.Reader, opt Options) ([]estimate.RaceValue, *Report, error) {
	recs, rep, err := readTable(r, schema{
		source:  "surname-races",
		nameCol: "name",
		cols:    []string{"count", "pcthispanic", "pctwhite", "pctblack", "pctapi", "pctaian"},
	}, opt)
	if err != nil {
		return nil, nil, err
	}
	return percentRows(recs), rep, nil
}

// ReadMiddleNameRaces reads the middle name race probability table. The
// source has no aian column; its "oth" column is used in that position.
func ReadMiddleNameRaces(r io.Reader, opt Options) ([]estimate.RaceValue, *Report, error) {
	recs, rep, err := readTable(r, schema{
		source:  "middlename-races",
		nameCol: "name",
		cols:    []string{"his", "whi", "bla", "asi", "oth"},
	}, opt)
	if err != nil {
		return nil, nil, err
	}

	list := make([]estimate.RaceValue, 0, len(recs))
	for _, rec := range recs {
		v := estimate.RaceValue{Key: rec.key}
		copy(v.Values[:], rec.values)
		list = append(list, v)
	}
	return list, rep, nil
}

// percentRows expects the total in values[0] followed by five race
// percentages in category.Races order.
func percentRows(recs []record) []estimate.RaceValue {
	list := make([]estimate.RaceValue, 0, len(recs))
	for _, rec := range recs {
		total := rec.values[0]
		v := estimate.RaceValue{Key: rec.key}
		for i, pct := range rec.values[1:] {
			v.Values[i] = float64(estimate.PercentOfTotal(pct, total))
		}
		list = append(list, v)
	}
	return list
}
