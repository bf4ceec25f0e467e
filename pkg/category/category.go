// Package category defines the closed set of (gender, race) pairs used as the
// column axis of every count, probability and cumulative table.
package category

import (
	"fmt"
)

// Gender is the gender half of a category.
type Gender string

// Race is the race-group half of a category.
type Race string

const (
	Female Gender = "f"
	Male   Gender = "m"

	Hispanic Race = "hispanic"
	White    Race = "white"
	Black    Race = "black"
	API      Race = "api"
	AIAN     Race = "aian"

	// Count is the number of categories in All.
	Count = 10
)

var (
	// Genders in column order.
	Genders = []Gender{Female, Male}

	// Races in column order.
	Races = []Race{Hispanic, White, Black, API, AIAN}

	// All is the ordered category set. Serialized tables are positionally
	// aligned on this order.
	All = build()

	index = func() map[string]int {
		m := make(map[string]int, Count)
		for i, c := range All {
			m[c.Symbol()] = i
		}
		return m
	}()
)

// Category is a single (gender, race) pair.
type Category struct {
	Gender Gender
	Race   Race
}

// Symbol returns the column name of the category, e.g. "fhispanic".
func (c Category) Symbol() string {
	return string(c.Gender) + string(c.Race)
}

func (c Category) String() string {
	return c.Symbol()
}

func build() []Category {
	list := make([]Category, 0, len(Genders)*len(Races))
	for _, g := range Genders {
		for _, r := range Races {
			list = append(list, Category{Gender: g, Race: r})
		}
	}
	return list
}

// Parse returns the category for a symbol.
func Parse(symbol string) (Category, error) {
	i, ok := index[symbol]
	if !ok {
		return Category{}, fmt.Errorf("unknown category: %q", symbol)
	}
	return All[i], nil
}

// Index returns the column index of c in All, or -1.
func Index(c Category) int {
	i, ok := index[c.Symbol()]
	if !ok {
		return -1
	}
	return i
}

// Symbols returns the column names in All order.
func Symbols() []string {
	list := make([]string, len(All))
	for i, c := range All {
		list[i] = c.Symbol()
	}
	return list
}

// RaceIndex returns the position of r in Races, or -1.
func RaceIndex(r Race) int {
	for i, v := range Races {
		if v == r {
			return i
		}
	}
	return -1
}

// GenderIndex returns the position of g in Genders, or -1.
func GenderIndex(g Gender) int {
	for i, v := range Genders {
		if v == g {
			return i
		}
	}
	return -1
}
