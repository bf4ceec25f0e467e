package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_Order(t *testing.T) {
	require.Len(t, All, Count)
	assert.Equal(t, []string{
		"fhispanic", "fwhite", "fblack", "fapi", "faian",
		"mhispanic", "mwhite", "mblack", "mapi", "maian",
	}, Symbols())
}

func TestParse(t *testing.T) {
	c, err := Parse("mblack")
	require.NoError(t, err)
	assert.Equal(t, Male, c.Gender)
	assert.Equal(t, Black, c.Race)
	assert.Equal(t, 7, Index(c))

	_, err = Parse("xwhite")
	assert.Error(t, err)
}

func TestIndex_Unknown(t *testing.T) {
	assert.Equal(t, -1, Index(Category{Gender: "x", Race: White}))
}

func TestRaceAndGenderIndex(t *testing.T) {
	assert.Equal(t, 0, RaceIndex(Hispanic))
	assert.Equal(t, 4, RaceIndex(AIAN))
	assert.Equal(t, -1, RaceIndex("other"))
	assert.Equal(t, 1, GenderIndex(Male))
	assert.Equal(t, -1, GenderIndex("x"))
}
