package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadGenders(t *testing.T) {
	in := `name,f,m
Anna,100,2
Bob,1,90
anna,5,0
,3,3
`
	list, rep, err := ReadGenders(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ANNA", list[0].Key)
	assert.Equal(t, [2]float64{105, 2}, list[0].Counts)
	assert.Equal(t, "BOB", list[1].Key)
	assert.Equal(t, 4, rep.Rows)
	assert.Equal(t, 3, rep.Kept)
	assert.Equal(t, 1, rep.Dropped)
	assert.Equal(t, 1, rep.Reasons[reasonSentinel])
}

func TestReadGenders_MissingColumn(t *testing.T) {
	_, _, err := ReadGenders(strings.NewReader("name,f\nA,1\n"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestReadGenders_NilReader(t *testing.T) {
	_, _, err := ReadGenders(nil, Options{})
	assert.Error(t, err)
}

func TestReadFirstNameRaces(t *testing.T) {
	in := `firstname,obs,pcthispanic,pctwhite,pctblack,pctapi,pctaian,pct2prace
AARON,1000,10,50,30,5,4,1
ABE,bad,10,50,30,5,4,1
ABBY,200,,50,30,5,4,1
`
	list, rep, err := ReadFirstNameRaces(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "AARON", list[0].Key)
	assert.Equal(t, [5]float64{100, 500, 300, 50, 40}, list[0].Values)
	assert.Equal(t, 1, rep.Reasons[reasonInvalid])
	assert.Equal(t, 1, rep.Reasons[reasonMissing])
}

func TestReadSurnameRaces_DropsSuppressedAndNull(t *testing.T) {
	in := `name,rank,count,prop100k,cum_prop100k,pctwhite,pctblack,pctapi,pctaian,pct2prace,pcthispanic
SMITH,1,2442977,828.19,828.19,70.9,23.11,0.5,0.89,2.19,2.4
TINY,99999,100,0.03,99.9,(S),50,(S),0,0,10
NULL,500,3000,1,50,90,5,1,1,1,2
 ,501,3000,1,50,90,5,1,1,1,2
`
	list, rep, err := ReadSurnameRaces(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "SMITH", list[0].Key)
	// hispanic, white, black, api, aian
	assert.Equal(t, [5]float64{58631, 1732071, 564572, 12215, 21742}, list[0].Values)
	assert.Equal(t, 1, rep.Reasons[reasonSuppressed])
	assert.Equal(t, 2, rep.Reasons[reasonSentinel])
}

func TestReadSurnameRaces_CustomSentinels(t *testing.T) {
	in := `name,rank,count,prop100k,cum_prop100k,pctwhite,pctblack,pctapi,pctaian,pct2prace,pcthispanic
NULL,500,3000,1,50,90,5,1,1,1,2
`
	list, _, err := ReadSurnameRaces(strings.NewReader(in), Options{Sentinels: []string{""}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "NULL", list[0].Key)
}

func TestReadMiddleNameRaces(t *testing.T) {
	in := `name,whi,bla,his,asi,oth
JAMES,0.7,0.2,0.05,0.03,0.02
`
	list, _, err := ReadMiddleNameRaces(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, [5]float64{0.05, 0.7, 0.2, 0.03, 0.02}, list[0].Values)
}
