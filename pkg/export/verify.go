package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/mchmarny/namedist/pkg/category"
)

// ErrInvalidArtifacts is returned by Verify when any check fails.
var ErrInvalidArtifacts = errors.New("invalid artifacts")

// ColumnCheck is the verification result of one binary file.
type ColumnCheck struct {
	Values    int     `json:"values" yaml:"values"`
	Aligned   bool    `json:"aligned" yaml:"aligned"`
	Monotonic bool    `json:"monotonic" yaml:"monotonic"`
	Last      float32 `json:"last" yaml:"last"`
}

// Verification is the result of Verify.
type Verification struct {
	Dir      string                  `json:"dir" yaml:"dir"`
	Names    int                     `json:"names" yaml:"names"`
	Columns  map[string]*ColumnCheck `json:"columns" yaml:"columns"`
	Problems []string                `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// ReadNames reads a newline-delimited name list.
func ReadNames(r io.Reader) ([]string, error) {
	list := make([]string, 0)
	s := bufio.NewScanner(r)
	for s.Scan() {
		list = append(list, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading names: %w", err)
	}
	return list, nil
}

// ReadColumn reads a raw little-endian float32 array.
func ReadColumn(r io.Reader) ([]float32, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading column: %w", err)
	}
	if len(b)%FloatSize != 0 {
		return nil, fmt.Errorf("column length %d is not a multiple of %d", len(b), FloatSize)
	}
	out := make([]float32, len(b)/FloatSize)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*FloatSize:]))
	}
	return out, nil
}

// Verify checks that every category file in dir is aligned with names.txt,
// non-decreasing and ends at 1.
func Verify(dir string) (*Verification, error) {
	f, err := os.Open(filepath.Join(dir, NamesFileName))
	if err != nil {
		return nil, fmt.Errorf("opening names: %w", err)
	}
	names, err := ReadNames(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	v := &Verification{
		Dir:     dir,
		Names:   len(names),
		Columns: make(map[string]*ColumnCheck, category.Count),
	}

	for _, c := range category.All {
		path := filepath.Join(dir, ColumnFileName(c))
		cf, err := os.Open(path)
		if err != nil {
			v.Problems = append(v.Problems, fmt.Sprintf("%s: %v", c, err))
			continue
		}
		values, err := ReadColumn(cf)
		cf.Close()
		if err != nil {
			v.Problems = append(v.Problems, fmt.Sprintf("%s: %v", c, err))
			continue
		}

		check := checkColumn(values, len(names))
		v.Columns[c.Symbol()] = check

		if !check.Aligned {
			v.Problems = append(v.Problems, fmt.Sprintf("%s: %d values for %d names", c, check.Values, len(names)))
		}
		if !check.Monotonic {
			v.Problems = append(v.Problems, fmt.Sprintf("%s: values decrease", c))
		}
		if check.Last != 1 {
			v.Problems = append(v.Problems, fmt.Sprintf("%s: last value %v, want 1", c, check.Last))
		}
	}

	if len(v.Problems) > 0 {
		return v, ErrInvalidArtifacts
	}
	return v, nil
}

func checkColumn(values []float32, names int) *ColumnCheck {
	check := &ColumnCheck{
		Values:    len(values),
		Aligned:   len(values) == names,
		Monotonic: true,
	}
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			check.Monotonic = false
			break
		}
	}
	if len(values) > 0 {
		check.Last = values[len(values)-1]
	}
	return check
}
