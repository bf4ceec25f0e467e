// Package source reads the raw observation tables (name/gender counts and
// name/race percentages or probabilities) into estimator inputs.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const (
	// SuppressedMarker flags a suppressed census value.
	SuppressedMarker = "(S)"

	reasonMissing    = "missing"
	reasonSuppressed = "suppressed"
	reasonInvalid    = "invalid"
	reasonSentinel   = "sentinel"
)

var (
	// DefaultSentinels are name tokens treated as empty.
	DefaultSentinels = []string{"", "NULL"}

	// ErrMissingColumn is returned when a required header column is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Options control row filtering.
type Options struct {
	// Sentinels are compared against the trimmed, uppercased name.
	Sentinels []string
}

// Report summarizes a read.
type Report struct {
	Source  string         `json:"source" yaml:"source"`
	Rows    int            `json:"rows" yaml:"rows"`
	Kept    int            `json:"kept" yaml:"kept"`
	Dropped int            `json:"dropped" yaml:"dropped"`
	Reasons map[string]int `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

func (r *Report) drop(reason string, line int, name string) {
	r.Dropped++
	if r.Reasons == nil {
		r.Reasons = make(map[string]int)
	}
	r.Reasons[reason]++
	slog.Debug("dropping row", "source", r.Source, "line", line, "name", name, "reason", reason)
}

// record is one parsed row: the uppercase key and the values of the
// requested columns in request order.
type record struct {
	key    string
	values []float64
}

type schema struct {
	source  string
	nameCol string
	cols    []string
}

func (o Options) isSentinel(key string) bool {
	sentinels := o.Sentinels
	if sentinels == nil {
		sentinels = DefaultSentinels
	}
	for _, s := range sentinels {
		if strings.EqualFold(strings.TrimSpace(s), key) {
			return true
		}
	}
	return false
}

// readTable reads a header-driven CSV and returns the rows that have a
// usable name and parsable values for every requested column.
func readTable(r io.Reader, s schema, opt Options) ([]record, *Report, error) {
	if r == nil {
		return nil, nil, errors.New("reader required")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s header: %w", s.source, err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}

	nameIdx, ok := pos[s.nameCol]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w: %s", s.source, ErrMissingColumn, s.nameCol)
	}
	idx := make([]int, len(s.cols))
	for i, c := range s.cols {
		p, ok := pos[c]
		if !ok {
			return nil, nil, fmt.Errorf("%s: %w: %s", s.source, ErrMissingColumn, c)
		}
		idx[i] = p
	}

	rep := &Report{Source: s.source}
	list := make([]record, 0)
	line := 1

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s line %d: %w", s.source, line, err)
		}
		rep.Rows++

		if nameIdx >= len(rec) {
			rep.drop(reasonMissing, line, "")
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(rec[nameIdx]))

		if isSuppressed(rec) {
			rep.drop(reasonSuppressed, line, key)
			continue
		}

		if opt.isSentinel(key) {
			rep.drop(reasonSentinel, line, key)
			continue
		}

		values, reason := parseValues(rec, idx)
		if reason != "" {
			rep.drop(reason, line, key)
			continue
		}

		list = append(list, record{key: key, values: values})
		rep.Kept++
	}

	if rep.Dropped > 0 {
		slog.Info("dropped incomplete rows", "source", s.source, "dropped", rep.Dropped, "kept", rep.Kept)
	}

	return list, rep, nil
}

func isSuppressed(rec []string) bool {
	for _, v := range rec {
		if strings.Contains(v, SuppressedMarker) {
			return true
		}
	}
	return false
}

func parseValues(rec []string, idx []int) ([]float64, string) {
	values := make([]float64, len(idx))
	for i, p := range idx {
		if p >= len(rec) {
			return nil, reasonMissing
		}
		raw := strings.TrimSpace(rec[p])
		if raw == "" {
			return nil, reasonMissing
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, reasonInvalid
		}
		values[i] = v
	}
	return values, ""
}
