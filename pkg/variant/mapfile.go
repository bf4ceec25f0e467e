package variant

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mchmarny/namedist/pkg/dist"
)

var mapHeader = []string{"original", "standard"}

// WriteMap writes the mappings as an original,standard CSV.
func WriteMap(w io.Writer, list []*Mapping) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mapHeader); err != nil {
		return fmt.Errorf("writing map header: %w", err)
	}
	for _, m := range list {
		if err := cw.Write([]string{m.Original, m.Standard}); err != nil {
			return fmt.Errorf("writing mapping %s: %w", m.Standard, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Map is a standard form to original spelling lookup.
type Map map[string]string

// ReadMap reads an original,standard CSV. Column order follows the header.
func ReadMap(r io.Reader) (Map, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading map header: %w", err)
	}

	orig, std := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "original":
			orig = i
		case "standard":
			std = i
		}
	}
	if orig < 0 || std < 0 {
		return nil, fmt.Errorf("map header must contain original and standard: %v", header)
	}

	m := make(Map)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading map: %w", err)
		}
		m[rec[std]] = rec[orig]
	}
	return m, nil
}

// Formatter returns a display formatter that prefers the mapped spelling
// and falls back to capitalization. Keys that used the map are reported
// through used.
func (m Map) Formatter(used func(key, name string)) dist.Formatter {
	return func(key string) string {
		if name, ok := m[key]; ok {
			if used != nil {
				used(key, name)
			}
			return name
		}
		return dist.Capitalize(key)
	}
}
