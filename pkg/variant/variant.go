// Package variant resolves accented or punctuated surname spellings that
// collapse to the same standard form into one chosen original spelling.
package variant

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mchmarny/namedist/pkg/dist"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidChoice is returned when a chooser picks an index outside the
// candidate list.
var ErrInvalidChoice = errors.New("invalid choice")

// Group is a standard form and the original spellings that map to it, in
// first-seen order.
type Group struct {
	Standard   string   `json:"standard" yaml:"standard"`
	Candidates []string `json:"candidates" yaml:"candidates"`
}

// Mapping is one resolved spelling.
type Mapping struct {
	Original string `json:"original" yaml:"original"`
	Standard string `json:"standard" yaml:"standard"`
}

// Chooser picks one of the candidates of a standard form.
type Chooser interface {
	Choose(standard string, candidates []string) (int, error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(standard string, candidates []string) (int, error)

// Choose calls f.
func (f ChooserFunc) Choose(standard string, candidates []string) (int, error) {
	return f(standard, candidates)
}

// FirstChooser always picks the first candidate.
var FirstChooser = ChooserFunc(func(string, []string) (int, error) {
	return 0, nil
})

// Standardize decomposes name (NFKD), keeps only letters and upper-cases it.
func Standardize(name string) string {
	return strings.ToUpper(lettersOnly(norm.NFKD.String(name)))
}

// Simplify keeps only letters and capitalizes the result.
func Simplify(name string) string {
	return dist.Capitalize(lettersOnly(name))
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ReadNames reads one trimmed name per line, skipping blank lines.
func ReadNames(r io.Reader) ([]string, error) {
	list := make([]string, 0)
	s := bufio.NewScanner(r)
	for s.Scan() {
		n := strings.TrimSpace(s.Text())
		if n == "" {
			continue
		}
		list = append(list, n)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading surnames: %w", err)
	}
	return list, nil
}

// GroupNames groups the names that need a mapping by standard form. Names
// already equal to their simplified form are plain and skipped.
func GroupNames(names []string) []*Group {
	pos := make(map[string]int)
	list := make([]*Group, 0)
	for _, n := range names {
		if Simplify(n) == n {
			continue
		}
		std := Standardize(n)
		if i, ok := pos[std]; ok {
			list[i].Candidates = append(list[i].Candidates, n)
			continue
		}
		pos[std] = len(list)
		list = append(list, &Group{Standard: std, Candidates: []string{n}})
	}
	return list
}

// Resolve picks one spelling per group. The chooser is consulted only for
// groups with more than one candidate.
func Resolve(groups []*Group, chooser Chooser) ([]*Mapping, error) {
	if chooser == nil {
		return nil, errors.New("chooser required")
	}

	list := make([]*Mapping, 0, len(groups))
	for _, g := range groups {
		if len(g.Candidates) == 0 {
			continue
		}
		idx := 0
		if len(g.Candidates) > 1 {
			i, err := chooser.Choose(g.Standard, g.Candidates)
			if err != nil {
				return nil, fmt.Errorf("choosing spelling for %s: %w", g.Standard, err)
			}
			if i < 0 || i >= len(g.Candidates) {
				return nil, fmt.Errorf("%s: %w: %d of %d", g.Standard, ErrInvalidChoice, i, len(g.Candidates))
			}
			idx = i
		}
		list = append(list, &Mapping{Original: g.Candidates[idx], Standard: g.Standard})
	}
	return list, nil
}
