// Package export writes the name lookup list and the per-category binary
// cumulative tables, plus the CSV checkpoints of intermediate matrices.
package export

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/mchmarny/namedist/pkg/category"
	"github.com/mchmarny/namedist/pkg/dist"
)

const (
	// NamesFileName is the row-order lookup file.
	NamesFileName = "names.txt"

	// ColumnFileExt is the extension of the per-category binary files.
	ColumnFileExt = ".bin"

	// FloatSize is the byte width of one serialized value.
	FloatSize = 4

	dirMode  = 0755
	fileMode = 0644
)

// Table is a matrix that can be rendered as CSV.
type Table interface {
	Header() []string
	Records() [][]string
}

// List is a single column table without a header.
type List []string

func (l List) Header() []string {
	return nil
}

func (l List) Records() [][]string {
	list := make([][]string, len(l))
	for i, v := range l {
		list[i] = []string{v}
	}
	return list
}

// Artifact describes a written file.
type Artifact struct {
	Path     string `json:"path" yaml:"path"`
	Size     int64  `json:"size" yaml:"size"`
	Checksum string `json:"checksum" yaml:"checksum"`
}

// ColumnFileName returns the binary file name of c.
func ColumnFileName(c category.Category) string {
	return c.Symbol() + ColumnFileExt
}

// WriteNames writes one name per line.
func WriteNames(w io.Writer, names []string) error {
	bw := bufio.NewWriter(w)
	for _, n := range names {
		if _, err := bw.WriteString(n + "\n"); err != nil {
			return fmt.Errorf("writing name %q: %w", n, err)
		}
	}
	return bw.Flush()
}

// WriteColumn writes values as raw little-endian float32 with no header.
func WriteColumn(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, FloatSize)
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("writing column value: %w", err)
		}
	}
	return bw.Flush()
}

// WriteTable writes t as CSV. An empty header is omitted.
func WriteTable(w io.Writer, t Table) error {
	if t == nil {
		return errors.New("table required")
	}
	cw := csv.NewWriter(w)
	if h := t.Header(); len(h) > 0 {
		if err := cw.Write(h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}

// WriteTableFile writes t as CSV to path.
func WriteTableFile(path string, t Table) (*Artifact, error) {
	return writeFile(path, func(w io.Writer) error {
		return WriteTable(w, t)
	})
}

// Export writes names.txt and one binary file per category into dir. All
// files are index aligned on the row order of c.
func Export(dir string, c *dist.CumulativeMatrix) ([]*Artifact, error) {
	if c == nil || c.Len() == 0 {
		return nil, dist.ErrEmptyMatrix
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", dir, err)
	}

	list := make([]*Artifact, 0, category.Count+1)

	names := c.Names()
	a, err := writeFile(filepath.Join(dir, NamesFileName), func(w io.Writer) error {
		return WriteNames(w, names)
	})
	if err != nil {
		return nil, err
	}
	list = append(list, a)

	for i, cat := range category.All {
		col := c.Column(i)
		a, err := writeFile(filepath.Join(dir, ColumnFileName(cat)), func(w io.Writer) error {
			return WriteColumn(w, col)
		})
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}

	var total int64
	for _, a := range list {
		total += a.Size
	}
	slog.Debug("exported artifacts", "dir", dir, "files", len(list), "size", humanize.Bytes(uint64(total)))

	return list, nil
}

// writeFile creates path and records its size and xxhash checksum.
func writeFile(path string, fn func(w io.Writer) error) (a *Artifact, retErr error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fileMode)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	d := xxhash.New()
	cw := &countingWriter{w: io.MultiWriter(f, d)}
	if err := fn(cw); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	return &Artifact{
		Path:     path,
		Size:     cw.n,
		Checksum: fmt.Sprintf("%016x", d.Sum64()),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
