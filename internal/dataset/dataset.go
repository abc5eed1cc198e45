// Package dataset loads and normalises the tabular training data.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrShape reports a table whose rows do not match the header width.
	ErrShape = errors.New("table shape mismatch")
	// ErrMissingColumn reports a required column absent from the header.
	ErrMissingColumn = errors.New("missing column")
	// ErrEmpty reports input without a header row.
	ErrEmpty = errors.New("empty table")
)

// Table is a rectangular collection of string cells with named columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Options controls Load.
type Options struct {
	LabelColumn   string
	ExcludeLabels []string
}

// LoadFile opens path and delegates to Load.
func LoadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	table, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return table, nil
}

// Load reads CSV from r, drops rows carrying an excluded label and normalises
// every cell. Column order and names are preserved.
func Load(r io.Reader, opts Options) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = Normalize(name)
	}
	table := &Table{Columns: header, Rows: records[1:]}

	if len(opts.ExcludeLabels) > 0 {
		labelIdx, err := table.ColumnIndex(opts.LabelColumn)
		if err != nil {
			return nil, err
		}
		table.Rows = dropLabels(table.Rows, labelIdx, opts.ExcludeLabels)
	}

	if err := table.normalize(); err != nil {
		return nil, err
	}
	return table, nil
}

// Normalize trims surrounding whitespace and applies NFKC so tokens from the
// dataset and from requests compare equal.
func Normalize(cell string) string {
	return strings.TrimSpace(norm.NFKC.String(cell))
}

// ColumnIndex resolves a column name to its position.
func (t *Table) ColumnIndex(name string) (int, error) {
	idx := slices.Index(t.Columns, name)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return idx, nil
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Len reports the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// normalize strips the whole table as one flat sequence of cells and then
// reshapes it. Rows that do not match the header width fail before flattening.
func (t *Table) normalize() error {
	width := len(t.Columns)
	flat := make([]string, 0, width*len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d cells, header has %d", ErrShape, i+1, len(row), width)
		}
		flat = append(flat, row...)
	}
	for i, cell := range flat {
		flat[i] = Normalize(cell)
	}

	rows := make([][]string, len(t.Rows))
	for i := range rows {
		rows[i] = flat[i*width : (i+1)*width : (i+1)*width]
	}
	t.Rows = rows
	return nil
}

func dropLabels(rows [][]string, labelIdx int, excluded []string) [][]string {
	skip := make(map[string]struct{}, len(excluded))
	for _, label := range excluded {
		skip[Normalize(label)] = struct{}{}
	}
	kept := rows[:0:0]
	for _, row := range rows {
		if labelIdx < len(row) {
			if _, ok := skip[Normalize(row[labelIdx])]; ok {
				continue
			}
		}
		kept = append(kept, row)
	}
	return kept
}
