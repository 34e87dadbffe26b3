package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// ErrNoRows is returned when a file has a header but no observations
var ErrNoRows = errors.New("no data rows")

var missingTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// Column is one typed column of a table
type Column struct {
	Name    string
	Kind    Kind
	ints    []int64
	floats  []float64
	strs    []string
	missing []bool
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.missing)
}

// Value returns the cell at row i as int64, float64 or string, or nil when
// the cell is absent or infinite.
func (c *Column) Value(i int) interface{} {
	if c.missing[i] {
		return nil
	}
	switch c.Kind {
	case KindInt:
		return c.ints[i]
	case KindFloat:
		if math.IsInf(c.floats[i], 0) {
			return nil
		}
		return c.floats[i]
	default:
		return c.strs[i]
	}
}

// Floats returns the column as numbers. String columns and absent cells fail.
func (c *Column) Floats() ([]float64, error) {
	out := make([]float64, c.Len())
	switch c.Kind {
	case KindInt:
		for i, v := range c.ints {
			out[i] = float64(v)
		}
	case KindFloat:
		for i, v := range c.floats {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("column %q contains missing values", c.Name)
			}
			out[i] = v
		}
	default:
		for i, s := range c.strs {
			if c.missing[i] {
				continue
			}
			if _, err := parseFloat(s); err != nil {
				return nil, fmt.Errorf("column %q: could not convert string to float: %q", c.Name, s)
			}
		}
		return nil, fmt.Errorf("column %q contains missing values", c.Name)
	}
	return out, nil
}

// Table is a parsed CSV file
type Table struct {
	Source  string
	columns []*Column
	index   map[string]int
	rows    int
}

// Read loads the CSV at path. A missing file yields an error matching
// fs.ErrNotExist.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, filepath.Base(path))
}

// Parse reads CSV from r; source names the input in error messages
func Parse(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: no columns to parse from file", source)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	header = dedupe(header)

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%s: expected %d fields in line %d, saw %d", source, len(header), line, len(rec))
		}
		records = append(records, rec)
	}

	t := &Table{
		Source:  source,
		columns: make([]*Column, len(header)),
		index:   make(map[string]int, len(header)),
		rows:    len(records),
	}
	for j, name := range header {
		cells := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				cells[i] = rec[j]
			}
		}
		t.columns[j] = buildColumn(name, cells)
		t.index[name] = j
	}

	return t, nil
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return t.rows
}

// Columns returns the column names in file order
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table has a column called name
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found in %s", name, t.Source)
	}
	return t.columns[j], nil
}

// LastRow returns the index of the last observation in file order
func (t *Table) LastRow() (int, error) {
	if t.rows == 0 {
		return 0, fmt.Errorf("%s: %w", t.Source, ErrNoRows)
	}
	return t.rows - 1, nil
}

// Matrix returns the named columns as a row-major float slice plus the row
// count, ready for a regression design matrix.
func (t *Table) Matrix(names []string) ([]float64, int, error) {
	data := make([]float64, t.rows*len(names))
	for j, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return nil, 0, err
		}
		vals, err := col.Floats()
		if err != nil {
			return nil, 0, err
		}
		for i, v := range vals {
			data[i*len(names)+j] = v
		}
	}
	return data, t.rows, nil
}

func buildColumn(name string, cells []string) *Column {
	c := &Column{Name: name, missing: make([]bool, len(cells))}

	allInt, allFloat, anyMissing := true, true, false
	for i, s := range cells {
		if missingTokens[strings.TrimSpace(s)] {
			c.missing[i] = true
			anyMissing = true
			continue
		}
		if allInt {
			if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, err := parseFloat(s); err != nil {
				allFloat = false
			}
		}
	}

	switch {
	case allInt && !anyMissing:
		c.Kind = KindInt
		c.ints = make([]int64, len(cells))
		for i, s := range cells {
			c.ints[i], _ = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		}
	case allFloat:
		c.Kind = KindFloat
		c.floats = make([]float64, len(cells))
		for i, s := range cells {
			if c.missing[i] {
				c.floats[i] = math.NaN()
				continue
			}
			c.floats[i], _ = parseFloat(s)
		}
	default:
		c.Kind = KindString
		c.strs = cells
	}

	return c
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX_") {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return strconv.ParseFloat(s, 64)
}

// dedupe renames repeated header names to name.1, name.2, ...
func dedupe(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))
	for i, name := range header {
		candidate := name
		for taken[candidate] {
			counts[name]++
			candidate = fmt.Sprintf("%s.%d", name, counts[name])
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}
