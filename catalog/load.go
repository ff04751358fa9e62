package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	iterableColumns []string
}

// WithIterableColumns declares catalog columns whose cells hold lists.
// Columns storing lists in the table itself are detected automatically;
// the declaration matters for CSV tables, where list cells are parsed
// from their bracketed text form.
func WithIterableColumns(cols ...string) LoadOption {
	return func(o *loadOptions) {
		o.iterableColumns = append(o.iterableColumns, cols...)
	}
}

// Load reads a catalog descriptor from a JSON file, validates it and
// loads the asset table it references. Descriptors and CSV tables with a
// .gz suffix are decompressed transparently. Relative catalog_file paths
// resolve against the descriptor's directory.
func Load(path string, opts ...LoadOption) (*Catalog, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var columns []string
	var rows []Row
	switch {
	case c.CatalogDict != nil:
		columns, rows = dictTable(&c)
	case c.CatalogFile != "":
		tablePath := c.CatalogFile
		if _, statErr := os.Stat(tablePath); statErr != nil && !filepath.IsAbs(tablePath) {
			tablePath = filepath.Join(filepath.Dir(path), tablePath)
		}
		columns, rows, err = readTable(tablePath, o.iterableColumns)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("catalog must provide one of catalog_dict or catalog_file")
	}

	c.Index = NewIndex(columns, rows, o.iterableColumns)
	if err := c.CheckColumns(); err != nil {
		return nil, err
	}
	return &c, nil
}

// readFile reads a file into memory, decompressing .gz paths.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return io.ReadAll(r)
}

// dictTable turns an embedded record list into columns and rows. Column
// order follows the declared attributes, then any remaining columns in
// sorted order, since the JSON objects themselves carry no order.
func dictTable(c *Catalog) ([]string, []Row) {
	seen := make(map[string]bool)
	for _, row := range c.CatalogDict {
		for col := range row {
			seen[col] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for _, attr := range c.Attributes {
		if seen[attr.ColumnName] {
			columns = append(columns, attr.ColumnName)
			delete(seen, attr.ColumnName)
		}
	}
	rest := make([]string, 0, len(seen))
	for col := range seen {
		rest = append(rest, col)
	}
	sort.Strings(rest)
	columns = append(columns, rest...)

	return columns, c.CatalogDict
}

// readTable loads the asset table by file extension.
func readTable(path string, iterableColumns []string) ([]string, []Row, error) {
	name := strings.TrimSuffix(path, ".gz")
	switch {
	case strings.HasSuffix(name, ".csv"):
		return readCSVTable(path, iterableColumns)
	case strings.HasSuffix(name, ".parquet"):
		return readParquetTable(path)
	default:
		return nil, nil, fmt.Errorf("unsupported catalog table format: %s", path)
	}
}

// readCSVTable reads a CSV asset table. Cell types are inferred per
// column: a column parses as int64 when every non-empty cell does, as
// float64 when every non-empty cell is numeric, and stays text
// otherwise. Empty cells become nulls. Declared iterable columns are
// decoded from their bracketed text form instead.
func readCSVTable(path string, iterableColumns []string) ([]string, []Row, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog table: %w", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog table: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("catalog table %s has no header row", path)
	}

	columns := records[0]
	cells := records[1:]

	iterable := make(map[string]bool, len(iterableColumns))
	for _, col := range iterableColumns {
		iterable[col] = true
	}

	rows := make([]Row, len(cells))
	for i := range rows {
		rows[i] = make(Row, len(columns))
	}
	for j, col := range columns {
		if iterable[col] {
			for i, record := range cells {
				if record[j] == "" {
					rows[i][col] = nil
					continue
				}
				list, err := decodeListCell(record[j])
				if err != nil {
					return nil, nil, fmt.Errorf("column %q row %d: %w", col, i, err)
				}
				rows[i][col] = list
			}
			continue
		}
		for i, value := range inferColumn(cells, j) {
			rows[i][col] = value
		}
	}
	return columns, rows, nil
}

// inferColumn types a CSV column: all-int columns become int64, numeric
// columns become float64, anything else stays a string. Empty cells are
// nil either way.
func inferColumn(cells [][]string, j int) []interface{} {
	allInt, allFloat := true, true
	for _, record := range cells {
		cell := record[j]
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			allInt = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			allFloat = false
			break
		}
	}

	out := make([]interface{}, len(cells))
	for i, record := range cells {
		cell := record[j]
		switch {
		case cell == "":
			out[i] = nil
		case allInt:
			n, _ := strconv.ParseInt(cell, 10, 64)
			out[i] = n
		case allFloat:
			f, _ := strconv.ParseFloat(cell, 64)
			out[i] = f
		default:
			out[i] = cell
		}
	}
	return out
}

// decodeListCell parses the textual list form found in CSV cells, such
// as "['TS', 'PR']" or "('TS',)". The first and last characters are
// treated as brackets and single quotes become double quotes before the
// cell is decoded as JSON.
func decodeListCell(cell string) ([]interface{}, error) {
	s := strings.TrimSpace(cell)
	if len(s) < 2 {
		return nil, fmt.Errorf("cell %q is not a list", cell)
	}
	s = "[" + s[1:len(s)-1] + "]"
	s = strings.ReplaceAll(s, "'", `"`)
	if strings.HasSuffix(s, ",]") {
		s = s[:len(s)-2] + "]"
	}
	var out []interface{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("failed to decode list cell %q: %w", cell, err)
	}
	return out, nil
}
