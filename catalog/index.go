package catalog

import (
	"fmt"
	"sort"
)

// Row is one record of the catalog table.
type Row = map[string]interface{}

// Index is the loaded catalog table: an ordered set of columns and rows,
// plus bookkeeping about which columns hold lists and which hold strings.
// The bookkeeping follows the rows through Subset, the way dataframe
// dtypes survive filtering.
type Index struct {
	columns  []string
	rows     []Row
	iterable map[string]bool
	stringy  map[string]bool
}

// NewIndex builds an index over the given rows. Columns listed in
// iterableColumns are treated as list-valued; columns whose first
// non-null cell is a list are picked up automatically.
func NewIndex(columns []string, rows []Row, iterableColumns []string) *Index {
	x := &Index{
		columns:  append([]string{}, columns...),
		rows:     rows,
		iterable: make(map[string]bool),
		stringy:  make(map[string]bool),
	}
	for _, col := range iterableColumns {
		x.iterable[col] = true
	}
	for _, col := range x.columns {
		if !x.iterable[col] {
			if cell, ok := firstNonNull(rows, col); ok {
				if _, isList := cell.([]interface{}); isList {
					x.iterable[col] = true
				}
			}
		}
		for _, row := range rows {
			if _, ok := row[col].(string); ok {
				x.stringy[col] = true
				break
			}
		}
	}
	return x
}

func firstNonNull(rows []Row, col string) (interface{}, bool) {
	for _, row := range rows {
		if v := row[col]; v != nil {
			return v, true
		}
	}
	return nil, false
}

// Subset returns an index over the given rows with the same columns and
// column classifications.
func (x *Index) Subset(rows []Row) *Index {
	return &Index{
		columns:  x.columns,
		rows:     rows,
		iterable: x.iterable,
		stringy:  x.stringy,
	}
}

// Columns returns the table columns in order.
func (x *Index) Columns() []string {
	return x.columns
}

// Rows returns the table rows in order.
func (x *Index) Rows() []Row {
	return x.rows
}

// Len returns the number of rows.
func (x *Index) Len() int {
	return len(x.rows)
}

// HasColumn reports whether the table has the named column.
func (x *Index) HasColumn(col string) bool {
	for _, c := range x.columns {
		if c == col {
			return true
		}
	}
	return false
}

// HasIterable reports whether the column holds lists.
func (x *Index) HasIterable(col string) bool {
	return x.iterable[col]
}

// IterableColumns returns the list-valued columns in sorted order.
func (x *Index) IterableColumns() []string {
	cols := make([]string, 0, len(x.iterable))
	for col := range x.iterable {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// StringColumn reports whether the column holds strings. Mixed columns
// count as string columns as long as one cell is a string.
func (x *Index) StringColumn(col string) bool {
	return x.stringy[col]
}

// Unique returns the distinct values of each requested column, in first
// appearance order. Null cells are skipped and cells holding lists
// contribute their elements. With no columns given, every table column
// is summarized.
func (x *Index) Unique(columns ...string) (map[string][]interface{}, error) {
	if len(columns) == 0 {
		columns = x.columns
	}
	out := make(map[string][]interface{}, len(columns))
	for _, col := range columns {
		if !x.HasColumn(col) {
			return nil, fmt.Errorf("column %q not in table columns %v", col, x.columns)
		}
		seen := make(map[string]bool)
		values := []interface{}{}
		appendUnique := func(v interface{}) {
			key := EncodeValues([]interface{}{v})
			if !seen[key] {
				seen[key] = true
				values = append(values, v)
			}
		}
		for _, row := range x.rows {
			cell := row[col]
			if cell == nil {
				continue
			}
			if items, ok := cell.([]interface{}); ok {
				for _, item := range items {
					appendUnique(item)
				}
				continue
			}
			appendUnique(cell)
		}
		out[col] = values
	}
	return out, nil
}

// Nunique returns the number of distinct values per requested column.
func (x *Index) Nunique(columns ...string) (map[string]int, error) {
	unique, err := x.Unique(columns...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(unique))
	for col, values := range unique {
		out[col] = len(values)
	}
	return out, nil
}

// RowGroup is a set of rows sharing values in the grouping columns.
type RowGroup struct {
	Values []interface{}
	Rows   []Row
}

// Groups partitions the index rows by the given columns. It mirrors a
// dataframe group-by: rows with a null in any grouping column are
// dropped, groups come back sorted by their key values and rows keep
// their original order inside each group.
func (x *Index) Groups(cols ...string) ([]RowGroup, error) {
	for _, col := range cols {
		if !x.HasColumn(col) {
			return nil, fmt.Errorf("column %q not in table columns %v", col, x.columns)
		}
	}
	return GroupRows(x.rows, cols), nil
}

// GroupRows partitions rows by their values in the given columns. Rows
// with a null in any grouping column are dropped and groups are sorted
// by their key values.
func GroupRows(rows []Row, cols []string) []RowGroup {
	groups := make(map[string]*RowGroup)
	order := []string{}

	for _, row := range rows {
		values := make([]interface{}, len(cols))
		hasNull := false
		for i, col := range cols {
			values[i] = row[col]
			if values[i] == nil {
				hasNull = true
				break
			}
		}
		if hasNull {
			continue
		}

		key := EncodeValues(values)
		if group, exists := groups[key]; exists {
			group.Rows = append(group.Rows, row)
		} else {
			groups[key] = &RowGroup{Values: values, Rows: []Row{row}}
			order = append(order, key)
		}
	}

	out := make([]RowGroup, 0, len(groups))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	sort.Slice(out, func(i, j int) bool {
		return compareValueTuples(out[i].Values, out[j].Values) < 0
	})
	return out
}
