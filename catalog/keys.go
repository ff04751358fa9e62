package catalog

import (
	"fmt"
	"strings"
)

// KeyGroup is one group of assets addressed by a public key.
type KeyGroup struct {
	Key    string
	Values []interface{}
	Rows   []Row
}

// EffectiveGroupbyAttrs returns the grouping columns actually used for
// key construction. Declared groupby attributes are kept after dropping
// all-null columns; when none were declared, none survive, or they cover
// the whole table, every usable table column grounds the grouping
// instead. A column mixing null and non-null values is an error.
func (c *Catalog) EffectiveGroupbyAttrs() ([]string, error) {
	if c.Index == nil {
		return nil, fmt.Errorf("catalog has no index")
	}
	if c.AggregationControl != nil && len(c.AggregationControl.GroupbyAttrs) > 0 {
		attrs, err := prunedGroupCols(c.Index, c.AggregationControl.GroupbyAttrs)
		if err != nil {
			return nil, err
		}
		if len(attrs) > 0 && !sameColumnSet(attrs, c.Index.Columns()) {
			return attrs, nil
		}
	}
	return prunedGroupCols(c.Index, c.Index.Columns())
}

// GroupKeys partitions the table into key groups, sorted by key values.
// sep joins the per-column values into the public key string.
func (c *Catalog) GroupKeys(sep string) ([]KeyGroup, error) {
	attrs, err := c.EffectiveGroupbyAttrs()
	if err != nil {
		return nil, err
	}
	groups, err := c.Index.Groups(attrs...)
	if err != nil {
		return nil, err
	}
	out := make([]KeyGroup, len(groups))
	for i, g := range groups {
		out[i] = KeyGroup{
			Key:    joinKeyValues(g.Values, sep),
			Values: g.Values,
			Rows:   g.Rows,
		}
	}
	return out, nil
}

// KeyTemplate returns the column template from which keys are built.
func (c *Catalog) KeyTemplate(sep string) (string, error) {
	attrs, err := c.EffectiveGroupbyAttrs()
	if err != nil {
		return "", err
	}
	return strings.Join(attrs, sep), nil
}

// prunedGroupCols drops all-null columns from cols. A column mixing null
// and non-null values is rejected, since its rows could neither group
// cleanly nor be dropped wholesale.
func prunedGroupCols(idx *Index, cols []string) ([]string, error) {
	kept := make([]string, 0, len(cols))
	for _, col := range cols {
		nulls, nonNulls := 0, 0
		for _, row := range idx.Rows() {
			if row[col] == nil {
				nulls++
			} else {
				nonNulls++
			}
		}
		if nonNulls == 0 {
			continue
		}
		if nulls > 0 {
			return nil, fmt.Errorf("the data in the %q column should either be all null or there should be no nulls", col)
		}
		kept = append(kept, col)
	}
	return kept, nil
}

func sameColumnSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, col := range a {
		set[col] = true
	}
	for _, col := range b {
		if !set[col] {
			return false
		}
	}
	return true
}

func joinKeyValues(values []interface{}, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, sep)
}
