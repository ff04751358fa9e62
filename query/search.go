package query

import (
	"regexp"
	"sort"

	"github.com/vegasq/esmcat/catalog"
)

// Search filters the index down to the rows matching a normalized
// query. Values in the same column combine with OR, columns combine
// with AND, and matching rows keep their original order. An empty query
// matches nothing.
//
// List columns match by membership, string columns match patterns as
// regular expressions, everything else compares for equality.
func Search(idx *catalog.Index, q map[string][]interface{}) *catalog.Index {
	if len(q) == 0 {
		return idx.Subset(nil)
	}

	rows := idx.Rows()
	mask := make([]bool, len(rows))
	for i := range mask {
		mask[i] = true
	}

	for column, values := range q {
		iterable := idx.HasIterable(column)
		stringy := idx.StringColumn(column)

		local := make([]bool, len(rows))
		for _, value := range values {
			var re *regexp.Regexp
			if stringy && !iterable {
				re = compilePattern(value)
			}
			for i, row := range rows {
				if local[i] {
					continue
				}
				cell := row[column]
				switch {
				case iterable:
					local[i] = listContains(cell, value)
				case re != nil:
					s, ok := cell.(string)
					local[i] = ok && re.MatchString(s)
				default:
					local[i] = valuesEqual(cell, value)
				}
			}
		}
		for i := range mask {
			mask[i] = mask[i] && local[i]
		}
	}

	matched := make([]catalog.Row, 0)
	for i, row := range rows {
		if mask[i] {
			matched = append(matched, row)
		}
	}
	return idx.Subset(matched)
}

// listContains reports whether a list cell has an element equal to the
// query value. Null and non-list cells match nothing.
func listContains(cell, value interface{}) bool {
	list, ok := cell.([]interface{})
	if !ok {
		return false
	}
	for _, element := range list {
		if valuesEqual(element, value) {
			return true
		}
	}
	return false
}

// RequireAllOn keeps only the groups of rows that realize every
// combination of the remaining query values. Rows are grouped by the
// requireAllOn columns; those columns are dropped from the query and
// the rest forms a set of required value tuples. A group survives when
// its rows, with list cells unpacked element by element, cover all of
// them.
//
// Groups come back in sorted key order with their rows in original
// order, and rows with a null in a grouping column are dropped. With no
// query keys left after the drop, every group survives.
func RequireAllOn(results *catalog.Index, q map[string][]interface{}, requireAllOn []string) *catalog.Index {
	remaining := make(map[string][]interface{}, len(q))
	for key, values := range q {
		remaining[key] = values
	}
	for _, col := range requireAllOn {
		delete(remaining, col)
	}

	keys := make([]string, 0, len(remaining))
	for key := range remaining {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	condition := make(map[string]bool)
	for _, combo := range cartesian(remaining, keys) {
		condition[catalog.EncodeValues(combo)] = true
	}

	kept := make([]catalog.Row, 0)
	for _, group := range catalog.GroupRows(results.Rows(), requireAllOn) {
		realized := make(map[string]bool)
		for _, row := range group.Rows {
			for _, tuple := range unpackRow(results, row, keys) {
				realized[catalog.EncodeValues(tuple)] = true
			}
		}
		if coversAll(realized, condition) {
			kept = append(kept, group.Rows...)
		}
	}
	return results.Subset(kept)
}

// cartesian enumerates the product of the query value lists in key
// order. No keys yields a single empty combination; a key with no
// values yields none at all.
func cartesian(q map[string][]interface{}, keys []string) [][]interface{} {
	combos := [][]interface{}{{}}
	for _, key := range keys {
		next := make([][]interface{}, 0, len(combos)*len(q[key]))
		for _, combo := range combos {
			for _, value := range q[key] {
				extended := make([]interface{}, len(combo), len(combo)+1)
				copy(extended, combo)
				next = append(next, append(extended, value))
			}
		}
		combos = next
	}
	return combos
}

// unpackRow lists the value tuples a row realizes over the given keys.
// List cells expand to one tuple per element, several list cells
// multiply out, and an empty list contributes a null.
func unpackRow(idx *catalog.Index, row catalog.Row, keys []string) [][]interface{} {
	tuples := [][]interface{}{{}}
	for _, key := range keys {
		cell := row[key]
		alternatives := []interface{}{cell}
		if list, ok := cell.([]interface{}); ok && idx.HasIterable(key) {
			if len(list) == 0 {
				alternatives = []interface{}{nil}
			} else {
				alternatives = list
			}
		}

		next := make([][]interface{}, 0, len(tuples)*len(alternatives))
		for _, tuple := range tuples {
			for _, alt := range alternatives {
				extended := make([]interface{}, len(tuple), len(tuple)+1)
				copy(extended, tuple)
				next = append(next, append(extended, alt))
			}
		}
		tuples = next
	}
	return tuples
}

// coversAll reports whether every required tuple was realized.
func coversAll(realized, condition map[string]bool) bool {
	for key := range condition {
		if !realized[key] {
			return false
		}
	}
	return true
}
