package query

import (
	"fmt"
	"reflect"
	"sort"
)

// SchemaError reports query keys that name no catalog column.
type SchemaError struct {
	Keys    []string
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("query keys %v are not catalog columns %v", e.Keys, e.Columns)
}

// Normalize turns a plain query into its searchable form: scalar values
// are wrapped in single-element lists, slice values are expanded, and
// every key is checked against the catalog columns. The requireAllOn
// columns are validated the same way. Unknown names are reported
// through a *SchemaError.
func Normalize(q map[string]interface{}, columns []string, requireAllOn []string) (map[string][]interface{}, error) {
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}

	var unknown []string
	for key := range q {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	for _, col := range requireAllOn {
		if !known[col] {
			unknown = append(unknown, col)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &SchemaError{Keys: unknown, Columns: columns}
	}

	normalized := make(map[string][]interface{}, len(q))
	for key, value := range q {
		normalized[key] = expandValue(value)
	}
	return normalized, nil
}

// expandValue flattens a query value into the list of alternatives it
// stands for. Slices of any element type expand to their elements;
// everything else, nil included, is a single alternative.
func expandValue(value interface{}) []interface{} {
	if value == nil {
		return []interface{}{nil}
	}
	if values, ok := value.([]interface{}); ok {
		out := make([]interface{}, len(values))
		copy(out, values)
		return out
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []interface{}{value}
}
