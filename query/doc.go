// Package query provides faceted searching over catalog indexes.
//
// A query maps catalog columns to the values a row may take. Values in
// the same column combine with OR, columns combine with AND:
//
//	{"experiment": ["historical", "control"], "variable": ["TS"]}
//
// matches rows whose experiment is historical or control AND whose
// variable includes TS.
//
// # Building Queries
//
// Queries are written with plain values and normalized before
// searching. Normalize wraps scalars, expands slices and validates
// column names against the catalog:
//
//	q, err := query.Normalize(map[string]interface{}{
//	    "experiment": []string{"historical", "control"},
//	    "variable":   "TS",
//	}, cat.Index.Columns(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	results := query.Search(cat.Index, q)
//
// Unknown columns surface as a *SchemaError naming the offending keys.
//
// # Pattern Matching
//
// String values containing an unescaped *, ?, $ or ^ are treated as
// regular expressions and matched unanchored against string columns.
// Compiled *regexp.Regexp values are matched directly, which is also
// the way to opt into flags:
//
//	query.Normalize(map[string]interface{}{
//	    "experiment": "^hist.*",
//	    "variable":   regexp.MustCompile(`(?i)^ts`),
//	}, columns, nil)
//
// Patterns only apply to string columns. In other columns the value is
// compared for equality, and inside list columns patterns match
// elements literally rather than as expressions.
//
// # List Columns
//
// Columns whose cells hold lists (a single asset carrying several
// variables, say) match by membership: the query value must equal one
// of the cell's elements.
//
// # Group Completeness
//
// RequireAllOn keeps only groups that realize every combination of the
// remaining query values. With
//
//	q, _ := query.Normalize(map[string]interface{}{
//	    "experiment": []string{"historical", "rcp85"},
//	}, columns, []string{"source"})
//	results := query.Search(cat.Index, q)
//	results = query.RequireAllOn(results, q, []string{"source"})
//
// a source survives only if it ran both experiments. List columns are
// unpacked element by element before the check, so an asset carrying
// several variables counts each of them.
//
// # Semantics
//
//   - An empty query matches nothing.
//   - Matching rows keep their catalog order.
//   - Numeric comparisons ignore the concrete type: int64(2) matches
//     float64(2).
//   - A nil query value matches null cells.
package query
