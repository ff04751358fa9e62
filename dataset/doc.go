// Package dataset provides an in-memory, dimension-labelled array container
// and the combinators used to assemble catalog assets into single datasets.
//
// A Dataset holds named variables. Each Variable is an n-dimensional array
// with named dimensions, stored flattened in row-major order. Datasets also
// carry one-dimensional coordinates (one list of values per dimension) and a
// free-form attribute map.
//
// # Combinators
//
// Three combinators cover the supported aggregation styles:
//
//   - Stack: concatenate datasets along a brand new dimension
//   - Concat: concatenate datasets along a dimension they already share
//   - Merge: combine datasets carrying different variables into one
//
// # Basic Usage
//
// Build a dataset by hand:
//
//	ds := dataset.New()
//	ds.Vars["TS"] = dataset.NewVariable("time", []interface{}{280.1, 280.4})
//	ds.Coords["time"] = []interface{}{0, 1}
//
// Stack two datasets along a new "member" dimension:
//
//	combined, err := dataset.Stack([]*dataset.Dataset{a, b}, "member", []interface{}{1, 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Types
//
// The combinators report incompatible inputs with typed errors:
//
//   - DimensionConflictError: the new dimension already exists
//   - StructuralJoinError: shapes, dimensions or coordinates do not line up
//   - MergeConflictError: two datasets disagree on a variable or dimension
//
// All three work with errors.As, so callers can react to the failure class
// without string matching.
package dataset
