package dataset

import "fmt"

// DimensionConflictError reports an attempt to introduce a dimension that
// one of the inputs already uses.
type DimensionConflictError struct {
	Dim string
}

func (e *DimensionConflictError) Error() string {
	return fmt.Sprintf("dimension %q already exists on an input dataset", e.Dim)
}

// StructuralJoinError reports inputs whose variables, shapes or
// coordinates do not line up for a join along a dimension.
type StructuralJoinError struct {
	Dim    string
	Reason string
}

func (e *StructuralJoinError) Error() string {
	return fmt.Sprintf("cannot join along %q: %s", e.Dim, e.Reason)
}

// MergeConflictError reports inputs that disagree on a variable,
// coordinate or dimension length during a merge.
type MergeConflictError struct {
	Name   string
	Reason string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict on %q: %s", e.Name, e.Reason)
}
