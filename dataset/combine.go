package dataset

import (
	"fmt"
	"reflect"
	"sort"
)

// Stack concatenates datasets along a new dimension named dim. The new
// dimension becomes the leading dimension of every variable. coords
// supplies one coordinate value per input dataset.
//
// None of the inputs may already use dim. The inputs must otherwise be
// structurally identical: same variable names, dimensions, shapes and
// coordinates. Attributes are folded together with UnionAttrs.
func Stack(dsets []*Dataset, dim string, coords []interface{}) (*Dataset, error) {
	if len(dsets) == 0 {
		return nil, fmt.Errorf("stack along %q: no input datasets", dim)
	}
	if len(coords) != len(dsets) {
		return nil, fmt.Errorf("stack along %q: %d coordinate values for %d datasets", dim, len(coords), len(dsets))
	}
	for _, ds := range dsets {
		if ds.HasDim(dim) {
			return nil, &DimensionConflictError{Dim: dim}
		}
	}

	first := dsets[0]
	for _, ds := range dsets[1:] {
		if err := sameStructure(first, ds, dim); err != nil {
			return nil, err
		}
	}

	out := New()
	for _, name := range first.VarNames() {
		v := first.Vars[name]
		stacked := &Variable{
			Dims:   append([]string{dim}, v.Dims...),
			Shape:  append([]int{len(dsets)}, v.Shape...),
			Values: make([]interface{}, 0, len(dsets)*v.Size()),
		}
		for _, ds := range dsets {
			stacked.Values = append(stacked.Values, ds.Vars[name].Values...)
		}
		out.Vars[name] = stacked
	}
	for d, vals := range first.Coords {
		out.Coords[d] = append([]interface{}{}, vals...)
	}
	out.Coords[dim] = append([]interface{}{}, coords...)
	out.Attrs = UnionAttrs(nil, nil, attrsOf(dsets)...)
	return out, nil
}

// Concat concatenates datasets along a dimension they already share.
// Every input must carry the dimension. Variables that include dim are
// joined along it; variables that do not must be identical across inputs
// and are taken from the first. The dimension's coordinate, when present,
// is concatenated as well. Attributes are folded together with UnionAttrs.
func Concat(dsets []*Dataset, dim string) (*Dataset, error) {
	if len(dsets) == 0 {
		return nil, fmt.Errorf("concat along %q: no input datasets", dim)
	}
	for _, ds := range dsets {
		if !ds.HasDim(dim) {
			return nil, &StructuralJoinError{Dim: dim, Reason: "an input dataset does not have the dimension"}
		}
	}

	first := dsets[0]
	names := first.VarNames()
	for _, ds := range dsets[1:] {
		if !reflect.DeepEqual(names, ds.VarNames()) {
			return nil, &StructuralJoinError{Dim: dim, Reason: "variable names differ across inputs"}
		}
	}

	out := New()
	for _, name := range names {
		v := first.Vars[name]
		if !v.HasDim(dim) {
			for _, ds := range dsets[1:] {
				if ds.Vars[name].HasDim(dim) {
					return nil, &StructuralJoinError{Dim: dim, Reason: fmt.Sprintf("variable %q uses the dimension in some inputs only", name)}
				}
				if !v.Equal(ds.Vars[name]) {
					return nil, &StructuralJoinError{Dim: dim, Reason: fmt.Sprintf("variable %q differs across inputs and does not use the dimension", name)}
				}
			}
			out.Vars[name] = v.Copy()
			continue
		}

		parts := make([]*Variable, len(dsets))
		for i, ds := range dsets {
			part := ds.Vars[name]
			if !reflect.DeepEqual(v.Dims, part.Dims) {
				return nil, &StructuralJoinError{Dim: dim, Reason: fmt.Sprintf("variable %q has different dimensions across inputs", name)}
			}
			axis := v.axis(dim)
			for j := range v.Shape {
				if j != axis && v.Shape[j] != part.Shape[j] {
					return nil, &StructuralJoinError{Dim: dim, Reason: fmt.Sprintf("variable %q has incompatible shapes across inputs", name)}
				}
			}
			parts[i] = part
		}
		out.Vars[name] = concatVariables(parts, v.axis(dim))
	}

	if err := concatCoords(out, dsets, dim); err != nil {
		return nil, err
	}
	out.Attrs = UnionAttrs(nil, nil, attrsOf(dsets)...)
	return out, nil
}

// Merge combines datasets carrying different variables into one dataset.
// Colliding variable names must refer to identical variables. Dimension
// lengths and coordinate values must agree everywhere. Attributes are
// folded together with UnionAttrs.
func Merge(dsets []*Dataset) (*Dataset, error) {
	if len(dsets) == 0 {
		return nil, fmt.Errorf("merge: no input datasets")
	}

	out := New()
	sizes := make(map[string]int)
	for _, ds := range dsets {
		for dim, n := range ds.DimSizes() {
			if prev, ok := sizes[dim]; ok && prev != n {
				return nil, &MergeConflictError{Name: dim, Reason: fmt.Sprintf("dimension length %d does not match %d", n, prev)}
			}
			sizes[dim] = n
		}
		for _, name := range ds.VarNames() {
			v := ds.Vars[name]
			if prev, ok := out.Vars[name]; ok {
				if !prev.Equal(v) {
					return nil, &MergeConflictError{Name: name, Reason: "variable values differ across inputs"}
				}
				continue
			}
			out.Vars[name] = v.Copy()
		}
		for dim, vals := range ds.Coords {
			if prev, ok := out.Coords[dim]; ok {
				if !reflect.DeepEqual(prev, vals) {
					return nil, &MergeConflictError{Name: dim, Reason: "coordinate values differ across inputs"}
				}
				continue
			}
			out.Coords[dim] = append([]interface{}{}, vals...)
		}
	}
	out.Attrs = UnionAttrs(nil, nil, attrsOf(dsets)...)
	return out, nil
}

// sameStructure verifies that a and b agree on variable names, dimensions,
// shapes and coordinates. dim names the join for error reporting.
func sameStructure(a, b *Dataset, dim string) error {
	if !reflect.DeepEqual(a.VarNames(), b.VarNames()) {
		return &StructuralJoinError{Dim: dim, Reason: "variable names differ across inputs"}
	}
	for _, name := range a.VarNames() {
		va, vb := a.Vars[name], b.Vars[name]
		if !reflect.DeepEqual(va.Dims, vb.Dims) || !reflect.DeepEqual(va.Shape, vb.Shape) {
			return &StructuralJoinError{Dim: dim, Reason: fmt.Sprintf("variable %q has a different layout across inputs", name)}
		}
	}
	if len(a.Coords) != len(b.Coords) {
		return &StructuralJoinError{Dim: dim, Reason: "coordinates differ across inputs"}
	}
	for d, vals := range a.Coords {
		if !reflect.DeepEqual(vals, b.Coords[d]) {
			return &StructuralJoinError{Dim: dim, Reason: fmt.Sprintf("coordinate %q differs across inputs", d)}
		}
	}
	return nil
}

// concatVariables joins variables along the given axis. All inputs must
// have identical dimensions and shapes outside the axis; the caller
// validates this.
func concatVariables(vars []*Variable, axis int) *Variable {
	first := vars[0]
	total := 0
	for _, v := range vars {
		total += v.Shape[axis]
	}
	outer, inner := 1, 1
	for _, s := range first.Shape[:axis] {
		outer *= s
	}
	for _, s := range first.Shape[axis+1:] {
		inner *= s
	}

	shape := append([]int{}, first.Shape...)
	shape[axis] = total
	values := make([]interface{}, 0, outer*total*inner)
	for o := 0; o < outer; o++ {
		for _, v := range vars {
			block := v.Shape[axis] * inner
			values = append(values, v.Values[o*block:(o+1)*block]...)
		}
	}
	return &Variable{
		Dims:   append([]string{}, first.Dims...),
		Shape:  shape,
		Values: values,
	}
}

// concatCoords fills out's coordinates for a concat along dim: the dim
// coordinate is concatenated when every input carries it, all other
// coordinates must agree and are taken from the first input.
func concatCoords(out *Dataset, dsets []*Dataset, dim string) error {
	first := dsets[0]
	dims := make([]string, 0, len(first.Coords))
	for d := range first.Coords {
		dims = append(dims, d)
	}
	sort.Strings(dims)

	for _, d := range dims {
		vals := first.Coords[d]
		if d == dim {
			joined := append([]interface{}{}, vals...)
			for _, ds := range dsets[1:] {
				other, ok := ds.Coords[dim]
				if !ok {
					return &StructuralJoinError{Dim: dim, Reason: "dimension coordinate present in some inputs only"}
				}
				joined = append(joined, other...)
			}
			out.Coords[dim] = joined
			continue
		}
		for _, ds := range dsets[1:] {
			if !reflect.DeepEqual(vals, ds.Coords[d]) {
				return &StructuralJoinError{Dim: dim, Reason: fmt.Sprintf("coordinate %q differs across inputs", d)}
			}
		}
		out.Coords[d] = append([]interface{}{}, vals...)
	}
	for _, ds := range dsets[1:] {
		if _, ok := ds.Coords[dim]; ok {
			if _, ok := first.Coords[dim]; !ok {
				return &StructuralJoinError{Dim: dim, Reason: "dimension coordinate present in some inputs only"}
			}
		}
	}
	return nil
}

// attrsOf collects the attribute maps of all inputs in order.
func attrsOf(dsets []*Dataset) []map[string]interface{} {
	attrs := make([]map[string]interface{}, len(dsets))
	for i, ds := range dsets {
		attrs[i] = ds.Attrs
	}
	return attrs
}
