package dataset

import (
	"fmt"
	"reflect"
	"sort"
)

// Variable is an n-dimensional array with named dimensions. Values are
// stored flattened in row-major order, so len(Values) must equal the
// product of Shape. A scalar variable has nil Dims and Shape and a single
// value.
type Variable struct {
	Dims   []string
	Shape  []int
	Values []interface{}
}

// NewVariable returns a one-dimensional variable over the named dimension.
func NewVariable(dim string, values []interface{}) *Variable {
	return &Variable{
		Dims:   []string{dim},
		Shape:  []int{len(values)},
		Values: values,
	}
}

// Size returns the number of elements implied by Shape.
func (v *Variable) Size() int {
	n := 1
	for _, s := range v.Shape {
		n *= s
	}
	return n
}

// HasDim reports whether the variable uses the named dimension.
func (v *Variable) HasDim(dim string) bool {
	return v.axis(dim) >= 0
}

// axis returns the position of dim in the variable's dimensions, or -1.
func (v *Variable) axis(dim string) int {
	for i, d := range v.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// Equal reports whether two variables have the same dimensions, shape and
// values.
func (v *Variable) Equal(o *Variable) bool {
	if v == nil || o == nil {
		return v == o
	}
	return reflect.DeepEqual(v.Dims, o.Dims) &&
		reflect.DeepEqual(v.Shape, o.Shape) &&
		reflect.DeepEqual(v.Values, o.Values)
}

// Copy returns a variable with fresh dimension, shape and value slices.
// The values themselves are not cloned.
func (v *Variable) Copy() *Variable {
	out := &Variable{}
	if v.Dims != nil {
		out.Dims = append([]string{}, v.Dims...)
	}
	if v.Shape != nil {
		out.Shape = append([]int{}, v.Shape...)
	}
	if v.Values != nil {
		out.Values = append([]interface{}{}, v.Values...)
	}
	return out
}

// Dataset is a collection of named variables that share dimensions, plus
// one-dimensional coordinates keyed by dimension name and a free-form
// attribute map.
type Dataset struct {
	Vars   map[string]*Variable
	Coords map[string][]interface{}
	Attrs  map[string]interface{}
}

// New returns an empty dataset with initialized maps.
func New() *Dataset {
	return &Dataset{
		Vars:   make(map[string]*Variable),
		Coords: make(map[string][]interface{}),
		Attrs:  make(map[string]interface{}),
	}
}

// Copy returns a dataset with fresh maps. Variables are copied, attribute
// values and coordinate values are shared.
func (d *Dataset) Copy() *Dataset {
	out := New()
	for name, v := range d.Vars {
		out.Vars[name] = v.Copy()
	}
	for dim, vals := range d.Coords {
		out.Coords[dim] = append([]interface{}{}, vals...)
	}
	for k, v := range d.Attrs {
		out.Attrs[k] = v
	}
	return out
}

// VarNames returns the variable names in sorted order.
func (d *Dataset) VarNames() []string {
	names := make([]string, 0, len(d.Vars))
	for name := range d.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasDim reports whether any variable or coordinate uses the named
// dimension.
func (d *Dataset) HasDim(dim string) bool {
	if _, ok := d.Coords[dim]; ok {
		return true
	}
	for _, v := range d.Vars {
		if v.HasDim(dim) {
			return true
		}
	}
	return false
}

// DimSizes returns the length of every dimension used by the dataset.
// Variables are visited in sorted name order and the first observed length
// wins; Check reports conflicting lengths.
func (d *Dataset) DimSizes() map[string]int {
	sizes := make(map[string]int)
	for _, name := range d.VarNames() {
		v := d.Vars[name]
		for i, dim := range v.Dims {
			if _, ok := sizes[dim]; !ok {
				sizes[dim] = v.Shape[i]
			}
		}
	}
	dims := make([]string, 0, len(d.Coords))
	for dim := range d.Coords {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	for _, dim := range dims {
		if _, ok := sizes[dim]; !ok {
			sizes[dim] = len(d.Coords[dim])
		}
	}
	return sizes
}

// Check verifies that variable shapes, dimension lengths and coordinate
// lengths are mutually consistent.
func (d *Dataset) Check() error {
	sizes := make(map[string]int)
	for _, name := range d.VarNames() {
		v := d.Vars[name]
		if len(v.Dims) != len(v.Shape) {
			return fmt.Errorf("variable %q has %d dims but %d shape entries", name, len(v.Dims), len(v.Shape))
		}
		if v.Size() != len(v.Values) {
			return fmt.Errorf("variable %q has %d values, shape implies %d", name, len(v.Values), v.Size())
		}
		for i, dim := range v.Dims {
			if prev, ok := sizes[dim]; ok && prev != v.Shape[i] {
				return fmt.Errorf("variable %q sets dimension %q to %d, previously %d", name, dim, v.Shape[i], prev)
			}
			sizes[dim] = v.Shape[i]
		}
	}
	for dim, vals := range d.Coords {
		if prev, ok := sizes[dim]; ok && prev != len(vals) {
			return fmt.Errorf("coordinate %q has %d values, dimension has length %d", dim, len(vals), prev)
		}
	}
	return nil
}
