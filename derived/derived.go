package derived

import (
	"fmt"
	"reflect"

	"github.com/vegasq/esmcat/dataset"
)

// Func computes a derived variable, returning the updated dataset.
type Func func(*dataset.Dataset) (*dataset.Dataset, error)

// DerivedVariable declares one derivable variable: the name it appears
// under, the catalog query locating its inputs, and the function that
// computes it. PreferDerived lets the derivation replace a variable an
// asset already carries.
type DerivedVariable struct {
	Variable      string
	Query         map[string]interface{}
	Func          Func
	PreferDerived bool
}

// DependentVariables lists the variables the derivation needs, read
// from the query's variable column.
func (dv *DerivedVariable) DependentVariables(variableColumn string) []string {
	values := valueList(dv.Query[variableColumn])
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// valueList flattens a raw query value the same way query
// normalization does: slices expand, scalars wrap, nil is empty.
func valueList(value interface{}) []interface{} {
	if value == nil {
		return nil
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

// Registry keeps derived variables in registration order.
type Registry struct {
	names   []string
	entries map[string]DerivedVariable
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]DerivedVariable)}
}

// Register adds a derived variable. Re-registering a name replaces the
// entry but keeps its position.
func (r *Registry) Register(dv DerivedVariable) error {
	if dv.Variable == "" {
		return fmt.Errorf("derived variable needs a name")
	}
	if dv.Func == nil {
		return fmt.Errorf("derived variable %q needs a derivation function", dv.Variable)
	}
	if len(dv.Query) == 0 {
		return fmt.Errorf("derived variable %q needs a query locating its inputs", dv.Variable)
	}
	if _, exists := r.entries[dv.Variable]; !exists {
		r.names = append(r.names, dv.Variable)
	}
	r.entries[dv.Variable] = dv
	return nil
}

// Len returns the number of registered variables.
func (r *Registry) Len() int {
	return len(r.names)
}

// Keys returns the registered variable names in registration order.
func (r *Registry) Keys() []string {
	return append([]string{}, r.names...)
}

// Items returns the entries in registration order.
func (r *Registry) Items() []DerivedVariable {
	out := make([]DerivedVariable, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.entries[name])
	}
	return out
}

// Get returns the entry registered under a name.
func (r *Registry) Get(name string) (DerivedVariable, bool) {
	dv, ok := r.entries[name]
	return dv, ok
}

// Search returns the sub-registry of entries whose variable is among
// the given names.
func (r *Registry) Search(variables []string) *Registry {
	want := make(map[string]bool, len(variables))
	for _, v := range variables {
		want[v] = true
	}
	out := NewRegistry()
	for _, name := range r.names {
		if want[name] {
			out.names = append(out.names, name)
			out.entries[name] = r.entries[name]
		}
	}
	return out
}

// Validate checks the registry against a catalog layout: derivation
// needs a variable column, every entry's query must name variables in
// that column, and query keys must be catalog columns.
func (r *Registry) Validate(variableColumn string, columns []string) error {
	if r.Len() == 0 {
		return nil
	}
	if variableColumn == "" {
		return fmt.Errorf("derived variables need a catalog with aggregation control naming the variable column")
	}
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}
	for _, dv := range r.Items() {
		if len(valueList(dv.Query[variableColumn])) == 0 {
			return fmt.Errorf("derived variable %q: query does not name any %q values", dv.Variable, variableColumn)
		}
		for key := range dv.Query {
			if !known[key] {
				return fmt.Errorf("derived variable %q: query key %q is not a catalog column", dv.Variable, key)
			}
		}
	}
	return nil
}

// Apply runs every applicable derivation over the dataset. An entry
// applies when all its dependent variables are present and its variable
// either is absent or PreferDerived is set. With skipOnError, a failed
// derivation leaves the dataset as it was; otherwise the first failure
// returns.
func (r *Registry) Apply(ds *dataset.Dataset, variableColumn string, skipOnError bool) (*dataset.Dataset, error) {
	for _, dv := range r.Items() {
		if !hasVariables(ds, dv.DependentVariables(variableColumn)) {
			continue
		}
		if hasVariable(ds, dv.Variable) && !dv.PreferDerived {
			continue
		}
		updated, err := dv.Func(ds)
		if err != nil {
			if skipOnError {
				continue
			}
			return nil, fmt.Errorf("failed to derive variable %q: %w", dv.Variable, err)
		}
		ds = updated
	}
	return ds, nil
}

func hasVariables(ds *dataset.Dataset, names []string) bool {
	for _, name := range names {
		if !hasVariable(ds, name) {
			return false
		}
	}
	return true
}

// hasVariable looks among data variables and coordinates, which is how
// a dataset names things.
func hasVariable(ds *dataset.Dataset, name string) bool {
	if _, ok := ds.Vars[name]; ok {
		return true
	}
	_, ok := ds.Coords[name]
	return ok
}
