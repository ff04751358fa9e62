package opener

import (
	"fmt"

	"github.com/vegasq/esmcat/catalog"
	"github.com/vegasq/esmcat/dataset"
)

// Opener loads one asset into a dataset. A non-empty vars list
// restricts which variables are loaded; storage options are passed
// through from the caller untouched.
type Opener interface {
	Open(path string, format catalog.DataFormat, vars []string, storage map[string]interface{}) (*dataset.Dataset, error)
}

// Func adapts a plain function to the Opener interface.
type Func func(path string, format catalog.DataFormat, vars []string, storage map[string]interface{}) (*dataset.Dataset, error)

// Open calls the function.
func (f Func) Open(path string, format catalog.DataFormat, vars []string, storage map[string]interface{}) (*dataset.Dataset, error) {
	return f(path, format, vars, storage)
}

// Registry resolves data formats to their openers.
type Registry struct {
	openers map[catalog.DataFormat]Opener
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{openers: make(map[catalog.DataFormat]Opener)}
}

// DefaultRegistry returns a registry with the built-in parquet opener
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(catalog.FormatParquet, ParquetOpener{})
	return r
}

// Register maps a format to an opener, replacing any previous one.
func (r *Registry) Register(format catalog.DataFormat, o Opener) {
	r.openers[format] = o
}

// Lookup returns the opener registered for a format.
func (r *Registry) Lookup(format catalog.DataFormat) (Opener, bool) {
	o, ok := r.openers[format]
	return o, ok
}

// Open resolves the format and loads the asset with its opener.
func (r *Registry) Open(path string, format catalog.DataFormat, vars []string, storage map[string]interface{}) (*dataset.Dataset, error) {
	o, ok := r.Lookup(format)
	if !ok {
		return nil, fmt.Errorf("no opener registered for format %q", format)
	}
	return o.Open(path, format, vars, storage)
}
