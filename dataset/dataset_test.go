package dataset

import (
	"reflect"
	"testing"
)

func TestVariableSize(t *testing.T) {
	tests := []struct {
		name     string
		variable *Variable
		expected int
	}{
		{
			name:     "scalar",
			variable: &Variable{Values: []interface{}{1.0}},
			expected: 1,
		},
		{
			name:     "one dimensional",
			variable: NewVariable("time", []interface{}{1.0, 2.0, 3.0}),
			expected: 3,
		},
		{
			name: "two dimensional",
			variable: &Variable{
				Dims:  []string{"y", "x"},
				Shape: []int{2, 3},
			},
			expected: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.variable.Size(); got != tt.expected {
				t.Errorf("Size() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestDimSizes(t *testing.T) {
	ds := New()
	ds.Vars["X"] = &Variable{
		Dims:   []string{"y", "time"},
		Shape:  []int{2, 3},
		Values: make([]interface{}, 6),
	}
	ds.Coords["time"] = []interface{}{int64(0), int64(1), int64(2)}
	ds.Coords["member"] = []interface{}{int64(1)}

	got := ds.DimSizes()
	want := map[string]int{"y": 2, "time": 3, "member": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DimSizes() = %v, want %v", got, want)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Dataset
		wantErr bool
	}{
		{
			name: "consistent dataset",
			build: func() *Dataset {
				ds := New()
				ds.Vars["TS"] = NewVariable("time", []interface{}{1.0, 2.0})
				ds.Coords["time"] = []interface{}{int64(0), int64(1)}
				return ds
			},
			wantErr: false,
		},
		{
			name: "value count does not match shape",
			build: func() *Dataset {
				ds := New()
				ds.Vars["TS"] = &Variable{
					Dims:   []string{"time"},
					Shape:  []int{3},
					Values: []interface{}{1.0},
				}
				return ds
			},
			wantErr: true,
		},
		{
			name: "variables disagree on dimension length",
			build: func() *Dataset {
				ds := New()
				ds.Vars["TS"] = NewVariable("time", []interface{}{1.0, 2.0})
				ds.Vars["PR"] = NewVariable("time", []interface{}{1.0})
				return ds
			},
			wantErr: true,
		},
		{
			name: "coordinate length does not match dimension",
			build: func() *Dataset {
				ds := New()
				ds.Vars["TS"] = NewVariable("time", []interface{}{1.0, 2.0})
				ds.Coords["time"] = []interface{}{int64(0)}
				return ds
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Check()
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCopyIsIndependent(t *testing.T) {
	ds := New()
	ds.Vars["TS"] = NewVariable("time", []interface{}{1.0})
	ds.Attrs["source"] = "CESM"

	cp := ds.Copy()
	cp.Attrs["source"] = "GFDL"
	cp.Vars["PR"] = NewVariable("time", []interface{}{2.0})

	if ds.Attrs["source"] != "CESM" {
		t.Errorf("original attrs mutated: %v", ds.Attrs["source"])
	}
	if _, ok := ds.Vars["PR"]; ok {
		t.Errorf("original vars mutated")
	}
}
