package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/esmcat/catalog"
	"github.com/vegasq/esmcat/dataset"
	"github.com/vegasq/esmcat/store"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  interface{}
	}{
		{"null literal", "null", nil},
		{"true literal", "true", true},
		{"false literal", "false", false},
		{"integer", "42", int64(42)},
		{"float", "2.5", 2.5},
		{"plain string", "historical", "historical"},
		{"pattern stays string", "^co.*ol$", "^co.*ol$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseValue(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseValue(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseQuery(t *testing.T) {
	got, err := parseQuery([]string{
		"experiment=historical, control",
		"variable=TS",
		"variable=PR",
		"version=2,null",
	})
	if err != nil {
		t.Fatalf("parseQuery() error = %v", err)
	}
	want := map[string]interface{}{
		"experiment": []interface{}{"historical", "control"},
		"variable":   []interface{}{"TS", "PR"},
		"version":    []interface{}{int64(2), nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseQuery() = %#v, want %#v", got, want)
	}
}

func TestParseQueryRejectsMalformed(t *testing.T) {
	for _, item := range []string{"experiment", "=historical"} {
		if _, err := parseQuery([]string{item}); err == nil {
			t.Errorf("parseQuery(%q) expected error", item)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" institution , experiment,,")
	if !reflect.DeepEqual(got, []string{"institution", "experiment"}) {
		t.Fatalf("splitList() = %v", got)
	}
	if splitList("") != nil {
		t.Fatal("splitList(\"\") should be nil")
	}
}

func TestDatasetSummary(t *testing.T) {
	ds := dataset.New()
	ds.Vars["ts"] = &dataset.Variable{
		Dims:   []string{"ensemble", "index"},
		Shape:  []int{2, 3},
		Values: make([]interface{}, 6),
	}
	ds.Coords["ensemble"] = []interface{}{int64(1), int64(2)}
	ds.Coords["index"] = []interface{}{int64(0), int64(1), int64(2)}
	ds.Attrs["esmcat_key"] = "NCAR.historical"

	got := datasetSummary("NCAR.historical", ds)
	for _, fragment := range []string{
		"Dataset: NCAR.historical",
		"Dimensions: ensemble=2, index=3",
		"ensemble [2]",
		"ts (ensemble, index) [2 3]",
		"esmcat_key: NCAR.historical",
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("summary missing %q:\n%s", fragment, got)
		}
	}
}

// segment is the row layout of the end to end parquet fixtures.
type segment struct {
	Time int64   `parquet:"time"`
	TS   float64 `parquet:"ts"`
}

// writeSegment creates one parquet asset with test data
func writeSegment(t *testing.T, dir, filename string, rows []segment) string {
	t.Helper()
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	writer := parquet.NewGenericWriter[segment](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}

	return path
}

// writeCatalogFixture saves a two-segment catalog next to its parquet
// assets and returns the descriptor path.
func writeCatalogFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	h1 := writeSegment(t, dir, "h1.parquet", []segment{{Time: 0, TS: 10.0}, {Time: 1, TS: 11.0}})
	h2 := writeSegment(t, dir, "h2.parquet", []segment{{Time: 2, TS: 12.0}, {Time: 3, TS: 13.0}})

	cat := &catalog.Catalog{
		EsmcatVersion: "0.1.0",
		ID:            "cli-test",
		Assets:        catalog.Assets{ColumnName: "path", Format: catalog.FormatParquet},
		AggregationControl: &catalog.AggregationControl{
			VariableColumnName: "variable",
			GroupbyAttrs:       []string{"experiment"},
			Aggregations: []catalog.Aggregation{
				{Type: catalog.AggregationJoinExisting, AttributeName: "segment", Options: map[string]interface{}{"dim": "index"}},
			},
		},
		Index: catalog.NewIndex(
			[]string{"experiment", "segment", "variable", "path"},
			[]catalog.Row{
				{"experiment": "historical", "segment": int64(1), "variable": []interface{}{"ts"}, "path": h1},
				{"experiment": "historical", "segment": int64(2), "variable": []interface{}{"ts"}, "path": h2},
			},
			[]string{"variable"},
		),
	}
	if err := cat.Save("clitest", catalog.WithDirectory(dir)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return filepath.Join(dir, "clitest.json")
}

func TestCatalogEndToEnd(t *testing.T) {
	path := writeCatalogFixture(t)

	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer st.Close()

	if got := st.Keys(); !reflect.DeepEqual(got, []string{"historical"}) {
		t.Fatalf("Keys() = %v, want [historical]", got)
	}

	sub, err := st.Search(map[string]interface{}{"variable": "ts"}, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if sub.Len() != 1 {
		t.Fatalf("Len() = %d after search, want 1", sub.Len())
	}

	ds, err := sub.Get("historical")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	ts, ok := ds.Vars["ts"]
	if !ok {
		t.Fatalf("dataset has no ts variable: %v", ds.VarNames())
	}
	if !reflect.DeepEqual(ts.Shape, []int{4}) {
		t.Fatalf("ts shape = %v, want [4]", ts.Shape)
	}
	if !reflect.DeepEqual(ts.Values, []interface{}{10.0, 11.0, 12.0, 13.0}) {
		t.Fatalf("ts values = %v", ts.Values)
	}
	if !reflect.DeepEqual(ds.Coords["index"], []interface{}{int64(0), int64(1), int64(0), int64(1)}) {
		t.Fatalf("index coord = %v", ds.Coords["index"])
	}
	if got := ds.Attrs["esmcat_key"]; got != "historical" {
		t.Fatalf("esmcat_key = %v", got)
	}

	summary := datasetSummary("historical", ds)
	if !strings.Contains(summary, "ts (index) [4]") {
		t.Fatalf("summary missing variable line:\n%s", summary)
	}
}
