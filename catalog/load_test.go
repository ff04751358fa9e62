package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
)

const dictDescriptor = `{
  "esmcat_version": "0.1.0",
  "id": "test-cat",
  "description": "test catalog",
  "attributes": [
    {"column_name": "component"},
    {"column_name": "experiment"},
    {"column_name": "variable"}
  ],
  "assets": {"column_name": "path", "format": "netcdf"},
  "aggregation_control": {
    "variable_column_name": "variable",
    "groupby_attrs": ["component", "experiment"],
    "aggregations": [
      {"type": "union", "attribute_name": "variable"}
    ]
  },
  "catalog_dict": [
    {"component": "ocn", "experiment": "hist", "variable": ["TS", "PR"], "ensemble": 1, "path": "a.nc"},
    {"component": "ocn", "experiment": "ctrl", "variable": ["TS"], "ensemble": 2, "path": "b.nc"}
  ]
}`

func writeFileT(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoadDict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.json")
	writeFileT(t, path, dictDescriptor)

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantCols := []string{"component", "experiment", "variable", "ensemble", "path"}
	if !reflect.DeepEqual(cat.Index.Columns(), wantCols) {
		t.Errorf("columns = %v, want %v", cat.Index.Columns(), wantCols)
	}
	if cat.Index.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cat.Index.Len())
	}
	if !cat.Index.HasIterable("variable") {
		t.Errorf("variable should be iterable")
	}
	if !cat.HasMultipleVariableAssets() {
		t.Errorf("expected multiple variable assets")
	}
	// JSON numbers come back as float64
	if cat.Index.Rows()[0]["ensemble"] != float64(1) {
		t.Errorf("ensemble = %#v, want float64(1)", cat.Index.Rows()[0]["ensemble"])
	}
}

func TestLoadUnknownColumnReference(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.json")
	descriptor := strings.Replace(dictDescriptor, `"groupby_attrs": ["component", "experiment"]`,
		`"groupby_attrs": ["component", "missing"]`, 1)
	writeFileT(t, path, descriptor)

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("Load() error = %v, want unknown column error", err)
	}
}

const csvDescriptor = `{
  "esmcat_version": "0.1.0",
  "id": "test-cat",
  "attributes": [
    {"column_name": "experiment"},
    {"column_name": "variable"}
  ],
  "assets": {"column_name": "path", "format": "netcdf"},
  "catalog_file": "table.csv"
}`

const csvTable = `experiment,variable,ensemble,score,path
hist,"['TS', 'PR']",1,0.5,a.nc
ctrl,"['TS']",2,1.5,b.nc
rcp85,"['O2']",3,,c.nc
`

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	writeFileT(t, filepath.Join(dir, "cat.json"), csvDescriptor)
	writeFileT(t, filepath.Join(dir, "table.csv"), csvTable)

	cat, err := Load(filepath.Join(dir, "cat.json"), WithIterableColumns("variable"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rows := cat.Index.Rows()
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !reflect.DeepEqual(rows[0]["variable"], []interface{}{"TS", "PR"}) {
		t.Errorf("variable = %#v, want decoded list", rows[0]["variable"])
	}
	if rows[0]["ensemble"] != int64(1) {
		t.Errorf("ensemble = %#v, want int64(1)", rows[0]["ensemble"])
	}
	if rows[1]["score"] != 1.5 {
		t.Errorf("score = %#v, want 1.5", rows[1]["score"])
	}
	// empty cells are nulls
	if rows[2]["score"] != nil {
		t.Errorf("score = %#v, want nil", rows[2]["score"])
	}
	if !cat.Index.StringColumn("experiment") {
		t.Errorf("experiment should be a string column")
	}
	if cat.Index.StringColumn("ensemble") {
		t.Errorf("ensemble should be numeric")
	}
}

func TestLoadParquetTable(t *testing.T) {
	type asset struct {
		Experiment string  `parquet:"experiment"`
		Variable   string  `parquet:"variable"`
		Score      float64 `parquet:"score"`
		Path       string  `parquet:"path"`
	}

	dir := t.TempDir()
	tablePath := filepath.Join(dir, "table.parquet")
	f, err := os.Create(tablePath)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	writer := parquet.NewGenericWriter[asset](f)
	_, err = writer.Write([]asset{
		{Experiment: "hist", Variable: "TS", Score: 0.5, Path: "a.nc"},
		{Experiment: "ctrl", Variable: "PR", Score: 1.5, Path: "b.nc"},
	})
	if err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}

	descriptor := strings.Replace(csvDescriptor, "table.csv", "table.parquet", 1)
	writeFileT(t, filepath.Join(dir, "cat.json"), descriptor)

	cat, err := Load(filepath.Join(dir, "cat.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.Index.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cat.Index.Len())
	}
	if cat.Index.Rows()[0]["experiment"] != "hist" {
		t.Errorf("experiment = %#v, want hist", cat.Index.Rows()[0]["experiment"])
	}
	if cat.Index.Rows()[1]["score"] != 1.5 {
		t.Errorf("score = %#v, want 1.5", cat.Index.Rows()[1]["score"])
	}
}

func TestSaveRoundTrip(t *testing.T) {
	rows := []Row{
		{"experiment": "hist", "variable": []interface{}{"TS", "PR"}, "ensemble": int64(1), "path": "a.nc"},
		{"experiment": "ctrl", "variable": []interface{}{"TS"}, "ensemble": int64(2), "path": "b.nc"},
	}
	c := &Catalog{
		EsmcatVersion: "0.1.0",
		Assets:        Assets{ColumnName: "path", Format: FormatNetCDF},
		Attributes: []Attribute{
			{ColumnName: "experiment"},
			{ColumnName: "variable"},
		},
	}
	c.Index = NewIndex([]string{"experiment", "variable", "ensemble", "path"}, rows, nil)

	tests := []struct {
		name string
		opts []SaveOption
		file string
	}{
		{
			name: "dict",
			opts: nil,
		},
		{
			name: "file",
			opts: []SaveOption{WithCatalogType("file")},
			file: "demo.csv",
		},
		{
			name: "compressed file",
			opts: []SaveOption{WithCatalogType("file"), WithCompression()},
			file: "demo.csv.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := append([]SaveOption{WithDirectory(dir)}, tt.opts...)
			if err := c.Save("demo", opts...); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if tt.file != "" {
				if _, err := os.Stat(filepath.Join(dir, tt.file)); err != nil {
					t.Fatalf("expected table file %s: %v", tt.file, err)
				}
			}

			loaded, err := Load(filepath.Join(dir, "demo.json"), WithIterableColumns("variable"))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if loaded.ID != "demo" {
				t.Errorf("ID = %q, want demo", loaded.ID)
			}
			if loaded.LastUpdated == "" {
				t.Errorf("LastUpdated not stamped")
			}
			if loaded.Index.Len() != 2 {
				t.Fatalf("Len() = %d, want 2", loaded.Index.Len())
			}
			got := loaded.Index.Rows()[0]
			if !reflect.DeepEqual(got["variable"], []interface{}{"TS", "PR"}) {
				t.Errorf("variable = %#v, want list round trip", got["variable"])
			}
			if got["experiment"] != "hist" {
				t.Errorf("experiment = %#v, want hist", got["experiment"])
			}
		})
	}
}

func TestSaveGeneratesID(t *testing.T) {
	c := &Catalog{
		EsmcatVersion: "0.1.0",
		Assets:        Assets{ColumnName: "path", Format: FormatNetCDF},
	}
	c.Index = NewIndex([]string{"path"}, []Row{{"path": "a.nc"}}, nil)

	dir := t.TempDir()
	if err := c.Save("", WithDirectory(dir)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Fatalf("expected one generated json file, got %v", entries)
	}
}

func TestDecodeListCell(t *testing.T) {
	tests := []struct {
		name     string
		cell     string
		expected []interface{}
		wantErr  bool
	}{
		{
			name:     "list of strings",
			cell:     "['TS', 'PR']",
			expected: []interface{}{"TS", "PR"},
		},
		{
			name:     "tuple form",
			cell:     "('O2',)",
			expected: []interface{}{"O2"},
		},
		{
			name:     "numbers",
			cell:     "[1, 2]",
			expected: []interface{}{float64(1), float64(2)},
		},
		{
			name:    "not a list",
			cell:    "x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeListCell(tt.cell)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeListCell() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("decodeListCell() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}
