package query

import (
	"reflect"
	"regexp"
	"testing"

	"github.com/vegasq/esmcat/catalog"
)

func institutionRows() []catalog.Row {
	return []catalog.Row{
		{"A": "NCAR", "B": "CESM", "C": "hist", "D": "O2"},
		{"A": "IPSL", "B": "FOO", "C": "control", "D": "O2"},
		{"A": "IPSL", "B": "FOO", "C": "hist", "D": "O2"},
		{"A": "CSIRO", "B": "BAR", "C": "control", "D": "O2"},
		{"A": "IPSL", "B": "FOO", "C": "hist", "D": "NO2"},
		{"A": "NCAR", "B": "CESM", "C": "control", "D": "O2"},
		{"A": "NOAA", "B": "GCM", "C": "hist", "D": "O2"},
		{"A": "NCAR", "B": "WACM", "C": "hist", "D": "TA"},
		{"A": "NASA", "B": "foo", "C": "HiSt", "D": "tAs"},
	}
}

// checkRows compares a search result against the expected row indexes
// of the source rows.
func checkRows(t *testing.T, got *catalog.Index, rows []catalog.Row, expected []int) {
	t.Helper()
	if got.Len() != len(expected) {
		t.Fatalf("got %d rows, want %d", got.Len(), len(expected))
	}
	if len(expected) == 0 {
		return
	}
	want := make([]catalog.Row, 0, len(expected))
	for _, i := range expected {
		want = append(want, rows[i])
	}
	if !reflect.DeepEqual(got.Rows(), want) {
		t.Errorf("rows = %v, want %v", got.Rows(), want)
	}
}

func TestSearch(t *testing.T) {
	rows := institutionRows()
	idx := catalog.NewIndex([]string{"A", "B", "C", "D"}, rows, nil)

	tests := []struct {
		name     string
		query    map[string][]interface{}
		expected []int
	}{
		{
			name:     "exact value",
			query:    map[string][]interface{}{"C": {"hist"}},
			expected: []int{0, 2, 4, 6, 7},
		},
		{
			name:     "values in a column OR together",
			query:    map[string][]interface{}{"A": {"IPSL", "CSIRO"}},
			expected: []int{1, 2, 3, 4},
		},
		{
			name:     "columns AND together",
			query:    map[string][]interface{}{"C": {"hist"}, "D": {"O2"}},
			expected: []int{0, 2, 6},
		},
		{
			name:     "anchored pattern",
			query:    map[string][]interface{}{"C": {"^co.*ol$"}},
			expected: []int{1, 3, 5},
		},
		{
			name:     "unanchored pattern",
			query:    map[string][]interface{}{"B": {"C.*M$"}},
			expected: []int{0, 5, 6, 7},
		},
		{
			name:     "compiled case-insensitive pattern",
			query:    map[string][]interface{}{"C": {regexp.MustCompile(`(?i)hist.*`)}},
			expected: []int{0, 2, 4, 6, 7, 8},
		},
		{
			name:     "pattern and exact values mix",
			query:    map[string][]interface{}{"C": {"^co.*ol$", "HiSt"}},
			expected: []int{1, 3, 5, 8},
		},
		{
			name:     "no match",
			query:    map[string][]interface{}{"A": {"MIROC"}},
			expected: []int{},
		},
		{
			name:     "empty query matches nothing",
			query:    map[string][]interface{}{},
			expected: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(idx, tt.query)
			checkRows(t, got, rows, tt.expected)
			if !reflect.DeepEqual(got.Columns(), idx.Columns()) {
				t.Errorf("columns = %v, want %v", got.Columns(), idx.Columns())
			}
		})
	}
}

func TestSearchNumericAndNull(t *testing.T) {
	rows := []catalog.Row{
		{"member": int64(1), "path": "a"},
		{"member": int64(2), "path": "b"},
		{"member": nil, "path": "c"},
		{"member": float64(2), "path": "d"},
	}
	idx := catalog.NewIndex([]string{"member", "path"}, rows, nil)

	got := Search(idx, map[string][]interface{}{"member": {2}})
	checkRows(t, got, rows, []int{1, 3})

	got = Search(idx, map[string][]interface{}{"member": {nil}})
	checkRows(t, got, rows, []int{2})
}

func experimentRows() []catalog.Row {
	return []catalog.Row{
		{"experiment": "hist", "variable": []interface{}{"TS", "PR"}, "path": "p1"},
		{"experiment": "hist", "variable": []interface{}{"TS"}, "path": "p2"},
		{"experiment": "ctrl", "variable": []interface{}{"TS", "O2"}, "path": "p3"},
		{"experiment": "ctrl", "variable": nil, "path": "p4"},
	}
}

func TestSearchListColumns(t *testing.T) {
	rows := experimentRows()
	idx := catalog.NewIndex([]string{"experiment", "variable", "path"}, rows, nil)

	tests := []struct {
		name     string
		query    map[string][]interface{}
		expected []int
	}{
		{
			name:     "membership",
			query:    map[string][]interface{}{"variable": {"TS"}},
			expected: []int{0, 1, 2},
		},
		{
			name:     "membership values OR together",
			query:    map[string][]interface{}{"variable": {"PR", "O2"}},
			expected: []int{0, 2},
		},
		{
			name:     "patterns stay literal in list columns",
			query:    map[string][]interface{}{"variable": {"TS*"}},
			expected: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(idx, tt.query)
			checkRows(t, got, rows, tt.expected)
		})
	}
}

func TestRequireAllOn(t *testing.T) {
	rows := institutionRows()
	idx := catalog.NewIndex([]string{"A", "B", "C", "D"}, rows, nil)

	tests := []struct {
		name         string
		query        map[string][]interface{}
		requireAllOn []string
		expected     []int
	}{
		{
			// Only CESM and FOO ran both experiments. Groups come back in
			// sorted key order, rows in catalog order inside each group.
			name:         "groups must cover every value",
			query:        map[string][]interface{}{"C": {"control", "hist"}},
			requireAllOn: []string{"B"},
			expected:     []int{0, 5, 1, 2, 4},
		},
		{
			name:         "extra column tightens the condition",
			query:        map[string][]interface{}{"C": {"control", "hist"}, "D": {"O2"}},
			requireAllOn: []string{"B"},
			expected:     []int{0, 5, 1, 2},
		},
		{
			name:         "grouping by two columns",
			query:        map[string][]interface{}{"C": {"control", "hist"}},
			requireAllOn: []string{"A", "B"},
			expected:     []int{1, 2, 4, 0, 5},
		},
		{
			name:         "no keys beyond the grouping keeps every group",
			query:        map[string][]interface{}{"C": {"hist"}},
			requireAllOn: []string{"C"},
			expected:     []int{0, 2, 4, 6, 7},
		},
		{
			name:         "nothing satisfies the condition",
			query:        map[string][]interface{}{"C": {"control", "hist"}, "D": {"TA"}},
			requireAllOn: []string{"B"},
			expected:     []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Search(idx, tt.query)
			got := RequireAllOn(results, tt.query, tt.requireAllOn)
			checkRows(t, got, rows, tt.expected)
		})
	}
}

func TestRequireAllOnUnpacksLists(t *testing.T) {
	rows := experimentRows()
	idx := catalog.NewIndex([]string{"experiment", "variable", "path"}, rows, nil)

	query := map[string][]interface{}{"variable": {"TS", "PR"}}
	results := Search(idx, query)
	got := RequireAllOn(results, query, []string{"experiment"})

	// p1 and p2 together cover TS and PR within hist; ctrl only has TS
	// and O2 and is dropped.
	checkRows(t, got, rows, []int{0, 1})
}

// Searching is read-only: running the same normalized query again, with
// or without a RequireAllOn pass in between, returns the same rows in
// the same order and leaves the query untouched.
func TestSearchRepeatable(t *testing.T) {
	rows := institutionRows()
	idx := catalog.NewIndex([]string{"A", "B", "C", "D"}, rows, nil)

	q, err := Normalize(map[string]interface{}{
		"C": []interface{}{"control", "hist"},
		"B": "C.*M$",
	}, idx.Columns(), []string{"B"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	saved := make(map[string][]interface{}, len(q))
	for key, values := range q {
		saved[key] = append([]interface{}{}, values...)
	}

	first := Search(idx, q)
	second := Search(idx, q)
	checkRows(t, first, rows, []int{0, 5, 6, 7})
	if !reflect.DeepEqual(first.Rows(), second.Rows()) {
		t.Errorf("second Search() rows = %v, want %v", second.Rows(), first.Rows())
	}
	if !reflect.DeepEqual(first.Columns(), second.Columns()) {
		t.Errorf("second Search() columns = %v, want %v", second.Columns(), first.Columns())
	}

	firstKept := RequireAllOn(first, q, []string{"B"})
	secondKept := RequireAllOn(second, q, []string{"B"})
	checkRows(t, firstKept, rows, []int{0, 5})
	if !reflect.DeepEqual(firstKept.Rows(), secondKept.Rows()) {
		t.Errorf("second RequireAllOn() rows = %v, want %v", secondKept.Rows(), firstKept.Rows())
	}

	// RequireAllOn works on a copy of the query, so a later search still
	// sees every column.
	third := Search(idx, q)
	checkRows(t, third, rows, []int{0, 5, 6, 7})
	if !reflect.DeepEqual(q, saved) {
		t.Errorf("query changed to %v, want %v", q, saved)
	}
}
