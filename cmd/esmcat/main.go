package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/vegasq/esmcat/catalog"
	"github.com/vegasq/esmcat/dataset"
	"github.com/vegasq/esmcat/logging"
	"github.com/vegasq/esmcat/output"
	"github.com/vegasq/esmcat/query"
	"github.com/vegasq/esmcat/store"
)

// queryList collects repeated -q flags.
type queryList []string

func (q *queryList) String() string {
	return strings.Join(*q, " ")
}

func (q *queryList) Set(value string) error {
	*q = append(*q, value)
	return nil
}

var (
	queries     queryList
	requireFlag = flag.String("require-all-on", "", "Comma separated columns; keep only groups covering every combination of the remaining query")
	formatFlag  = flag.String("f", "table", "Output format: jsonl, csv, table")
	limitFlag   = flag.Int("limit", 0, "Limit number of rows (0 = unlimited)")
	keysFlag    = flag.Bool("keys", false, "List dataset keys with their asset counts")
	uniqueFlag  = flag.String("unique", "", "Show unique values per column (comma separated columns, or \"all\")")
	getFlag     = flag.String("get", "", "Build the dataset for one key and print its summary")
	saveFlag    = flag.String("save", "", "Write the catalog, after any search, under this name")
	saveType    = flag.String("save-type", "dict", "Catalog layout for -save: dict or file")
	sepFlag     = flag.String("sep", ".", "Separator used to build dataset keys")
	verboseFlag = flag.Bool("v", false, "Verbose logging")
	seqFlag     = flag.String("seq", "", "Seq server URL to mirror logs to")
)

func main() {
	flag.Var(&queries, "q", "Query as column=value[,value...]; repeat for more columns (\"null\" matches missing values)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <catalog.json>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A tool to search ESM catalogs and build datasets from their assets.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s catalog.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -q \"experiment=historical\" -q \"variable=TS,PR\" catalog.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -q \"experiment=historical,control\" -require-all-on institution catalog.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -keys catalog.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -unique all catalog.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -get NCAR.historical catalog.json\n", os.Args[0])
	}

	flag.Parse()

	// Validate flag values
	if *limitFlag < 0 {
		fmt.Fprintf(os.Stderr, "Error: -limit must be non-negative, got %d\n", *limitFlag)
		os.Exit(1)
	}
	if *saveType != "dict" && *saveType != "file" {
		fmt.Fprintf(os.Stderr, "Error: -save-type must be dict or file, got '%s'\n", *saveType)
		os.Exit(1)
	}

	// Validate flag combinations
	modes := 0
	for _, on := range []bool{*keysFlag, *uniqueFlag != "", *getFlag != "", *saveFlag != ""} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		fmt.Fprintf(os.Stderr, "Error: -keys, -unique, -get and -save cannot be used together\n")
		os.Exit(1)
	}

	// Get catalog path from positional args
	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: missing catalog argument\n\n")
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	logger, cleanup := logging.SetupLogger(*verboseFlag, *seqFlag)
	defer cleanup()

	// Open the catalog
	st, err := store.Open(path, store.WithLogger(logger), store.WithSeparator(*sepFlag))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error: catalog '%s' not found\n", path)
			fmt.Fprintf(os.Stderr, "Please check the file path and try again.\n")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
	defer st.Close()

	// Apply search if specified
	if len(queries) > 0 || *requireFlag != "" {
		q, err := parseQuery(queries)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing query: %v\n\n", err)
			fmt.Fprintf(os.Stderr, "Query format: column=value[,value...]\n")
			fmt.Fprintf(os.Stderr, "Example: -q \"experiment=historical,control\" -q \"variable=TS\"\n")
			os.Exit(1)
		}

		searched, err := st.Search(q, splitList(*requireFlag))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			// List available columns to help the user
			var serr *query.SchemaError
			if errors.As(err, &serr) {
				fmt.Fprintf(os.Stderr, "\nAvailable columns: %s\n", strings.Join(st.Catalog().Index.Columns(), ", "))
			}
			os.Exit(1)
		}
		st = searched
	}

	switch {
	case *keysFlag:
		printKeys(st, *formatFlag)
	case *uniqueFlag != "":
		printUnique(st, *uniqueFlag, *formatFlag)
	case *getFlag != "":
		printDataset(st, *getFlag)
	case *saveFlag != "":
		saveCatalog(st, *saveFlag, *saveType)
	default:
		printRows(st, *formatFlag, *limitFlag)
	}
}

// parseQuery turns repeated column=value[,value...] items into a query
// map. Values that look like numbers or booleans are typed the way
// catalog tables type cells, and the literal "null" matches missing
// values.
func parseQuery(items []string) (map[string]interface{}, error) {
	q := make(map[string]interface{}, len(items))
	for _, item := range items {
		col, spec, ok := strings.Cut(item, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("query %q is not of the form column=value[,value...]", item)
		}
		parts := strings.Split(spec, ",")
		values := make([]interface{}, 0, len(parts))
		for _, part := range parts {
			values = append(values, parseValue(strings.TrimSpace(part)))
		}
		if existing, ok := q[col].([]interface{}); ok {
			q[col] = append(existing, values...)
		} else {
			q[col] = values
		}
	}
	return q, nil
}

// parseValue types one query value.
func parseValue(s string) interface{} {
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// splitList splits a comma separated flag value, dropping empty parts.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// newFormatter resolves the -f flag
func newFormatter(format string) output.Formatter {
	switch format {
	case "json", "jsonl":
		return output.NewJSONFormatter(os.Stdout)
	case "csv":
		return output.NewCSVFormatter(os.Stdout)
	case "table":
		return output.NewTableFormatter(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format '%s'\n", format)
		fmt.Fprintf(os.Stderr, "Supported formats: jsonl, csv, table\n")
		os.Exit(1)
		return nil
	}
}

// printRows writes the catalog table rows in the chosen format
func printRows(st *store.Store, format string, limit int) {
	formatter := newFormatter(format)
	idx := st.Catalog().Index
	rows := idx.Rows()
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if err := formatter.Format(idx.Columns(), rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

// printKeys writes one row per dataset key with its asset count
func printKeys(st *store.Store, format string) {
	formatter := newFormatter(format)
	rows := make([]map[string]interface{}, 0, st.Len())
	for _, g := range st.Groups() {
		rows = append(rows, map[string]interface{}{"key": g.Key, "assets": len(g.Rows)})
	}
	if err := formatter.Format([]string{"key", "assets"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

// printUnique writes the distinct values per column
func printUnique(st *store.Store, spec, format string) {
	var columns []string
	if spec != "all" {
		columns = splitList(spec)
	}
	unique, err := st.Unique(columns...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nAvailable columns: %s\n", strings.Join(st.Catalog().Index.Columns(), ", "))
		os.Exit(1)
	}

	order := columns
	if len(order) == 0 {
		order = st.Catalog().Index.Columns()
	}
	seen := make(map[string]bool, len(order))
	rows := make([]map[string]interface{}, 0, len(unique))
	for _, col := range order {
		values, ok := unique[col]
		if !ok {
			continue
		}
		seen[col] = true
		rows = append(rows, map[string]interface{}{"column": col, "n": len(values), "values": values})
	}
	// Entries beyond the table columns, like derived variables
	extras := make([]string, 0, len(unique))
	for col := range unique {
		if !seen[col] {
			extras = append(extras, col)
		}
	}
	sort.Strings(extras)
	for _, col := range extras {
		rows = append(rows, map[string]interface{}{"column": col, "n": len(unique[col]), "values": unique[col]})
	}

	formatter := newFormatter(format)
	if err := formatter.Format([]string{"column", "n", "values"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

// printDataset builds one key and prints its summary
func printDataset(st *store.Store, key string) {
	ds, err := st.Get(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// List available keys to help the user
		var kerr *store.KeyNotFoundError
		if errors.As(err, &kerr) {
			fmt.Fprintf(os.Stderr, "\nAvailable keys:\n")
			for _, k := range st.Keys() {
				fmt.Fprintf(os.Stderr, "  %s\n", k)
			}
		}
		os.Exit(1)
	}
	fmt.Print(datasetSummary(key, ds))
}

// datasetSummary renders a one-screen description of a built dataset.
func datasetSummary(key string, ds *dataset.Dataset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s\n", key)

	sizes := ds.DimSizes()
	dims := make([]string, 0, len(sizes))
	for dim := range sizes {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	parts := make([]string, len(dims))
	for i, dim := range dims {
		parts[i] = fmt.Sprintf("%s=%d", dim, sizes[dim])
	}
	fmt.Fprintf(&b, "Dimensions: %s\n", strings.Join(parts, ", "))

	coords := make([]string, 0, len(ds.Coords))
	for name := range ds.Coords {
		coords = append(coords, name)
	}
	sort.Strings(coords)
	b.WriteString("Coordinates:\n")
	for _, name := range coords {
		fmt.Fprintf(&b, "  %s [%d]\n", name, len(ds.Coords[name]))
	}

	b.WriteString("Variables:\n")
	for _, name := range ds.VarNames() {
		v := ds.Vars[name]
		fmt.Fprintf(&b, "  %s (%s) %v\n", name, strings.Join(v.Dims, ", "), v.Shape)
	}

	attrs := make([]string, 0, len(ds.Attrs))
	for name := range ds.Attrs {
		attrs = append(attrs, name)
	}
	sort.Strings(attrs)
	b.WriteString("Attributes:\n")
	for _, name := range attrs {
		fmt.Fprintf(&b, "  %s: %v\n", name, ds.Attrs[name])
	}
	return b.String()
}

// saveCatalog writes the current catalog state to disk
func saveCatalog(st *store.Store, name, catalogType string) {
	if err := st.Serialize(name, catalog.WithCatalogType(catalogType)); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Saved catalog %s\n", name)
}
