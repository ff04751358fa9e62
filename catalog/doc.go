// Package catalog reads, validates and serves ESM-style catalog
// descriptors and the asset tables they point at.
//
// A catalog is a JSON document describing a collection of array-format
// assets: schema metadata (attributes), the column holding asset
// locations, and optionally an aggregation control block that fixes how
// assets combine into datasets. The asset table itself is either embedded
// in the JSON (catalog_dict) or stored next to it as a CSV or parquet
// file (catalog_file).
//
// # Loading
//
// Load reads the descriptor, validates it and loads the table:
//
//	cat, err := catalog.Load("collection.json",
//	    catalog.WithIterableColumns("variable"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cat.Index.Len(), "assets")
//
// Gzip-compressed descriptors and tables are detected by the .gz suffix.
// CSV cells in declared iterable columns are parsed from their bracketed
// text form (for example "['TS', 'PR']").
//
// # The Index
//
// Index is the in-memory table: ordered columns, rows as maps, and
// bookkeeping about which columns hold lists and which hold strings.
// It provides unique-value summaries and the group-by machinery used for
// key construction and completeness filtering.
//
// # Keys
//
// Assets that agree on the grouping columns form one group, addressed by
// a key joining the group's column values:
//
//	groups, err := cat.GroupKeys(".")
//	for _, g := range groups {
//	    fmt.Println(g.Key, len(g.Rows))
//	}
package catalog
