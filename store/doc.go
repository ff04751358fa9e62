// Package store is the user-facing surface of an ESM catalog: open a
// catalog, search it, and build datasets out of its groups.
//
// A Store wraps a catalog with everything needed to turn its record
// groups into datasets: an opener registry, an optional derived
// variable registry, a scheduler for parallel asset opens, and a
// logger.
//
//	st, err := store.Open("catalog.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	st, err = st.Search(map[string]interface{}{
//	    "experiment": []string{"historical", "rcp85"},
//	    "variable":   "TS",
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, key := range st.Keys() {
//	    ds, err := st.Get(key)
//	    ...
//	}
//
// # Keys and Groups
//
// Records group by the catalog's groupby attributes; each group's key
// joins the attribute values with the store separator (default "."),
// following the template reported by KeyTemplate. Keys come back
// sorted.
//
// # Searching
//
// Search returns a new store over the filtered index; the original is
// untouched. Queries follow the query package's semantics. When derived
// variables are registered, searching for one pulls in the assets its
// dependency query names, and the requested variables are remembered so
// dataset builds load only what was asked for.
//
// # Building Datasets
//
// Get builds one group lazily and caches the result; LoadAll builds
// every group concurrently. Built datasets carry provenance attributes:
// the group's attribute values under "esmcat_attrs:<column>", the key
// under "esmcat_key", and the requested variables under "esmcat_vars".
// Build failures wrap into *aggregate.AggregationError; unknown keys
// return *KeyNotFoundError.
package store
