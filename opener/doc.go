// Package opener loads catalog assets into datasets.
//
// An Opener turns one asset path into a dataset.Dataset. Openers are
// looked up by the asset's declared data format through a Registry, so
// catalogs mixing formats resolve each asset to the right loader.
//
// The built-in parquet opener reads an asset with parquet-go: rows
// become one "index" dimension and every column becomes a 1-D variable
// along it. Other formats named in catalog descriptors (netcdf, zarr,
// reference, opendap) are vocabulary only; serving them is a matter of
// registering an Opener:
//
//	registry := opener.DefaultRegistry()
//	registry.Register(catalog.FormatZarr, myZarrOpener)
//
//	ds, err := registry.Open("store/data.parquet", catalog.FormatParquet, nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A non-empty vars list restricts the loaded variables; storage options
// pass through to the opener untouched, for loaders that need
// credentials or endpoints.
package opener
