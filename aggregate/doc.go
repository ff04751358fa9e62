// Package aggregate builds one dataset out of a group of catalog
// records.
//
// A catalog group holds every asset belonging to one key. The builder
// arranges those records into a tree: each aggregation entry, in
// declared order, partitions the records by its attribute column, and
// the records sharing values in all aggregation columns become a leaf.
// Leaves open their assets, then the tree combines bottom-up:
//
//   - join_new stacks the children along a new dimension named after
//     the attribute, with the child key values as its coordinate
//   - join_existing concatenates the children along the dimension named
//     in the entry's options
//   - union merges children carrying different variables
//
// Children always combine in ascending key order, so rebuilding a key
// yields the same dataset.
//
// # Usage
//
//	builder := &aggregate.Builder{
//	    Catalog: cat,
//	    Openers: opener.DefaultRegistry(),
//	}
//	ds, err := builder.Build(key, records, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Leaf assets open through the builder's Scheduler when one is set; an
// ants pool satisfies the interface. With no scheduler, opens run
// inline.
//
// # Null Handling
//
// An aggregation column that is entirely null within the group is
// dropped from the tree for that group. A column that is only partly
// null is an error: the records no longer partition cleanly.
//
// # Errors
//
// Every failure for a key, from opening an asset to a structural
// conflict while combining, comes back wrapped in an
// *AggregationError carrying the key:
//
//	var aggErr *aggregate.AggregationError
//	if errors.As(err, &aggErr) {
//	    log.Printf("key %s failed: %v", aggErr.Key, aggErr.Err)
//	}
package aggregate
