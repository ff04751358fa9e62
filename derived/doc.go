// Package derived computes variables that no asset carries directly.
//
// A derived variable declares the catalog query that locates its
// inputs and a function that computes it from a built dataset. A
// registry of derived variables plugs into the store: searching for a
// derived variable pulls in the assets its query names, and once a
// dataset is built the derivation functions run over it.
//
//	registry := derived.NewRegistry()
//	err := registry.Register(derived.DerivedVariable{
//	    Variable: "FCO2",
//	    Query:    map[string]interface{}{"variable": []string{"CO2", "PCO2"}},
//	    Func: func(ds *dataset.Dataset) (*dataset.Dataset, error) {
//	        // compute FCO2 from CO2 and PCO2, add it to ds
//	        return ds, nil
//	    },
//	})
//
// A derivation runs only when every dependent variable is present in
// the dataset, and never overwrites an existing variable unless
// PreferDerived is set.
package derived
