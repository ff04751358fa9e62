package store

import (
	"sync"
	"time"

	"github.com/vegasq/esmcat/aggregate"
	"github.com/vegasq/esmcat/catalog"
	"github.com/vegasq/esmcat/dataset"
)

// Get builds the dataset for one key and caches it. Unknown keys
// return a *KeyNotFoundError; build failures come back as
// *aggregate.AggregationError and are not cached.
func (s *Store) Get(key string) (*dataset.Dataset, error) {
	return s.get(key, false)
}

func (s *Store) get(key string, skipDerivedErrors bool) (*dataset.Dataset, error) {
	group, ok := s.byKey[key]
	if !ok {
		return nil, &KeyNotFoundError{Key: key, Template: s.template}
	}

	s.mu.Lock()
	if ds, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return ds, nil
	}
	s.mu.Unlock()

	start := time.Now()
	builder := &aggregate.Builder{
		Catalog:   s.cat,
		Openers:   s.openers,
		Storage:   s.storage,
		Scheduler: s.sched,
	}
	ds, err := builder.Build(key, group.Rows, s.loadVars())
	if err != nil {
		s.logger.Error("dataset build failed", "key", key, "error", err)
		return nil, err
	}

	ds, err = s.registry.Apply(ds, variableColumn(s.cat), skipDerivedErrors)
	if err != nil {
		s.logger.Error("derived variables failed", "key", key, "error", err)
		return nil, err
	}

	s.stamp(ds, group)
	s.logger.Debug("dataset ready", "key", key, "elapsed", time.Since(start))

	s.mu.Lock()
	s.cache[key] = ds
	s.mu.Unlock()
	return ds, nil
}

// LoadAll builds the dataset of every key concurrently and returns
// them by key. With skipOnError, keys that fail to build drop out and
// failed derivations keep the underived dataset; otherwise the first
// failure aborts the load.
func (s *Store) LoadAll(skipOnError bool) (map[string]*dataset.Dataset, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		out  = make(map[string]*dataset.Dataset, len(s.groups))
		errs []error
	)
	for _, group := range s.groups {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			ds, err := s.get(key, skipOnError)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			out[key] = ds
		}(group.Key)
	}
	wg.Wait()
	if len(errs) > 0 && !skipOnError {
		return nil, errs[0]
	}
	return out, nil
}

// loadVars resolves the variables dataset builds should load: the
// requested variables plus the inputs of the derived ones among them.
// Nil means load everything.
func (s *Store) loadVars() []string {
	if len(s.requested) == 0 {
		return nil
	}
	out := append([]string{}, s.requested...)
	seen := make(map[string]bool, len(out))
	for _, v := range out {
		seen[v] = true
	}
	for _, entry := range s.registry.Items() {
		for _, dep := range entry.DependentVariables(variableColumn(s.cat)) {
			if !seen[dep] {
				seen[dep] = true
				out = append(out, dep)
			}
		}
	}
	return out
}

// stamp records the group's provenance on the built dataset.
func (s *Store) stamp(ds *dataset.Dataset, group catalog.KeyGroup) {
	if ds.Attrs == nil {
		ds.Attrs = make(map[string]interface{})
	}
	for i, col := range s.groupby {
		ds.Attrs["esmcat_attrs:"+col] = group.Values[i]
	}
	ds.Attrs["esmcat_key"] = group.Key
	ds.Attrs["esmcat_vars"] = append([]string{}, s.requested...)
}
