package store

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/vegasq/esmcat/aggregate"
	"github.com/vegasq/esmcat/catalog"
	"github.com/vegasq/esmcat/dataset"
	"github.com/vegasq/esmcat/derived"
	"github.com/vegasq/esmcat/opener"
)

// Store binds a catalog to the machinery that searches it and builds
// datasets from its groups. Stores come from Open, FromCatalog or
// Search; the zero value is not usable.
type Store struct {
	cat      *catalog.Catalog
	registry *derived.Registry
	openers  *opener.Registry
	storage  map[string]interface{}
	sched    aggregate.Scheduler
	ownPool  *ants.Pool
	logger   *slog.Logger
	sep      string

	requested []string
	groupby   []string
	groups    []catalog.KeyGroup
	byKey     map[string]catalog.KeyGroup
	template  string

	mu    sync.Mutex
	cache map[string]*dataset.Dataset
}

// Open loads a catalog descriptor from path and wraps it in a Store.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := newConfig(opts)
	cat, err := catalog.Load(path, catalog.WithIterableColumns(cfg.iterableCols...))
	if err != nil {
		return nil, err
	}
	return fromCatalog(cat, cfg)
}

// FromCatalog wraps an already loaded or assembled catalog in a Store.
// The catalog must carry an index.
func FromCatalog(cat *catalog.Catalog, opts ...Option) (*Store, error) {
	return fromCatalog(cat, newConfig(opts))
}

func newConfig(opts []Option) *config {
	cfg := &config{separator: "."}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = derived.NewRegistry()
	}
	if cfg.openers == nil {
		cfg.openers = opener.DefaultRegistry()
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg
}

func fromCatalog(cat *catalog.Catalog, cfg *config) (*Store, error) {
	if cat == nil || cat.Index == nil {
		return nil, fmt.Errorf("catalog has no index")
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if err := cat.CheckColumns(); err != nil {
		return nil, err
	}
	if err := cfg.registry.Validate(variableColumn(cat), cat.Index.Columns()); err != nil {
		return nil, err
	}

	st := &Store{
		cat:      cat,
		registry: cfg.registry,
		openers:  cfg.openers,
		storage:  cfg.storage,
		sched:    cfg.scheduler,
		logger:   cfg.logger,
		sep:      cfg.separator,
		cache:    make(map[string]*dataset.Dataset),
	}
	if err := st.groupIndex(); err != nil {
		return nil, err
	}
	if st.sched == nil {
		pool, err := ants.NewPool(runtime.NumCPU())
		if err != nil {
			return nil, fmt.Errorf("failed to start scheduler pool: %w", err)
		}
		st.sched = pool
		st.ownPool = pool
	}
	st.logger.Debug("catalog ready", "id", cat.ID, "assets", cat.Index.Len(), "keys", len(st.groups))
	return st, nil
}

// groupIndex recomputes the key groups from the current index.
func (s *Store) groupIndex() error {
	groupby, err := s.cat.EffectiveGroupbyAttrs()
	if err != nil {
		return err
	}
	groups, err := s.cat.GroupKeys(s.sep)
	if err != nil {
		return err
	}
	template, err := s.cat.KeyTemplate(s.sep)
	if err != nil {
		return err
	}
	s.groupby = groupby
	s.groups = groups
	s.template = template
	s.byKey = make(map[string]catalog.KeyGroup, len(groups))
	for _, g := range groups {
		s.byKey[g.Key] = g
	}
	return nil
}

// clone copies the store's wiring without its key groups or cache. The
// owned pool stays with the original, which keeps releasing it on
// Close.
func (s *Store) clone() *Store {
	return &Store{
		cat:       s.cat,
		registry:  s.registry,
		openers:   s.openers,
		storage:   s.storage,
		sched:     s.sched,
		logger:    s.logger,
		sep:       s.sep,
		requested: s.requested,
		cache:     make(map[string]*dataset.Dataset),
	}
}

// Catalog returns the descriptor and table behind the store.
func (s *Store) Catalog() *catalog.Catalog {
	return s.cat
}

// Keys returns the sorted dataset keys of the catalog.
func (s *Store) Keys() []string {
	keys := make([]string, len(s.groups))
	for i, g := range s.groups {
		keys[i] = g.Key
	}
	return keys
}

// Groups returns the key groups behind Keys, sorted the same way.
func (s *Store) Groups() []catalog.KeyGroup {
	return s.groups
}

// KeyTemplate returns the column template keys are built from.
func (s *Store) KeyTemplate() string {
	return s.template
}

// Len returns the number of dataset keys.
func (s *Store) Len() int {
	return len(s.groups)
}

// Unique returns the distinct values per column. Without a column
// filter and with derived variables registered, an extra
// "derived_<variable column>" entry lists the registered names.
func (s *Store) Unique(columns ...string) (map[string][]interface{}, error) {
	out, err := s.cat.Index.Unique(columns...)
	if err != nil {
		return nil, err
	}
	if col := variableColumn(s.cat); col != "" && len(columns) == 0 && s.registry.Len() > 0 {
		names := s.registry.Keys()
		values := make([]interface{}, len(names))
		for i, name := range names {
			values[i] = name
		}
		out["derived_"+col] = values
	}
	return out, nil
}

// Nunique returns the count of distinct values per column.
func (s *Store) Nunique(columns ...string) (map[string]int, error) {
	unique, err := s.Unique(columns...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(unique))
	for col, values := range unique {
		out[col] = len(values)
	}
	return out, nil
}

// Serialize writes the catalog to disk under the given name. See
// catalog.Save for the layout options.
func (s *Store) Serialize(name string, opts ...catalog.SaveOption) error {
	return s.cat.Save(name, opts...)
}

// Close releases the scheduler pool the store owns. Stores returned by
// Search share their parent's scheduler and close as a no-op.
func (s *Store) Close() error {
	if s.ownPool != nil {
		s.ownPool.Release()
		s.ownPool = nil
	}
	return nil
}

// variableColumn returns the catalog's variable column name, or ""
// when the catalog has no aggregation control.
func variableColumn(cat *catalog.Catalog) string {
	if cat.AggregationControl == nil {
		return ""
	}
	return cat.AggregationControl.VariableColumnName
}
