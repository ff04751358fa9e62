package store

import (
	"log/slog"

	"github.com/vegasq/esmcat/aggregate"
	"github.com/vegasq/esmcat/derived"
	"github.com/vegasq/esmcat/opener"
)

// Option configures a Store during Open or FromCatalog.
type Option func(*config)

type config struct {
	separator    string
	logger       *slog.Logger
	registry     *derived.Registry
	openers      *opener.Registry
	storage      map[string]interface{}
	scheduler    aggregate.Scheduler
	iterableCols []string
}

// WithSeparator sets the string used to join group attribute values
// into keys. Default is ".".
func WithSeparator(sep string) Option {
	return func(c *config) {
		c.separator = sep
	}
}

// WithLogger sets the logger used for search and build events. The
// default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithDerived attaches a derived variable registry. The registry is
// validated against the catalog columns when the store is created.
func WithDerived(registry *derived.Registry) Option {
	return func(c *config) {
		c.registry = registry
	}
}

// WithOpeners replaces the opener registry used to read assets. The
// default registry handles parquet.
func WithOpeners(registry *opener.Registry) Option {
	return func(c *config) {
		c.openers = registry
	}
}

// WithStorageOptions sets backend options passed through to openers.
func WithStorageOptions(storage map[string]interface{}) Option {
	return func(c *config) {
		c.storage = storage
	}
}

// WithScheduler sets the scheduler used for parallel asset opens. When
// unset the store owns a goroutine pool sized to the machine and
// releases it on Close.
func WithScheduler(scheduler aggregate.Scheduler) Option {
	return func(c *config) {
		c.scheduler = scheduler
	}
}

// WithIterableColumns marks extra columns to decode as lists when the
// catalog is loaded from disk. FromCatalog ignores it.
func WithIterableColumns(columns ...string) Option {
	return func(c *config) {
		c.iterableCols = append(c.iterableCols, columns...)
	}
}
