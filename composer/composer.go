// Package composer is the mixin domain of the wetwire CLI. It loads
// declaration documents, plans them through a shared plan cache and reports
// the results as domain results.
package composer

import (
	"io"

	"github.com/lex00/wetwire-mixin-go/cache"
	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/version"
)

// Composer implements domain.Domain and every optional domain interface.
type Composer struct {
	cache  *cache.Cache
	logOut io.Writer
}

// Option configures a Composer.
type Option func(*Composer)

// WithCache sets the plan cache. The process-wide cache is used otherwise.
func WithCache(c *cache.Cache) Option {
	return func(cp *Composer) {
		cp.cache = c
	}
}

// WithLogOutput sets where planner and watch logs are written. The default
// is standard error.
func WithLogOutput(w io.Writer) Option {
	return func(cp *Composer) {
		cp.logOut = w
	}
}

// New returns the mixin domain.
func New(opts ...Option) (*Composer, error) {
	c := &Composer{}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		shared, err := cache.Default()
		if err != nil {
			return nil, err
		}
		c.cache = shared
	}
	return c, nil
}

// Cache returns the plan cache the composer publishes to.
func (c *Composer) Cache() *cache.Cache {
	return c.cache
}

// Name implements domain.Domain.
func (c *Composer) Name() string { return "mixin" }

// Version implements domain.Domain.
func (c *Composer) Version() string { return version.Version() }

// Builder implements domain.Domain.
func (c *Composer) Builder() domain.Builder { return &builder{c} }

// Linter implements domain.Domain.
func (c *Composer) Linter() domain.Linter { return &linter{c} }

// Initializer implements domain.Domain.
func (c *Composer) Initializer() domain.Initializer { return &initializer{} }

// Validator implements domain.Domain.
func (c *Composer) Validator() domain.Validator { return &validator{c} }

// Importer implements domain.ImporterDomain.
func (c *Composer) Importer() domain.Importer { return &importer{} }

// Lister implements domain.ListerDomain.
func (c *Composer) Lister() domain.Lister { return &lister{c} }

// Grapher implements domain.GrapherDomain.
func (c *Composer) Grapher() domain.Grapher { return &grapher{c} }

// Watcher implements domain.WatcherDomain.
func (c *Composer) Watcher() domain.Watcher { return &watcher{c} }

var (
	_ domain.Domain         = (*Composer)(nil)
	_ domain.ImporterDomain = (*Composer)(nil)
	_ domain.ListerDomain   = (*Composer)(nil)
	_ domain.GrapherDomain  = (*Composer)(nil)
	_ domain.WatcherDomain  = (*Composer)(nil)
)
