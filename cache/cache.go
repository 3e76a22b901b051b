// Package cache keeps built plans per (target, configuration identity) so a
// composition is planned once and reused until its configuration changes.
//
// Builds for the same key are collapsed into one. Builds run outside the
// cache lock; only publishing the result is synchronized. A build that fails,
// or that raced with an invalidation of its key, is never published.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/plan"
)

// Key identifies a plan.
type Key struct {
	Target   declare.TypeID
	Identity string
}

// KeyOf returns the key of a declaration. Qualifiers name everything else
// the plan depends on, such as the tie breaker or a digest of the type
// information, and are appended to the identity.
func KeyOf(decl *declare.Declaration, qualifiers ...string) Key {
	identity := decl.Identity()
	for _, q := range qualifiers {
		identity += "/" + q
	}
	return Key{Target: decl.Target, Identity: identity}
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.Target, k.Identity)
}

// BuildFunc builds the plan for a key.
type BuildFunc func() (*plan.Plan, error)

// Cache holds published plans. The zero value is not usable; use New.
type Cache struct {
	mu    sync.Mutex
	plans map[Key]*plan.Plan
	// pending holds the token of the build allowed to publish each key.
	// Entries live only while a build is in flight.
	pending map[Key]uint64
	seq     uint64

	group   singleflight.Group
	metrics *metrics
	logger  zerolog.Logger
}

// Option configures a Cache.
type Option func(*cacheOptions)

type cacheOptions struct {
	registerer prometheus.Registerer
	logger     zerolog.Logger
}

// WithRegisterer registers the cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *cacheOptions) {
		o.registerer = reg
	}
}

// WithLogger sets the logger builds and invalidations are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *cacheOptions) {
		o.logger = logger
	}
}

// New returns an empty cache. Metrics are only exported when a registerer is
// given.
func New(opts ...Option) (*Cache, error) {
	o := cacheOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	m := newMetrics()
	if err := m.register(o.registerer); err != nil {
		return nil, fmt.Errorf("registering plan cache metrics: %w", err)
	}

	return &Cache{
		plans:   make(map[Key]*plan.Plan),
		pending: make(map[Key]uint64),
		metrics: m,
		logger:  o.logger,
	}, nil
}

var defaultCache = sync.OnceValues(func() (*Cache, error) {
	return New(WithRegisterer(prometheus.DefaultRegisterer))
})

// Default returns the process-wide cache, created on first use with metrics
// on the default prometheus registerer.
func Default() (*Cache, error) {
	return defaultCache()
}

// Get returns the plan published for key, building it with build when there
// is none. Concurrent calls for one key share a single build. ctx only bounds
// how long the caller waits; the build itself is not cancelled.
func (c *Cache) Get(ctx context.Context, key Key, build BuildFunc) (*plan.Plan, error) {
	c.mu.Lock()
	if p, ok := c.plans[key]; ok {
		c.mu.Unlock()
		c.metrics.hits.Inc()
		return p, nil
	}
	c.mu.Unlock()
	c.metrics.misses.Inc()

	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.build(key, build)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*plan.Plan), nil
	}
}

func (c *Cache) build(key Key, build BuildFunc) (*plan.Plan, error) {
	c.mu.Lock()
	if p, ok := c.plans[key]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.seq++
	token := c.seq
	c.pending[key] = token
	c.mu.Unlock()

	start := time.Now()
	p, err := build()
	c.metrics.buildDuration.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	current := c.pending[key] == token
	if current {
		delete(c.pending, key)
	}
	if err == nil && current {
		c.plans[key] = p
	}
	c.mu.Unlock()

	if err != nil {
		c.metrics.builds.WithLabelValues("error").Inc()
		c.logger.Debug().Err(err).Str("target", string(key.Target)).Msg("plan build failed")
		return nil, err
	}
	c.metrics.builds.WithLabelValues("ok").Inc()
	if !current {
		c.logger.Debug().Str("target", string(key.Target)).Msg("plan invalidated during build, not published")
	}
	return p, nil
}

// Invalidate discards the plan for key and any build of it still running.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(key)
}

// InvalidateTarget discards every plan of target and returns how many
// published plans were removed.
func (c *Cache) InvalidateTarget(target declare.TypeID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []Key
	for key := range c.plans {
		if key.Target == target {
			keys = append(keys, key)
		}
	}
	for key := range c.pending {
		if key.Target == target {
			keys = append(keys, key)
		}
	}
	removed := 0
	for _, key := range keys {
		if c.invalidateLocked(key) {
			removed++
		}
	}
	return removed
}

// invalidateLocked reports whether a published plan was removed.
func (c *Cache) invalidateLocked(key Key) bool {
	_, published := c.plans[key]
	delete(c.plans, key)
	delete(c.pending, key)
	c.group.Forget(key.String())
	if published {
		c.metrics.invalidations.Inc()
		c.logger.Debug().Str("target", string(key.Target)).Msg("plan invalidated")
	}
	return published
}

// Len returns the number of published plans.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plans)
}

// tracked returns the number of keys with a published plan or a build in
// flight.
func (c *Cache) tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plans) + len(c.pending)
}
