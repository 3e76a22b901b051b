// Package dispatch runs a member pipeline: an ordered list of links where each
// link may call the next one through a handle bound to its depth.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/lex00/wetwire-mixin-go/plan"
)

// ErrEndOfPipeline is returned when a link calls past the last link.
var ErrEndOfPipeline = errors.New("no next link in pipeline")

// Link is one implementation of a member. next forwards to the following link.
type Link[A, R any] func(next Handle[A, R], arg A) (R, error)

// Pipeline is an ordered list of links, entered at depth 0.
type Pipeline[A, R any] struct {
	links []Link[A, R]
}

// New returns a pipeline of links.
func New[A, R any](links ...Link[A, R]) *Pipeline[A, R] {
	return &Pipeline[A, R]{links: append([]Link[A, R](nil), links...)}
}

// Len returns the number of links.
func (p *Pipeline[A, R]) Len() int {
	return len(p.links)
}

// Invoke calls the link at depth 0.
func (p *Pipeline[A, R]) Invoke(arg A) (R, error) {
	return p.at(0).Call(arg)
}

// at returns the handle bound to depth.
func (p *Pipeline[A, R]) at(depth int) Handle[A, R] {
	return Handle[A, R]{pipeline: p, depth: depth}
}

// Handle is bound to one depth of a pipeline.
type Handle[A, R any] struct {
	pipeline *Pipeline[A, R]
	depth    int
}

// Depth returns the depth the handle invokes.
func (h Handle[A, R]) Depth() int {
	return h.depth
}

// Call invokes the link at the handle's depth, handing it a handle to the
// next depth.
func (h Handle[A, R]) Call(arg A) (R, error) {
	if h.pipeline == nil || h.depth >= len(h.pipeline.links) {
		var zero R
		return zero, ErrEndOfPipeline
	}
	return h.pipeline.links[h.depth](h.pipeline.at(h.depth+1), arg)
}

// Resolver returns the implementation of a plan link.
type Resolver[A, R any] func(link plan.Link) (Link[A, R], error)

// FromPlan resolves every link of a plan pipeline, keeping plan depths.
func FromPlan[A, R any](pl plan.Pipeline, resolve Resolver[A, R]) (*Pipeline[A, R], error) {
	links := make([]Link[A, R], len(pl.Links))
	for i, l := range pl.Links {
		fn, err := resolve(l)
		if err != nil {
			return nil, fmt.Errorf("resolving %s.%s at depth %d: %w", l.DeclaringType, pl.Key.Name, l.Depth, err)
		}
		if fn == nil {
			return nil, fmt.Errorf("resolving %s.%s at depth %d: no implementation", l.DeclaringType, pl.Key.Name, l.Depth)
		}
		links[i] = fn
	}
	return &Pipeline[A, R]{links: links}, nil
}
