package plan

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lex00/wetwire-mixin-go/capgraph"
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/order"
	"github.com/lex00/wetwire-mixin-go/override"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// Stage is a step of plan construction. Stages only move forward.
type Stage int

const (
	StageDeclared Stage = iota
	StageGraphBuilt
	StageMixinsOrdered
	StageChainsBuilt
	StagePlanBuilt
)

func (s Stage) String() string {
	switch s {
	case StageDeclared:
		return "declared"
	case StageGraphBuilt:
		return "graph built"
	case StageMixinsOrdered:
		return "mixins ordered"
	case StageChainsBuilt:
		return "chains built"
	case StagePlanBuilt:
		return "plan built"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Planner builds plans against one type-info provider. It holds no state
// between calls and is safe for concurrent use.
type Planner struct {
	provider typeinfo.Provider
	tieBreak order.TieBreaker[declare.TypeID]
	logger   zerolog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithTieBreaker sets the tie breaker used when several mixins may come next.
func WithTieBreaker(tb order.TieBreaker[declare.TypeID]) Option {
	return func(p *Planner) {
		p.tieBreak = tb
	}
}

// WithLogger sets the logger stage transitions are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// NewPlanner returns a planner. By default ties are broken in declaration
// order and nothing is logged.
func NewPlanner(p typeinfo.Provider, opts ...Option) *Planner {
	pl := &Planner{
		provider: p,
		tieBreak: order.FirstCandidate[declare.TypeID],
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Provider returns the planner's type-info provider.
func (pl *Planner) Provider() typeinfo.Provider {
	return pl.provider
}

// build is the state of one plan construction.
type build struct {
	decl   *declare.Declaration
	stage  Stage
	graph  *capgraph.Graph
	order  []declare.TypeID
	chains map[override.Key]*override.Chain
	plan   *Plan
}

// Plan runs every stage for decl. Failures are returned as *StageError
// naming the stage that could not be reached.
func (pl *Planner) Plan(decl *declare.Declaration) (*Plan, error) {
	if decl == nil {
		return nil, &StageError{Stage: StageGraphBuilt, Err: declare.ErrMissingTarget}
	}
	logger := pl.logger.With().Str("target", string(decl.Target)).Logger()
	start := time.Now()

	b := &build{decl: decl, stage: StageDeclared}
	steps := []func(*build) error{
		pl.buildGraph,
		pl.orderMixins,
		pl.buildChains,
		pl.compose,
	}
	for _, step := range steps {
		next := b.stage + 1
		if err := step(b); err != nil {
			logger.Debug().Err(err).Stringer("stage", next).Msg("plan stage failed")
			return nil, &StageError{Stage: next, Err: err}
		}
		b.stage = next
		logger.Debug().Stringer("stage", b.stage).Msg("plan stage reached")
	}

	logger.Debug().
		Strs("order", typeIDStrings(b.order)).
		Dur("took", time.Since(start)).
		Msg("plan built")
	return b.plan, nil
}

func (pl *Planner) buildGraph(b *build) error {
	g, err := capgraph.Build(b.decl, pl.provider)
	if err != nil {
		return err
	}
	b.graph = g
	return nil
}

func (pl *Planner) orderMixins(b *build) error {
	ordered, err := order.Sort(b.graph.Mixins(), DependencyAnalyzer(b.graph, pl.provider), pl.tieBreak)
	if err != nil {
		return err
	}
	b.order = ordered
	return nil
}

func (pl *Planner) buildChains(b *build) error {
	chains, err := BuildChains(pl.provider, b.decl.Target, b.order)
	if err != nil {
		return err
	}
	b.chains = chains
	return nil
}

func (pl *Planner) compose(b *build) error {
	p, err := Compose(b.decl, pl.provider, b.graph, b.order, b.chains)
	if err != nil {
		return err
	}
	b.plan = p
	return nil
}

func typeIDStrings(ids []declare.TypeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
