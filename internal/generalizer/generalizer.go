// Package generalizer turns valenced observations of actions into
// generalized nADICO norms. A Generalizer owns a deontic range that it
// refreshes after every generalization round, caches level-0 and
// higher-order results, and derives "monitored, or else consequential"
// statements from them.
//
// A Generalizer is not safe for concurrent use; it is owned by one agent.
package generalizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"nadico/internal/deontic"
	"nadico/internal/logging"
	"nadico/internal/nadico"
)

// Observation is one observed expression with its valence.
type Observation struct {
	Expression *nadico.Expression
	Valence    float64
}

// Provider generalizes the individual markers of an actor. It must not
// return nil.
type Provider func(individual *nadico.MarkerMap) *nadico.MarkerMap

// Listener is notified after every successful generalization.
type Listener func() error

// Option configures a Generalizer.
type Option func(*Generalizer)

// WithProvider registers p. At most one provider may be registered.
func WithProvider(p Provider) Option {
	return func(g *Generalizer) { g.providers = append(g.providers, p) }
}

// WithListener registers l; listeners run after the deontic range update.
func WithListener(l Listener) Option {
	return func(g *Generalizer) { g.listeners = append(g.listeners, l) }
}

// WithStrategy selects the aggregation strategy (default StrategySum).
func WithStrategy(s Strategy) Option {
	return func(g *Generalizer) { g.strategy = s }
}

// WithRemoveNonAttributeAimProperties blanks aim properties that are not
// attributes during generalization.
func WithRemoveNonAttributeAimProperties(remove bool) Option {
	return func(g *Generalizer) { g.removeNonAttributeAimProperties = remove }
}

// Generalizer coordinates generalization for one owner.
type Generalizer struct {
	id      string
	owner   string
	context string

	rng      *deontic.Range
	factory  *nadico.Factory
	strategy Strategy

	removeNonAttributeAimProperties bool

	providers []Provider
	listeners []Listener

	generalized            *nadico.ExpressionMap
	generalizedHigherLevel map[int]*nadico.ExpressionMap
	statements             []*nadico.Expression
	statementsHigherLevel  map[int][]*nadico.Expression
}

// New creates a generalizer with its own deontic range built from rc.
func New(owner, context string, rc deontic.RangeConfig, opts ...Option) (*Generalizer, error) {
	g := &Generalizer{
		id:                     uuid.NewString(),
		owner:                  owner,
		context:                context,
		strategy:               StrategySum,
		generalized:            nadico.NewExpressionMap(nadico.EqualAIC),
		generalizedHigherLevel: make(map[int]*nadico.ExpressionMap),
		statementsHigherLevel:  make(map[int][]*nadico.Expression),
	}
	for _, opt := range opts {
		opt(g)
	}
	if len(g.providers) > 1 {
		return nil, fmt.Errorf("%w: %d generalization providers registered for %s, at most one is supported",
			deontic.ErrConfiguration, len(g.providers), owner)
	}
	if _, err := ParseStrategy(string(g.strategy)); err != nil {
		return nil, err
	}
	rng, err := deontic.NewRange(owner, context, rc)
	if err != nil {
		return nil, err
	}
	g.rng = rng
	g.factory = nadico.NewFactory(rng)
	logging.GeneralizerDebug("%s: created generalizer %s (strategy=%s, range=%s)", owner, g.id, g.strategy, rc.Type)
	return g, nil
}

func (g *Generalizer) ID() string               { return g.id }
func (g *Generalizer) Owner() string            { return g.owner }
func (g *Generalizer) Context() string          { return g.context }
func (g *Generalizer) Range() *deontic.Range    { return g.rng }
func (g *Generalizer) Factory() *nadico.Factory { return g.factory }
func (g *Generalizer) Strategy() Strategy       { return g.strategy }

// notify refreshes the deontic range, then runs the registered listeners.
func (g *Generalizer) notify() error {
	if err := g.rng.Update(g); err != nil {
		return err
	}
	for _, l := range g.listeners {
		if err := l(); err != nil {
			return err
		}
	}
	return nil
}

// CachedGeneralizedValencedExpressions returns the level-0 result of the
// last GeneralizeValencedExpressions call. Callers must not mutate it.
func (g *Generalizer) CachedGeneralizedValencedExpressions() *nadico.ExpressionMap {
	return g.generalized
}

// CachedGeneralizedValencedExpressionsAtLevel returns the cached result for
// a higher-order level, or nil.
func (g *Generalizer) CachedGeneralizedValencedExpressionsAtLevel(level int) *nadico.ExpressionMap {
	return g.generalizedHigherLevel[level]
}

// NAdicoExpressions returns the statements of the last level-0 derivation.
func (g *Generalizer) NAdicoExpressions() []*nadico.Expression {
	return g.statements
}

// MultiLevelNAdicoExpressions returns derived statements per higher-order
// level, ordered by level.
func (g *Generalizer) MultiLevelNAdicoExpressions() map[int][]*nadico.Expression {
	out := make(map[int][]*nadico.Expression, len(g.statementsHigherLevel))
	for k, v := range g.statementsHigherLevel {
		out[k] = v
	}
	return out
}

// Levels returns the cached higher-order levels in ascending order.
func (g *Generalizer) Levels() []int {
	levels := make([]int, 0, len(g.generalizedHigherLevel))
	for k := range g.generalizedHigherLevel {
		levels = append(levels, k)
	}
	sort.Ints(levels)
	return levels
}

func (g *Generalizer) extremeStatement(lowest bool) *nadico.Expression {
	extreme := math.MaxFloat64
	if !lowest {
		extreme = -math.MaxFloat64
	}
	var found *nadico.Expression
	for _, k := range g.generalized.Keys() {
		if k.Deontic == nil {
			continue
		}
		v := *k.Deontic
		if (lowest && v < extreme) || (!lowest && v > extreme) {
			extreme = v
			found = k
		}
	}
	return found
}

// MinValenceStatement returns the level-0 key with the lowest deontic
// value; ties go to the first key.
func (g *Generalizer) MinValenceStatement() *nadico.Expression {
	return g.extremeStatement(true)
}

// MaxValenceStatement returns the level-0 key with the highest deontic
// value; ties go to the first key.
func (g *Generalizer) MaxValenceStatement() *nadico.Expression {
	return g.extremeStatement(false)
}

// MinValence implements deontic.ValenceSource.
func (g *Generalizer) MinValence() (float64, bool) {
	if e := g.MinValenceStatement(); e != nil {
		return *e.Deontic, true
	}
	return 0, false
}

// MaxValence implements deontic.ValenceSource.
func (g *Generalizer) MaxValence() (float64, bool) {
	if e := g.MaxValenceStatement(); e != nil {
		return *e.Deontic, true
	}
	return 0, false
}
