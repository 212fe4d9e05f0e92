package generalizer

import (
	"fmt"
	"math"

	"nadico/internal/deontic"
	"nadico/internal/logging"
	"nadico/internal/nadico"
)

// GeneralizeExpression returns a generalized deep copy of e: individual
// markers are handed to the provider (or erased), social markers are kept,
// and the same treatment is applied to attributes held in the aim and to
// every expression held in the conditions.
func (g *Generalizer) GeneralizeExpression(e *nadico.Expression) (*nadico.Expression, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression: %w", nadico.ErrInvalidInput)
	}
	cp := e.Copy()
	if err := g.generalizeInPlace(cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (g *Generalizer) generalizeInPlace(e *nadico.Expression) error {
	if e.IsCombination() {
		for _, n := range e.Nested() {
			if err := g.generalizeInPlace(n); err != nil {
				return err
			}
		}
		return nil
	}
	if e.Attributes != nil {
		attrs, err := g.generalizeAttributes(e.Attributes)
		if err != nil {
			return err
		}
		e.Attributes = attrs
	}
	if e.Aim != nil {
		aim, err := g.generalizeAim(e.Aim)
		if err != nil {
			return err
		}
		e.Aim = aim
	}
	if e.Conditions != nil {
		for _, v := range e.Conditions.Properties.Values() {
			x, ok := v.(*nadico.Expression)
			if !ok || x == nil {
				continue
			}
			if err := g.generalizeInPlace(x); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Generalizer) generalizeAttributes(a *nadico.Attributes) (*nadico.Attributes, error) {
	out := a.Copy()
	if len(g.providers) == 0 {
		out.ClearIndividualMarkers()
		return out, nil
	}
	replacement := g.providers[0](out.IndividualMarkers.Clone())
	if replacement == nil {
		return nil, fmt.Errorf("%w: generalization provider of %s returned no markers", deontic.ErrConfiguration, g.owner)
	}
	out.ReplaceIndividualMarkers(replacement)
	return out, nil
}

func (g *Generalizer) generalizeAim(a *nadico.Aim) (*nadico.Aim, error) {
	out := a.Copy()
	for _, k := range out.Properties.Keys() {
		v, _ := out.Properties.Get(k)
		if attrs, ok := v.(*nadico.Attributes); ok {
			ga, err := g.generalizeAttributes(attrs)
			if err != nil {
				return nil, err
			}
			out.Properties.Set(k, ga)
		} else if g.removeNonAttributeAimProperties {
			out.Properties.Set(k, "")
		}
	}
	return out, nil
}

func hasIndividualMarkers(e *nadico.Expression) bool {
	if e.IsCombination() {
		nested := e.Nested()
		for _, n := range nested {
			if !hasIndividualMarkers(n) {
				return false
			}
		}
		return len(nested) > 0
	}
	return e.Attributes != nil && !e.Attributes.IndividualMarkers.IsEmpty()
}

// aggregate files instance under generalized. An AIC-equal key absorbs the
// valence into its deontic sum; otherwise generalized becomes a new key.
func aggregate(m *nadico.ExpressionMap, generalized, instance *nadico.Expression, valence float64) error {
	if !hasIndividualMarkers(instance) {
		return fmt.Errorf("individual markers of observed action are empty: %s: %w", instance, nadico.ErrInvalidInput)
	}
	instance.SetDeontic(valence)
	key := generalized
	if grp := m.Get(generalized); grp != nil {
		key = grp.Key
	}
	if key.Deontic == nil {
		key.SetDeontic(valence)
	} else {
		key.SetDeontic(*key.Deontic + valence)
	}
	m.Append(key, instance)
	return nil
}

// applyStrategy rewrites group deontics after aggregation.
func (g *Generalizer) applyStrategy(m *nadico.ExpressionMap) {
	switch g.strategy {
	case StrategyMean:
		for _, grp := range m.Groups() {
			grp.Key.SetDeontic(grp.Key.DeonticValue() / float64(len(grp.Instances)))
		}
	case StrategyOpportunistic:
		center := g.rng.NormativeCenter()
		if math.IsNaN(center) || math.IsInf(center, 0) {
			center = 0
		}
		for _, grp := range m.Groups() {
			lo, hi := math.MaxFloat64, -math.MaxFloat64
			for _, inst := range grp.Instances {
				if inst.Deontic == nil {
					continue
				}
				lo = math.Min(lo, *inst.Deontic)
				hi = math.Max(hi, *inst.Deontic)
			}
			if lo == math.MaxFloat64 {
				lo = center
			}
			if hi == -math.MaxFloat64 {
				hi = center
			}
			if math.Abs(hi-center) > math.Abs(center-lo) {
				grp.Key.SetDeontic(hi)
			} else {
				grp.Key.SetDeontic(lo)
			}
		}
	}
}

// CopyValencedExpressions deep-copies every observed expression.
func CopyValencedExpressions(obs []Observation) []Observation {
	out := make([]Observation, len(obs))
	for i, o := range obs {
		out[i] = Observation{Expression: o.Expression.Copy(), Valence: o.Valence}
	}
	return out
}

// GeneralizeValencedExpressions groups observations by their generalized
// AIC shape (level 0), applies the aggregation strategy, caches the result
// and refreshes the deontic range. Observations are copied first.
func (g *Generalizer) GeneralizeValencedExpressions(obs []Observation) (*nadico.ExpressionMap, error) {
	timer := logging.StartTimer(logging.CategoryGeneralizer, "level-0 generalization")
	defer timer.Stop()

	result := nadico.NewExpressionMap(nadico.EqualAIC)
	for _, o := range CopyValencedExpressions(obs) {
		if o.Expression == nil {
			return nil, fmt.Errorf("nil observation: %w", nadico.ErrInvalidInput)
		}
		generalized, err := g.GeneralizeExpression(o.Expression)
		if err != nil {
			return nil, err
		}
		if err := aggregate(result, generalized, o.Expression, o.Valence); err != nil {
			return nil, err
		}
	}
	g.applyStrategy(result)
	g.generalized = result
	logging.Generalizer("%s: generalized %d observations into %d groups", g.owner, len(obs), result.Len())
	if err := g.notify(); err != nil {
		return nil, err
	}
	return result, nil
}
