package generalizer

import (
	"fmt"

	"nadico/internal/logging"
	"nadico/internal/nadico"
)

// markerPair is one category/marker combination.
type markerPair struct {
	category string
	marker   string
}

func (p markerPair) String() string { return p.category + ":" + p.marker }

// extractSocialMarkers collects the ordered union of the social markers of
// every expression reachable through conditions.
func extractSocialMarkers(e *nadico.Expression, into *nadico.MarkerMap) {
	if e == nil {
		return
	}
	if e.IsCombination() {
		for _, n := range e.Nested() {
			extractSocialMarkers(n, into)
		}
		return
	}
	if e.Attributes != nil {
		for _, cat := range e.Attributes.SocialMarkers.Categories() {
			for _, m := range e.Attributes.SocialMarkers.Get(cat).Items() {
				into.Add(cat, m)
			}
		}
	}
	if e.Conditions == nil {
		return
	}
	for _, v := range e.Conditions.Properties.Values() {
		if x, ok := v.(*nadico.Expression); ok {
			extractSocialMarkers(x, into)
		}
	}
}

func splitPairs(m *nadico.MarkerMap) []markerPair {
	var out []markerPair
	for _, cat := range m.Categories() {
		for _, v := range m.Get(cat).Items() {
			out = append(out, markerPair{category: cat, marker: v})
		}
	}
	return out
}

// powerset enumerates all subsets of items. For each item, every existing
// subset is followed by its extension with that item.
func powerset(items []markerPair) [][]markerPair {
	sets := [][]markerPair{{}}
	for _, it := range items {
		next := make([][]markerPair, 0, 2*len(sets))
		for _, s := range sets {
			with := make([]markerPair, len(s), len(s)+1)
			copy(with, s)
			next = append(next, s, append(with, it))
		}
		sets = next
	}
	return sets
}

func filterBySetSize(sets [][]markerPair, size int) [][]markerPair {
	var out [][]markerPair
	for _, s := range sets {
		if len(s) == size {
			out = append(out, s)
		}
	}
	return out
}

func pairsToMarkers(pairs []markerPair) *nadico.MarkerMap {
	m := nadico.NewMarkerMap()
	for _, p := range pairs {
		m.Add(p.category, p.marker)
	}
	return m
}

func maxSocialMarkers(obs []Observation) int {
	most := 0
	for _, o := range obs {
		if o.Expression == nil || o.Expression.Attributes == nil {
			continue
		}
		if n := o.Expression.Attributes.SocialMarkers.Len(); n > most {
			most = n
		}
	}
	return most
}

// GeneralizeValencedExpressionsOnHigherLevel groups observations by subsets
// of their social markers. Level k retains subsets of size
// maxSocialMarkers-k; an observation contributes one instance per retained
// subset it carries on every reachable action.
func (g *Generalizer) GeneralizeValencedExpressionsOnHigherLevel(obs []Observation, level int) (*nadico.ExpressionMap, error) {
	timer := logging.StartTimer(logging.CategoryGeneralizer, fmt.Sprintf("level-%d generalization", level))
	defer timer.Stop()

	result := nadico.NewExpressionMap(nadico.EqualAIC)
	if level < 1 {
		return result, fmt.Errorf("generalization level %d must be at least 1: %w", level, nadico.ErrInvalidInput)
	}
	copied := CopyValencedExpressions(obs)

	maxMarkers := maxSocialMarkers(copied)
	setSize := maxMarkers - level
	if setSize < 1 {
		logging.GeneralizerWarn("%s: generalization level %d exceeds maximum of %d for %d social markers",
			g.owner, level, maxMarkers-1, maxMarkers)
		return result, fmt.Errorf("level %d with %d social markers: %w", level, maxMarkers, ErrGeneralizationDepth)
	}

	union := nadico.NewMarkerMap()
	for _, o := range copied {
		extractSocialMarkers(o.Expression, union)
	}
	subsets := filterBySetSize(powerset(splitPairs(union)), setSize)
	logging.GeneralizerDebug("%s: level %d retains %d marker subsets of size %d", g.owner, level, len(subsets), setSize)

	for _, o := range copied {
		if o.Expression == nil {
			return nil, fmt.Errorf("nil observation: %w", nadico.ErrInvalidInput)
		}
		generalized, err := g.GeneralizeExpression(o.Expression)
		if err != nil {
			return nil, err
		}
		for _, subset := range subsets {
			if !containsAll(generalized, subset) {
				continue
			}
			retained := generalized.Copy()
			retained.ReplaceSocialMarkersRecursively(pairsToMarkers(subset))
			if err := aggregate(result, retained, o.Expression.Copy(), o.Valence); err != nil {
				return nil, err
			}
		}
	}
	g.applyStrategy(result)
	g.generalizedHigherLevel[level] = result
	if err := g.notify(); err != nil {
		return nil, fmt.Errorf("updating range after level %d generalization: %w: %w", level, nadico.ErrInvalidInput, err)
	}
	return result, nil
}

func containsAll(e *nadico.Expression, pairs []markerPair) bool {
	for _, p := range pairs {
		if !e.ContainsSocialMarkerRecursively(p.category, p.marker) {
			return false
		}
	}
	return true
}
