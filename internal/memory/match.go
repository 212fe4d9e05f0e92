package memory

import (
	"nadico/internal/nadico"
)

// match reports whether candidate holds query. With preceding set, query
// must appear below the top of candidate's chain: strict matching compares
// against the prefix of query's length, wildcard matching backtracks one
// level at a time until the AIC components match.
func match(query, candidate *nadico.Expression, preceding, strict bool) bool {
	switch {
	case query.IsCombination() && candidate.IsCombination():
		return matchCombinations(query, candidate, preceding, strict)
	case query.Kind() != candidate.Kind():
		return false
	}
	return matchActions(query, candidate, preceding, strict)
}

func matchCombinations(query, candidate *nadico.Expression, preceding, strict bool) bool {
	if query.Combinator() != candidate.Combinator() {
		return false
	}
	qn, cn := query.Nested(), candidate.Nested()
	if len(qn) > len(cn) {
		return false
	}
	for i := range qn {
		if !match(qn[i], cn[i], preceding, strict) {
			return false
		}
	}
	return true
}

func matchActions(query, candidate *nadico.Expression, preceding, strict bool) bool {
	if !preceding {
		return MatchAIC(query, candidate, strict)
	}
	length := query.TotalExpressionSequenceLength()
	if candidate.TotalExpressionSequenceLength() <= length {
		return false
	}
	if strict {
		prefix, err := candidate.InitialExpressions(length)
		if err != nil {
			return false
		}
		return MatchAIC(query, prefix, strict)
	}
	for cur := candidate.Conditions.PreviousAction(); cur != nil; cur = cur.Conditions.PreviousAction() {
		if MatchAIC(query, cur, strict) {
			return true
		}
	}
	return false
}

// MatchAIC matches the attributes, aim and conditions of query against
// candidate. Empty components of query act as wildcards; with strict set,
// empty query conditions only match empty candidate conditions.
func MatchAIC(query, candidate *nadico.Expression, strict bool) bool {
	return MatchAttributes(query.Attributes, candidate.Attributes) &&
		MatchAim(query.Aim, candidate.Aim) &&
		MatchConditions(query.Conditions, candidate.Conditions, strict)
}

// MatchAttributes requires every marker category of query to be present in
// candidate with the same markers.
func MatchAttributes(query, candidate *nadico.Attributes) bool {
	if query == nil || query.IsWildcard() {
		return true
	}
	if candidate == nil {
		return false
	}
	return markersContained(query.IndividualMarkers, candidate.IndividualMarkers) &&
		markersContained(query.SocialMarkers, candidate.SocialMarkers)
}

func markersContained(query, candidate *nadico.MarkerMap) bool {
	for _, cat := range query.Categories() {
		other := candidate.Get(cat)
		if other == nil || !other.Equal(query.Get(cat)) {
			return false
		}
	}
	return true
}

// MatchAim requires the activity of query, if any, and each of its
// properties to be present in candidate.
func MatchAim(query, candidate *nadico.Aim) bool {
	if query == nil || query.IsWildcard() {
		return true
	}
	if candidate == nil {
		return false
	}
	if query.Activity != "" && query.Activity != candidate.Activity {
		return false
	}
	return propertiesContained(query.Properties, candidate.Properties)
}

// MatchConditions requires each property of query to be present in
// candidate with an equal value.
func MatchConditions(query, candidate *nadico.Conditions, strict bool) bool {
	if query.IsEmpty() {
		return !strict || candidate.IsEmpty()
	}
	if candidate == nil {
		return false
	}
	return propertiesContained(query.Properties, candidate.Properties)
}

func propertiesContained(query, candidate *nadico.Properties) bool {
	for _, k := range query.Keys() {
		want, _ := query.Get(k)
		got, ok := candidate.Get(k)
		if !ok || !nadico.PropertyValuesEqual(got, want) {
			return false
		}
	}
	return true
}
