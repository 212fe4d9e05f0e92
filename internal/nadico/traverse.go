package nadico

import "fmt"

// ContainsSocialMarkerRecursively reports whether every action or statement
// reachable through previous actions and nested elements carries marker
// under category.
func (e *Expression) ContainsSocialMarkerRecursively(category, marker string) bool {
	if e.IsCombination() {
		for _, n := range e.nested {
			if !n.ContainsSocialMarkerRecursively(category, marker) {
				return false
			}
		}
		return true
	}
	if e.Attributes == nil || !e.Attributes.SocialMarkers.Has(category, marker) {
		return false
	}
	if prev := e.Conditions.PreviousAction(); prev != nil {
		return prev.ContainsSocialMarkerRecursively(category, marker)
	}
	return true
}

// ContainsActivityRecursively reports whether any reachable action or
// statement performs activity.
func (e *Expression) ContainsActivityRecursively(activity string) bool {
	if e.IsCombination() {
		for _, n := range e.nested {
			if n.ContainsActivityRecursively(activity) {
				return true
			}
		}
		return false
	}
	if e.Aim != nil && e.Aim.Activity == activity {
		return true
	}
	if prev := e.Conditions.PreviousAction(); prev != nil {
		return prev.ContainsActivityRecursively(activity)
	}
	return false
}

// ContainsAnyActivityRecursively reports whether any of activities is
// reachable from e.
func (e *Expression) ContainsAnyActivityRecursively(activities ...string) bool {
	for _, a := range activities {
		if e.ContainsActivityRecursively(a) {
			return true
		}
	}
	return false
}

// CountActivityOccurrenceRecursively counts the reachable actions and
// statements performing activity, summing across all nested elements.
func (e *Expression) CountActivityOccurrenceRecursively(activity string) int {
	if e.IsCombination() {
		ct := 0
		for _, n := range e.nested {
			ct += n.CountActivityOccurrenceRecursively(activity)
		}
		return ct
	}
	ct := 0
	if e.Aim != nil && e.Aim.Activity == activity {
		ct++
	}
	if prev := e.Conditions.PreviousAction(); prev != nil {
		ct += prev.CountActivityOccurrenceRecursively(activity)
	}
	return ct
}

// ReplaceSocialMarkersRecursively installs markers as the social markers of
// every reachable action and statement.
func (e *Expression) ReplaceSocialMarkersRecursively(markers *MarkerMap) {
	if e.IsCombination() {
		for _, n := range e.nested {
			n.ReplaceSocialMarkersRecursively(markers)
		}
		return
	}
	if e.Attributes == nil {
		e.Attributes = NewAttributes("", "")
	}
	e.Attributes.ReplaceSocialMarkers(markers)
	if prev := e.Conditions.PreviousAction(); prev != nil {
		prev.ReplaceSocialMarkersRecursively(markers)
	}
}

// NumberOfPrecedingExpressions counts the previous-action hops behind e.
func (e *Expression) NumberOfPrecedingExpressions() int {
	ct := 0
	for prev := e.Conditions.PreviousAction(); prev != nil; prev = prev.Conditions.PreviousAction() {
		ct++
	}
	return ct
}

// TotalExpressionSequenceLength is the number of expressions in the chain
// ending at e.
func (e *Expression) TotalExpressionSequenceLength() int {
	return e.NumberOfPrecedingExpressions() + 1
}

// BacktrackPrecedingExpressions walks levels previous-action hops back from
// e. Zero returns e itself.
func (e *Expression) BacktrackPrecedingExpressions(levels int) (*Expression, error) {
	if levels < 0 {
		return nil, fmt.Errorf("backtracking %d levels: %w", levels, ErrInvalidInput)
	}
	cur := e
	for i := 0; i < levels; i++ {
		cur = cur.Conditions.PreviousAction()
		if cur == nil {
			return nil, fmt.Errorf("chain shorter than %d levels: %w", levels, ErrInvalidInput)
		}
	}
	return cur, nil
}

// InitialExpressions returns the expression that closes the first n
// expressions of the chain, i.e. the prefix of length n.
func (e *Expression) InitialExpressions(n int) (*Expression, error) {
	if n < 1 {
		return nil, fmt.Errorf("cannot return %d initial expressions: %w", n, ErrInvalidInput)
	}
	total := e.TotalExpressionSequenceLength()
	if n > total {
		return nil, fmt.Errorf("sequence length %d too small to extract %d entries: %w", total, n, ErrInvalidInput)
	}
	return e.BacktrackPrecedingExpressions(total - n)
}

// DeleteFromChain removes target (by identity) from the chain below e:
// from nested elements of combinations or as a previous action. It reports
// whether target was found. e itself cannot be removed.
func (e *Expression) DeleteFromChain(target *Expression) bool {
	if e == target || target == nil {
		return false
	}
	if e.IsCombination() {
		for _, n := range e.nested {
			if n == target {
				return e.RemoveNested(n)
			}
			if n.DeleteFromChain(target) {
				return true
			}
		}
		return false
	}
	prev := e.Conditions.PreviousAction()
	if prev == nil {
		return false
	}
	if prev == target {
		e.Conditions.RemovePreviousAction()
		return true
	}
	return prev.DeleteFromChain(target)
}

// PrecedingExpressionWithDifferentAttributes walks back from e and returns
// the first expression whose attributes differ from subject. A combination
// is returned whole if any of its direct elements differs. It returns nil
// if every reachable expression carries subject's attributes.
func (e *Expression) PrecedingExpressionWithDifferentAttributes(subject *Attributes) *Expression {
	if e.IsCombination() {
		for _, n := range e.nested {
			if !n.Attributes.Equal(subject) {
				return e
			}
		}
		for _, n := range e.nested {
			if d := n.PrecedingExpressionWithDifferentAttributes(subject); d != nil {
				return d
			}
		}
		return nil
	}
	if e.Attributes == nil || !e.Attributes.Equal(subject) {
		return e
	}
	if prev := e.Conditions.PreviousAction(); prev != nil {
		return prev.PrecedingExpressionWithDifferentAttributes(subject)
	}
	return nil
}
