package memory

import (
	"fmt"
	"sort"

	"nadico/internal/logging"
	"nadico/internal/nadico"
)

// Query configures a subsequence search.
type Query struct {
	// Generalize compares generalized expressions.
	Generalize bool
	// Strict requires exact condition matches; otherwise empty query
	// conditions act as wildcards and preceding matches may skip levels.
	Strict bool
	// ReturnComplete returns whole stored chains instead of the searched
	// prefix plus its successor.
	ReturnComplete bool
	// Aggregation combines the values of matching slots.
	Aggregation Aggregation
}

func (q Query) withDefaults() Query {
	if q.Aggregation == 0 {
		q.Aggregation = AggregationSum
	}
	return q
}

// search finds stored chains holding stmt, either as their top-level
// expression or, with preceding set, somewhere below it.
func (m *Memory) search(stmt *nadico.Expression, preceding, maxOnly bool, q Query) (Results, error) {
	q = q.withDefaults()
	if !q.Aggregation.valid() {
		return nil, fmt.Errorf("invalid value aggregation %v: %w", q.Aggregation, nadico.ErrInvalidInput)
	}
	if stmt == nil {
		return nil, fmt.Errorf("nil query expression: %w", nadico.ErrInvalidInput)
	}
	query := stmt.Copy()
	var err error
	if q.Generalize {
		if query, err = m.generalize(query); err != nil {
			return nil, err
		}
	}

	var out Results
	for _, item := range m.Keys() {
		if q.Generalize {
			if item, err = m.generalize(item); err != nil {
				return nil, err
			}
		}
		if out.Has(item) || !match(query, item, preceding, q.Strict) {
			continue
		}
		value, _, err := m.ValueForKey(item, q.Aggregation, q.Generalize, q.Strict)
		if err != nil {
			return nil, err
		}
		key := item
		// A match without a successor is returned whole.
		if n := stmt.TotalExpressionSequenceLength() + 1; !q.ReturnComplete && n <= item.TotalExpressionSequenceLength() {
			if key, err = item.InitialExpressions(n); err != nil {
				return nil, err
			}
		}
		out = out.put(key, value)
	}
	if maxOnly {
		out = out.maxOnly()
	}
	return out, nil
}

// ExpressionsAsLastExpression returns stored chains whose top-level
// expression matches stmt. Complete chains are always returned.
func (m *Memory) ExpressionsAsLastExpression(stmt *nadico.Expression, q Query) (Results, error) {
	q.ReturnComplete = true
	return m.search(stmt, false, false, q)
}

// MaxExpressionsAsLastExpression is ExpressionsAsLastExpression reduced to
// the entries sharing the highest value.
func (m *Memory) MaxExpressionsAsLastExpression(stmt *nadico.Expression, q Query) (Results, error) {
	q.ReturnComplete = true
	return m.search(stmt, false, true, q)
}

// MaxExpressionAsLastExpression returns the first highest-valued match.
func (m *Memory) MaxExpressionAsLastExpression(stmt *nadico.Expression, q Query) (Entry, bool, error) {
	return first(m.MaxExpressionsAsLastExpression(stmt, q))
}

// ExpressionsAsPreviousExpression returns stored chains that hold stmt
// below their top-level expression.
func (m *Memory) ExpressionsAsPreviousExpression(stmt *nadico.Expression, q Query) (Results, error) {
	return m.search(stmt, true, false, q)
}

// MaxExpressionsAsPreviousExpression is ExpressionsAsPreviousExpression
// reduced to the entries sharing the highest value.
func (m *Memory) MaxExpressionsAsPreviousExpression(stmt *nadico.Expression, q Query) (Results, error) {
	return m.search(stmt, true, true, q)
}

// MaxExpressionAsPreviousExpression returns the first highest-valued match.
func (m *Memory) MaxExpressionAsPreviousExpression(stmt *nadico.Expression, q Query) (Entry, bool, error) {
	return first(m.MaxExpressionsAsPreviousExpression(stmt, q))
}

// ExpressionsOnAnyLevel merges the previous-expression and last-expression
// searches. Entries found by both take the last-expression value.
func (m *Memory) ExpressionsOnAnyLevel(stmt *nadico.Expression, q Query) (Results, error) {
	return m.anyLevel(stmt, false, q)
}

// MaxExpressionsOnAnyLevel merges the maximum entries of both searches.
func (m *Memory) MaxExpressionsOnAnyLevel(stmt *nadico.Expression, q Query) (Results, error) {
	return m.anyLevel(stmt, true, q)
}

func (m *Memory) anyLevel(stmt *nadico.Expression, maxOnly bool, q Query) (Results, error) {
	previous, err := m.search(stmt, true, maxOnly, q)
	if err != nil {
		return nil, err
	}
	same, err := m.search(stmt, false, maxOnly, q)
	if err != nil {
		return nil, err
	}
	for _, e := range same {
		previous = previous.put(e.Key, e.Value)
	}
	logging.MemoryDebug("%s: found %d entries for %s on any level", m.owner, len(previous), stmt.AICString())
	return previous, nil
}

func first(r Results, err error) (Entry, bool, error) {
	if err != nil || len(r) == 0 {
		return Entry{}, false, err
	}
	return r[0], true, nil
}

// RankedExpressions generalizes every stored expression, groups equal
// generalizations and aggregates their values. Entries are ordered by value,
// highest first; ties keep slot order.
func (m *Memory) RankedExpressions(agg Aggregation) (Results, error) {
	if !agg.valid() {
		return nil, fmt.Errorf("invalid value aggregation %v: %w", agg, nadico.ErrInvalidInput)
	}
	var keys []*nadico.Expression
	groups := make(map[string]*countSum)
	for _, s := range m.slots {
		if s == nil {
			continue
		}
		g, err := m.generalize(s.key)
		if err != nil {
			return nil, err
		}
		fp := g.Fingerprint(nadico.EqualNADICO)
		acc, ok := groups[fp]
		if !ok {
			acc = &countSum{}
			groups[fp] = acc
			keys = append(keys, g)
		}
		acc.count++
		acc.sum += s.value
	}
	out := make(Results, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{Key: k, Value: groups[k.Fingerprint(nadico.EqualNADICO)].value(agg)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

// AggregateValueForMaxActivity picks the best-ranked entry performing any
// of permissible and sums the values of all entries from that rank on whose
// chain contains its leading activity. The returned key is the first
// expression of the picked chain. ok is false when no entry qualifies.
func AggregateValueForMaxActivity(ranked Results, permissible ...string) (Entry, bool, error) {
	idx := -1
	for i, e := range ranked {
		if e.Key.ContainsAnyActivityRecursively(permissible...) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Entry{}, false, nil
	}
	leading, err := ranked[idx].Key.InitialExpressions(1)
	if err != nil {
		return Entry{}, false, err
	}
	activity := ""
	if leading.Aim != nil {
		activity = leading.Aim.Activity
	}
	sum := 0.0
	for _, e := range ranked[idx:] {
		if e.Key.ContainsActivityRecursively(activity) {
			sum += e.Value
		}
	}
	return Entry{Key: leading, Value: sum}, true, nil
}
