// Package memory implements a bounded action memory of valenced nADICO
// expressions. Slots are overwritten oldest first and nothing is merged on
// insertion; all aggregation happens at query time.
package memory

import (
	"fmt"

	"nadico/internal/deontic"
	"nadico/internal/logging"
	"nadico/internal/nadico"
)

// Generalizer abstracts expressions before comparison.
type Generalizer interface {
	GeneralizeExpression(e *nadico.Expression) (*nadico.Expression, error)
}

type slot struct {
	key   *nadico.Expression
	value float64
}

// Memory is a fixed-capacity ring of (expression, valence) slots. It is not
// safe for concurrent use.
type Memory struct {
	owner       string
	slots       []*slot
	next        int
	generalizer Generalizer
}

// New creates a memory holding up to capacity entries. gen may be nil when
// no generalized queries are issued.
func New(capacity int, owner string, gen Generalizer) (*Memory, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("memory capacity must be positive, got %d: %w", capacity, nadico.ErrInvalidInput)
	}
	return &Memory{owner: owner, slots: make([]*slot, capacity), generalizer: gen}, nil
}

func (m *Memory) Owner() string { return m.owner }
func (m *Memory) Capacity() int { return len(m.slots) }

// Len returns the number of occupied slots.
func (m *Memory) Len() int {
	n := 0
	for _, s := range m.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// Clear empties every slot.
func (m *Memory) Clear() {
	for i := range m.slots {
		m.slots[i] = nil
	}
	m.next = 0
}

// Memorize stores a copy of e with value, overwriting the oldest slot once
// the memory is full.
func (m *Memory) Memorize(e *nadico.Expression, value float64) error {
	if e == nil {
		return fmt.Errorf("cannot memorize nil expression: %w", nadico.ErrInvalidInput)
	}
	m.slots[m.next] = &slot{key: e.Copy(), value: value}
	m.next = (m.next + 1) % len(m.slots)
	logging.MemoryDebug("%s: memorized %s with value %v", m.owner, e.AICString(), value)
	return nil
}

// Keys returns the stored expressions in slot order.
func (m *Memory) Keys() []*nadico.Expression {
	var keys []*nadico.Expression
	for _, s := range m.slots {
		if s != nil {
			keys = append(keys, s.key)
		}
	}
	return keys
}

func (m *Memory) generalize(e *nadico.Expression) (*nadico.Expression, error) {
	if m.generalizer == nil {
		return nil, fmt.Errorf("%w: memory of %s has no generalizer for generalized queries", deontic.ErrConfiguration, m.owner)
	}
	return m.generalizer.GeneralizeExpression(e)
}

// ValueForKey aggregates the values of all slots whose top-level expression
// matches stmt. ok is false when no slot matches.
func (m *Memory) ValueForKey(stmt *nadico.Expression, agg Aggregation, generalize, strict bool) (value float64, ok bool, err error) {
	if !agg.valid() {
		return 0, false, fmt.Errorf("invalid value aggregation %v: %w", agg, nadico.ErrInvalidInput)
	}
	var acc countSum
	for _, s := range m.slots {
		if s == nil {
			continue
		}
		entry := s.key
		if generalize {
			if entry, err = m.generalize(entry); err != nil {
				return 0, false, err
			}
		}
		if match(stmt, entry, false, strict) {
			acc.count++
			acc.sum += s.value
		}
	}
	if acc.count == 0 {
		return 0, false, nil
	}
	return acc.value(agg), true, nil
}

// Value sums the values of slots strictly matching stmt.
func (m *Memory) Value(stmt *nadico.Expression) (float64, bool) {
	v, ok, _ := m.ValueForKey(stmt, AggregationSum, false, true)
	return v, ok
}

// CountForKey counts the slots strictly matching stmt.
func (m *Memory) CountForKey(stmt *nadico.Expression) (float64, bool) {
	v, ok, _ := m.ValueForKey(stmt, AggregationCount, false, true)
	return v, ok
}

// MeanValueForKey averages the values of slots strictly matching stmt.
func (m *Memory) MeanValueForKey(stmt *nadico.Expression) (float64, bool) {
	v, ok, _ := m.ValueForKey(stmt, AggregationMean, false, true)
	return v, ok
}

func (m *Memory) extreme(highest bool) (Entry, bool) {
	var best *slot
	for _, s := range m.slots {
		if s == nil {
			continue
		}
		if best == nil || (highest && s.value > best.value) || (!highest && s.value < best.value) {
			best = s
		}
	}
	if best == nil {
		return Entry{}, false
	}
	return Entry{Key: best.key, Value: best.value}, true
}

// MaxExpression returns the slot with the highest raw value; ties go to the
// earliest slot.
func (m *Memory) MaxExpression() (Entry, bool) { return m.extreme(true) }

// KeyForHighestValue returns the expression of the highest-valued slot.
func (m *Memory) KeyForHighestValue() *nadico.Expression {
	e, _ := m.extreme(true)
	return e.Key
}

// KeyForLowestValue returns the expression of the lowest-valued slot.
func (m *Memory) KeyForLowestValue() *nadico.Expression {
	e, _ := m.extreme(false)
	return e.Key
}
