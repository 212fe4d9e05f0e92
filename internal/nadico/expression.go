package nadico

import (
	"fmt"

	"nadico/internal/deontic"
)

// Kind tags the variant of an Expression.
type Kind int

const (
	KindAction Kind = iota
	KindStatement
	KindCombination
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "ACTION"
	case KindStatement:
		return "STATEMENT"
	case KindCombination:
		return "COMBINATION"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Combinator joins the nested elements of a combination.
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
	Xor Combinator = "XOR"

	// DefaultCombinator is used when a combination is created without one.
	DefaultCombinator = And
)

// Valid reports whether c is one of AND, OR, XOR.
func (c Combinator) Valid() bool {
	switch c {
	case And, Or, Xor:
		return true
	}
	return false
}

// Expression is a nADICO action, statement or combination.
//
// Actions and statements carry the ABIC components; combinations carry a
// combinator and nested elements and keep the ABIC fields nil. The parent
// is a back reference maintained by SetParent and never owned.
type Expression struct {
	Attributes *Attributes
	Deontic    *float64
	Aim        *Aim
	Conditions *Conditions

	Count           *int
	Probability     *float64
	DeonticInverted bool

	kind       Kind
	level      int
	parent     *Expression
	orElse     *Expression
	nested     []*Expression
	combinator Combinator
	rng        *deontic.Range
}

func (e *Expression) Kind() Kind             { return e.kind }
func (e *Expression) IsAction() bool         { return e.kind == KindAction }
func (e *Expression) IsStatement() bool      { return e.kind == KindStatement }
func (e *Expression) IsCombination() bool    { return e.kind == KindCombination }
func (e *Expression) Level() int             { return e.level }
func (e *Expression) Parent() *Expression    { return e.parent }
func (e *Expression) OrElse() *Expression    { return e.orElse }
func (e *Expression) Combinator() Combinator { return e.combinator }

// Nested returns the nested elements of a combination in insertion order.
func (e *Expression) Nested() []*Expression {
	out := make([]*Expression, len(e.nested))
	copy(out, e.nested)
	return out
}

// Range returns the deontic range of the root of this expression's tree.
func (e *Expression) Range() *deontic.Range {
	if e.parent != nil {
		return e.parent.Range()
	}
	return e.rng
}

// SetRange attaches a deontic range handle to e.
func (e *Expression) SetRange(r *deontic.Range) { e.rng = r }

// SetDeontic stores v as the deontic value.
func (e *Expression) SetDeontic(v float64) { e.Deontic = &v }

// DeonticValue returns the deontic value, or 0 when none is set.
func (e *Expression) DeonticValue() float64 {
	if e.Deontic == nil {
		return 0
	}
	return *e.Deontic
}

// SetCount stores n as the instance count.
func (e *Expression) SetCount(n int) { e.Count = &n }

// CountValue returns the instance count, or 0 when none is set.
func (e *Expression) CountValue() int {
	if e.Count == nil {
		return 0
	}
	return *e.Count
}

func (e *Expression) SetProbability(p float64) { e.Probability = &p }

// SetParent links e below p and adjusts nesting levels. Elements nested in a
// combination share the combination's parent; an or-else is parented by its
// owning statement.
func (e *Expression) SetParent(p *Expression) {
	if e.parent == p {
		return
	}
	e.parent = p
	if p != nil {
		e.level = p.level + 1
	} else {
		e.level = 0
	}
	if e.IsCombination() {
		for _, n := range e.nested {
			n.SetParent(e.parent)
		}
	}
	if e.orElse != nil {
		e.orElse.SetParent(e)
	}
}

// DeleteParent detaches e and resets it to the top level.
func (e *Expression) DeleteParent() { e.SetParent(nil) }

// SetOrElse installs o as the consequence of e, replacing any existing one.
// A nil o is ignored.
func (e *Expression) SetOrElse(o *Expression) error {
	if o == nil {
		return nil
	}
	if e.IsAction() {
		return fmt.Errorf("cannot add or-else to action: %w", ErrExpressionShape)
	}
	if o.IsAction() {
		return fmt.Errorf("or-else must be a statement or combination: %w", ErrExpressionShape)
	}
	o.SetParent(e)
	e.orElse = o
	return nil
}

// ClearOrElse removes the consequence of e.
func (e *Expression) ClearOrElse() { e.orElse = nil }

// MakeAction turns an action-shaped expression into an action. Statements and
// combinations cannot become actions.
func (e *Expression) MakeAction() error {
	if !e.IsAction() {
		return fmt.Errorf("cannot convert %s to action: %w", e.kind, ErrExpressionShape)
	}
	return nil
}

// MakeStatement converts e to a statement in place. A combination with a
// single element collapses into that element; one with several elements
// stays a combination whose elements are converted.
func (e *Expression) MakeStatement() *Expression {
	if e.IsCombination() {
		switch len(e.nested) {
		case 0:
		case 1:
			src := e.nested[0]
			e.Attributes = src.Attributes
			e.Deontic = src.Deontic
			e.Aim = src.Aim
			e.Conditions = src.Conditions
			e.orElse = src.orElse
			e.nested = nil
			e.combinator = ""
		default:
			for _, n := range e.nested {
				n.MakeStatement()
			}
			return e
		}
	}
	e.kind = KindStatement
	if e.orElse != nil {
		e.orElse.SetParent(e)
	}
	return e
}

// MakeStatementRecursively converts e, every expression held in its
// conditions and every nested element to statements.
func (e *Expression) MakeStatementRecursively() *Expression {
	e.MakeStatement()
	if e.Conditions != nil {
		for _, v := range e.Conditions.Properties.Values() {
			if x, ok := v.(*Expression); ok && x != nil {
				x.MakeStatementRecursively()
			}
		}
	}
	if e.IsCombination() {
		for _, n := range e.nested {
			n.MakeStatementRecursively()
		}
	}
	return e
}

// MakeCombination converts e to a combination. Existing ABIC content moves
// into a new nested statement. An empty combinator selects DefaultCombinator.
func (e *Expression) MakeCombination(c Combinator) error {
	if e.IsCombination() {
		return fmt.Errorf("combination cannot be made into combination: %w", ErrExpressionShape)
	}
	if c == "" {
		c = DefaultCombinator
	}
	if !c.Valid() {
		return fmt.Errorf("combinator %q: %w", c, ErrInvalidInput)
	}
	if e.Attributes != nil || e.Aim != nil || e.Conditions != nil {
		st := &Expression{
			kind:       KindStatement,
			Attributes: e.Attributes,
			Deontic:    e.Deontic,
			Aim:        e.Aim,
			Conditions: e.Conditions,
			rng:        e.rng,
		}
		if e.orElse != nil {
			if err := st.SetOrElse(e.orElse); err != nil {
				return err
			}
		}
		st.SetParent(e.parent)
		e.nested = append(e.nested, st)
	}
	e.kind = KindCombination
	e.combinator = c
	e.Attributes = nil
	e.Deontic = nil
	e.Aim = nil
	e.Conditions = nil
	e.orElse = nil
	return nil
}

func (e *Expression) appendNested(xs ...*Expression) {
	for _, x := range xs {
		dup := false
		for _, n := range e.nested {
			if n == x {
				dup = true
				break
			}
		}
		if !dup {
			e.nested = append(e.nested, x)
		}
	}
}

// AddExpression joins x to e on the same nesting level and returns the
// resulting expression, which is e itself unless the combinator change
// forced x to become the enclosing combination. An empty combinator keeps
// the combinator of e.
func (e *Expression) AddExpression(x *Expression, c Combinator) (*Expression, error) {
	if c != "" && !c.Valid() {
		return nil, fmt.Errorf("combinator %q: %w", c, ErrInvalidInput)
	}
	if x == nil {
		return nil, fmt.Errorf("nil expression added to %s: %w", e, ErrInvalidInput)
	}
	if e.combinator == "" && c == "" {
		return nil, fmt.Errorf("first element of a combination needs a combinator: %w", ErrInvalidInput)
	}

	// Expressions with an or-else stay separate entities.
	if e.orElse != nil || x.orElse != nil {
		if !e.IsCombination() {
			if err := e.MakeCombination(c); err != nil {
				return nil, err
			}
		}
		x.SetParent(e.parent)
		e.appendNested(x)
		return e, nil
	}

	if !e.IsCombination() {
		if err := e.MakeCombination(c); err != nil {
			return nil, err
		}
		x.SetParent(e.parent)
		if x.IsCombination() && x.combinator == e.combinator {
			e.appendNested(x.nested...)
		} else {
			e.appendNested(x)
		}
		return e, nil
	}

	switch x.kind {
	case KindCombination:
		x.SetParent(e.parent)
		if x.combinator == e.combinator {
			e.appendNested(x.nested...)
		} else {
			e.appendNested(x)
		}
		return e, nil
	case KindAction, KindStatement:
		if c != "" && c != e.combinator {
			if err := x.MakeCombination(c); err != nil {
				return nil, err
			}
			x.SetParent(e.parent)
			return x.AddExpression(e, "")
		}
		x.SetParent(e.parent)
		e.appendNested(x)
		return e, nil
	}
	return nil, fmt.Errorf("unhandled shape adding %s to %s: %w", x.kind, e.kind, ErrExpressionShape)
}

// AddExpressions adds each of xs in turn.
func (e *Expression) AddExpressions(c Combinator, xs ...*Expression) (*Expression, error) {
	cur := e
	for _, x := range xs {
		next, err := cur.AddExpression(x, c)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// RemoveNested drops x (by identity) from the nested elements.
func (e *Expression) RemoveNested(x *Expression) bool {
	for i, n := range e.nested {
		if n == x {
			e.nested = append(e.nested[:i], e.nested[i+1:]...)
			return true
		}
	}
	return false
}

// Copy returns a deep copy of e. The copy keeps the deontic range handle of
// e's tree but not its parent.
func (e *Expression) Copy() *Expression {
	if e == nil {
		return nil
	}
	out := &Expression{
		kind:            e.kind,
		combinator:      e.combinator,
		DeonticInverted: e.DeonticInverted,
		rng:             e.Range(),
	}
	if e.Attributes != nil {
		out.Attributes = e.Attributes.Copy()
	}
	if e.Aim != nil {
		out.Aim = e.Aim.Copy()
	}
	if e.Conditions != nil {
		out.Conditions = e.Conditions.Copy()
	}
	if e.Deontic != nil {
		out.SetDeontic(*e.Deontic)
	}
	if e.Count != nil {
		out.SetCount(*e.Count)
	}
	if e.Probability != nil {
		out.SetProbability(*e.Probability)
	}
	for _, n := range e.nested {
		out.nested = append(out.nested, n.Copy())
	}
	if e.orElse != nil {
		o := e.orElse.Copy()
		o.SetParent(out)
		out.orElse = o
	}
	return out
}

// SumOfConsequentialDeontics sums the deontic values of the statements
// nested in a combined or-else.
func (e *Expression) SumOfConsequentialDeontics() float64 {
	var sum float64
	o := e.orElse
	if o == nil || !o.IsCombination() {
		return sum
	}
	for _, n := range o.nested {
		if n.IsCombination() {
			sum += n.SumOfConsequentialDeontics()
		} else {
			sum += n.DeonticValue()
		}
	}
	return sum
}

// NormativeValence classifies the deontic value of e with the range of its
// tree, or returns Neutral when either is missing.
func (e *Expression) NormativeValence() deontic.Valence {
	r := e.Range()
	if r == nil || e.Deontic == nil {
		return deontic.Neutral
	}
	return r.NormativeValence(*e.Deontic)
}
