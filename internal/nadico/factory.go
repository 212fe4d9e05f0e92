package nadico

import (
	"fmt"

	"nadico/internal/deontic"
)

// Factory builds expressions bound to a deontic range and optionally
// validates their shape.
type Factory struct {
	rng      *deontic.Range
	validate bool
}

// NewFactory returns a validating factory for r. r may be nil.
func NewFactory(r *deontic.Range) *Factory {
	return &Factory{rng: r, validate: true}
}

// NewUnvalidatedFactory returns a factory that skips shape validation, for
// incremental construction.
func NewUnvalidatedFactory(r *deontic.Range) *Factory {
	return &Factory{rng: r}
}

func (f *Factory) Range() *deontic.Range { return f.rng }

// CreateAction returns a new action. Nil components stay nil.
func (f *Factory) CreateAction(a *Attributes, i *Aim, c *Conditions) (*Expression, error) {
	e := &Expression{kind: KindAction, rng: f.rng, Attributes: a, Aim: i, Conditions: c}
	if err := f.Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}

// CreateActionWithEmptyInstances returns an action with empty aim and
// conditions. i may be nil.
func (f *Factory) CreateActionWithEmptyInstances(a *Attributes, i *Aim) (*Expression, error) {
	if i == nil {
		i = NewAim("")
	}
	return f.CreateAction(a, i, NewConditions())
}

// CreateStatement returns a new statement. deontic and orElse may be nil.
func (f *Factory) CreateStatement(a *Attributes, d *float64, i *Aim, c *Conditions, orElse *Expression) (*Expression, error) {
	e := &Expression{kind: KindStatement, rng: f.rng, Attributes: a, Aim: i, Conditions: c}
	if d != nil {
		e.SetDeontic(*d)
	}
	if err := e.SetOrElse(orElse); err != nil {
		return nil, err
	}
	if err := f.Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}

// CreateCombination joins xs under combinator c.
func (f *Factory) CreateCombination(c Combinator, xs ...*Expression) (*Expression, error) {
	if c == "" {
		c = DefaultCombinator
	}
	e := &Expression{rng: f.rng}
	if err := e.MakeCombination(c); err != nil {
		return nil, err
	}
	for _, x := range xs {
		next, err := e.AddExpression(x, "")
		if err != nil {
			return nil, err
		}
		e = next
	}
	if err := f.Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks combination legality when validation is enabled.
func (f *Factory) Validate(e *Expression) error {
	if !f.validate || !e.IsCombination() {
		return nil
	}
	switch {
	case e.Attributes != nil:
		return fmt.Errorf("combination must have empty attributes: %w", ErrExpressionShape)
	case e.Aim != nil:
		return fmt.Errorf("combination must have empty aim: %w", ErrExpressionShape)
	case e.Conditions != nil:
		return fmt.Errorf("combination must have empty conditions: %w", ErrExpressionShape)
	case !e.combinator.Valid():
		return fmt.Errorf("combination must have valid combinator, got %q: %w", e.combinator, ErrExpressionShape)
	}
	return nil
}

func (f *Factory) String() string {
	return fmt.Sprintf("Factory[validate=%t, range=%v]", f.validate, f.rng)
}
