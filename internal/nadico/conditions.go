package nadico

import (
	"fmt"
	"reflect"
)

// PreviousAction is the reserved conditions key holding the preceding action
// of a chain.
const PreviousAction = "PREVIOUS_ACTION"

// Conditions is a property bag; PreviousAction holds an *Expression.
type Conditions struct {
	Properties *Properties
}

// NewConditions returns conditions with the given key/value properties.
func NewConditions(props ...interface{}) *Conditions {
	return &Conditions{Properties: NewProperties(props...)}
}

// NewConditionsAfter returns conditions whose previous action is prev.
func NewConditionsAfter(prev *Expression) *Conditions {
	return NewConditions().SetPreviousAction(prev)
}

func (c *Conditions) AddProperties(props ...interface{}) *Conditions {
	p := NewProperties(props...)
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		c.Properties.Set(k, v)
	}
	return c
}

// SetPreviousAction links prev as the preceding action. nil unlinks.
func (c *Conditions) SetPreviousAction(prev *Expression) *Conditions {
	if prev == nil {
		c.Properties.Delete(PreviousAction)
		return c
	}
	c.Properties.Set(PreviousAction, prev)
	return c
}

// PreviousAction returns the preceding expression, or nil.
func (c *Conditions) PreviousAction() *Expression {
	if c == nil {
		return nil
	}
	v, ok := c.Properties.Get(PreviousAction)
	if !ok {
		return nil
	}
	e, _ := v.(*Expression)
	return e
}

// RemovePreviousAction drops and returns the preceding expression.
func (c *Conditions) RemovePreviousAction() *Expression {
	prev := c.PreviousAction()
	c.Properties.Delete(PreviousAction)
	return prev
}

func (c *Conditions) Clear() *Conditions {
	c.Properties.Clear()
	return c
}

func (c *Conditions) CopyFrom(o *Conditions) *Conditions {
	if o == nil {
		return c
	}
	for _, k := range o.Properties.Keys() {
		v, _ := o.Properties.Get(k)
		c.Properties.Set(k, v)
	}
	return c
}

// Copy returns a deep copy; expressions held as values are copied too.
func (c *Conditions) Copy() *Conditions {
	if c == nil {
		return NewConditions()
	}
	return &Conditions{Properties: c.Properties.Clone()}
}

func (c *Conditions) IsEmpty() bool {
	return c == nil || c.Properties.Len() == 0
}

func (c *Conditions) equal(o *Conditions, mode Mode) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Properties.equal(o.Properties, mode)
}

func (c *Conditions) fingerprint(mode Mode) string {
	if c == nil {
		return "C<nil>"
	}
	return "C" + c.Properties.fingerprint(mode)
}

func (c *Conditions) String() string {
	if c == nil {
		return "null"
	}
	if c.IsEmpty() {
		return "C(*)"
	}
	return "C(" + c.Properties.String() + ")"
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *Expression:
		return t.Copy()
	case *Attributes:
		return t.Copy()
	case *Aim:
		return t.Copy()
	case *StringSet:
		return t.Clone()
	default:
		return v
	}
}

func valuesEqual(a, b interface{}, mode Mode) bool {
	switch x := a.(type) {
	case *Expression:
		y, ok := b.(*Expression)
		return ok && x.Equal(y, mode)
	case *Attributes:
		y, ok := b.(*Attributes)
		return ok && x.Equal(y)
	case *Aim:
		y, ok := b.(*Aim)
		return ok && x.equal(y, mode)
	case *StringSet:
		y, ok := b.(*StringSet)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}

func valueFingerprint(v interface{}, mode Mode) string {
	switch t := v.(type) {
	case *Expression:
		return t.Fingerprint(mode)
	case *Attributes:
		return t.fingerprint()
	case *Aim:
		return t.fingerprint(mode)
	case *StringSet:
		return "S[" + t.sortedKey() + "]"
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// PropertyValuesEqual compares two aim or condition property values with
// full nADICO equality for nested components.
func PropertyValuesEqual(a, b interface{}) bool {
	return valuesEqual(a, b, EqualNADICO)
}
