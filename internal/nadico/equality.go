package nadico

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Mode selects which components take part in expression equality.
type Mode int

const (
	// EqualAIC compares attributes, aim, conditions and combinator.
	EqualAIC Mode = iota
	// EqualADIC additionally compares the deontic value.
	EqualADIC
	// EqualNADICO compares everything: variant, level, parent, nested
	// elements, or-else and statistics.
	EqualNADICO
)

func (m Mode) String() string {
	switch m {
	case EqualAIC:
		return "AIC"
	case EqualADIC:
		return "ADIC"
	case EqualNADICO:
		return "nADICO"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Equal compares e and o at the granularity of mode. Nested elements of
// combinations are compared as sets in every mode. Parents are compared on
// AIC only.
func (e *Expression) Equal(o *Expression, mode Mode) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if e.combinator != o.combinator ||
		!e.Attributes.Equal(o.Attributes) ||
		!e.Aim.equal(o.Aim, mode) ||
		!e.Conditions.equal(o.Conditions, mode) ||
		!nestedEqual(e.nested, o.nested, mode) {
		return false
	}
	if mode >= EqualADIC && !floatPtrEqual(e.Deontic, o.Deontic) {
		return false
	}
	if mode == EqualNADICO {
		if e.kind != o.kind || e.level != o.level || e.DeonticInverted != o.DeonticInverted {
			return false
		}
		if !intPtrEqual(e.Count, o.Count) || !floatPtrEqual(e.Probability, o.Probability) {
			return false
		}
		if !e.orElse.Equal(o.orElse, mode) {
			return false
		}
		if (e.parent == nil) != (o.parent == nil) {
			return false
		}
		if e.parent != nil && !e.parent.shallowEqual(o.parent) {
			return false
		}
	}
	return true
}

// shallowEqual compares the ABIC components of a parent without following
// nested elements back to the child.
func (e *Expression) shallowEqual(o *Expression) bool {
	return e.combinator == o.combinator &&
		e.Attributes.Equal(o.Attributes) &&
		e.Aim.equal(o.Aim, EqualAIC) &&
		e.Conditions.equal(o.Conditions, EqualAIC) &&
		floatPtrEqual(e.Deontic, o.Deontic)
}

func nestedEqual(a, b []*Expression, mode Mode) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && x.Equal(y, mode) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// Fingerprint renders e canonically so that two expressions share a
// fingerprint exactly when Equal reports them equal under mode.
func (e *Expression) Fingerprint(mode Mode) string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("E[")
	b.WriteString(string(e.combinator))
	b.WriteByte('|')
	b.WriteString(e.Attributes.fingerprint())
	b.WriteByte('|')
	b.WriteString(e.Aim.fingerprint(mode))
	b.WriteByte('|')
	b.WriteString(e.Conditions.fingerprint(mode))
	b.WriteByte('|')
	if len(e.nested) > 0 {
		fps := make([]string, len(e.nested))
		for i, n := range e.nested {
			fps[i] = n.Fingerprint(mode)
		}
		sort.Strings(fps)
		b.WriteString("N{" + strings.Join(fps, ",") + "}")
	}
	if mode >= EqualADIC {
		b.WriteString("|D=" + floatPtrKey(e.Deontic))
	}
	if mode == EqualNADICO {
		b.WriteString("|K=" + e.kind.String())
		b.WriteString("|L=" + strconv.Itoa(e.level))
		b.WriteString("|V=" + strconv.FormatBool(e.DeonticInverted))
		b.WriteString("|#=" + intPtrKey(e.Count))
		b.WriteString("|P=" + floatPtrKey(e.Probability))
		b.WriteString("|O=" + e.orElse.Fingerprint(mode))
		if e.parent != nil {
			p := e.parent
			b.WriteString("|^=" + string(p.combinator) + p.Attributes.fingerprint() +
				p.Aim.fingerprint(EqualAIC) + p.Conditions.fingerprint(EqualAIC) + floatPtrKey(p.Deontic))
		} else {
			b.WriteString("|^=<nil>")
		}
	}
	b.WriteByte(']')
	return b.String()
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b || (math.IsNaN(*a) && math.IsNaN(*b))
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrKey(f *float64) string {
	if f == nil {
		return "nil"
	}
	if *f == 0 {
		return "0"
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func intPtrKey(i *int) string {
	if i == nil {
		return "nil"
	}
	return strconv.Itoa(*i)
}
