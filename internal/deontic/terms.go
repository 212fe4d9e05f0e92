// Package deontic holds the deontic vocabulary, the value mappers that
// translate numeric valences into deontic terms, and the dynamic range
// those mappers classify against.
package deontic

import "math"

// Term is a normative classifier such as MUST or MAY NOT.
type Term string

const (
	Must        Term = "MUST"
	Should      Term = "SHOULD"
	May         Term = "MAY"
	Indifferent Term = "INDIFFERENT"
	MayNot      Term = "MAY NOT"
	ShouldNot   Term = "SHOULD NOT"
	MustNot     Term = "MUST NOT"
)

// Valence is the sign of a deontic: positive, neutral or negative.
type Valence int

const (
	Negative Valence = -1
	Neutral  Valence = 0
	Positive Valence = 1
)

func (v Valence) String() string {
	switch v {
	case Positive:
		return "POSITIVE"
	case Negative:
		return "NEGATIVE"
	default:
		return "NEUTRAL"
	}
}

// rangeDeontics are the non-extreme, non-neutral terms in ascending order.
// Symmetric and zero-based mappers compartmentalise the range with them.
var rangeDeontics = [...]Term{ShouldNot, MayNot, May, Should}

// allTerms lists every term from MUST NOT up to MUST.
var allTerms = [...]Term{MustNot, ShouldNot, MayNot, Indifferent, May, Should, Must}

var deonticOrder = map[Term]int{
	MustNot:     1,
	ShouldNot:   2,
	MayNot:      3,
	Indifferent: 4,
	May:         5,
	Should:      6,
	Must:        7,
}

var rangeDeonticsSignedOrder = map[Term]int{
	ShouldNot: -2,
	MayNot:    -1,
	May:       1,
	Should:    2,
}

var inversion = map[Term]Term{
	Must:        MustNot,
	MustNot:     Must,
	Should:      ShouldNot,
	ShouldNot:   Should,
	May:         MayNot,
	MayNot:      May,
	Indifferent: Indifferent,
}

var discreteDeontics = map[Term]float64{
	Must:    math.Inf(1),
	May:     0,
	MustNot: math.Inf(-1),
}

// RangeTerms returns the four range deontics in ascending order.
func RangeTerms() []Term {
	out := make([]Term, len(rangeDeontics))
	copy(out, rangeDeontics[:])
	return out
}

// AllTerms returns all seven terms ordered from MUST NOT to MUST.
func AllTerms() []Term {
	out := make([]Term, len(allTerms))
	copy(out, allTerms[:])
	return out
}

// Valid reports whether t is one of the seven known terms.
func (t Term) Valid() bool {
	_, ok := deonticOrder[t]
	return ok
}

// Order returns the linear rank 1..7 of t, or 0 for unknown terms.
func (t Term) Order() int {
	return deonticOrder[t]
}

// SignedOrder returns the rank of t centred on INDIFFERENT (-3..3).
func (t Term) SignedOrder() int {
	if !t.Valid() {
		return 0
	}
	return deonticOrder[t] - deonticOrder[Indifferent]
}

// RangeSignedOrder returns the signed position of a range deontic
// (-2, -1, 1, 2). The second result is false for terms outside the range list.
func (t Term) RangeSignedOrder() (int, bool) {
	o, ok := rangeDeonticsSignedOrder[t]
	return o, ok
}

// Invert returns the symmetric partner of t. Unknown terms are returned unchanged.
func (t Term) Invert() Term {
	if inv, ok := inversion[t]; ok {
		return inv
	}
	return t
}

// DiscreteValue returns the numeric anchor used by the discrete policy.
func (t Term) DiscreteValue() (float64, bool) {
	v, ok := discreteDeontics[t]
	return v, ok
}

// Valence returns the normative valence of t.
func (t Term) Valence() (Valence, bool) {
	switch t {
	case Must, Should, May:
		return Positive, true
	case Indifferent:
		return Neutral, true
	case MayNot, ShouldNot, MustNot:
		return Negative, true
	}
	return Neutral, false
}

// SignedOrders returns the signed ordering of every term, MUST NOT first.
func SignedOrders() map[Term]int {
	out := make(map[Term]int, len(allTerms))
	for _, t := range allTerms {
		out[t] = t.SignedOrder()
	}
	return out
}
