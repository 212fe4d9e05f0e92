package deontic

import (
	"fmt"
	"strconv"
	"strings"
)

// MapperKind selects a Mapper implementation.
type MapperKind string

const (
	SymmetricMapperKind MapperKind = "symmetric"
	ZeroBasedMapperKind MapperKind = "zero_based"
	DiscreteMapperKind  MapperKind = "discrete"
)

// Bounds exposes the current interval a mapper classifies against.
type Bounds interface {
	Lower() float64
	Upper() float64
}

// FixedBounds is an immutable interval, handy when a mapper is used
// without a dynamic range.
type FixedBounds struct {
	Min float64
	Max float64
}

func (b FixedBounds) Lower() float64 { return b.Min }
func (b FixedBounds) Upper() float64 { return b.Max }

// Mapper translates between numeric valences and deontic terms.
type Mapper interface {
	Kind() MapperKind
	// TermForValue classifies v against the current bounds.
	TermForValue(v float64) Term
	// Invert mirrors v across the normative center.
	Invert(v float64) float64
	NormativeCenter() float64
	// NormativeCenterWithMovement returns the center, bounded by the
	// permitted drift relative to the previous range.
	NormativeCenterWithMovement(maxMovement float64) float64
	NormativeValence(v float64) Valence
	TermValence(t Term) (Valence, error)
	// InnerBoundaries maps each term to the upper bound of its compartment.
	InnerBoundaries() (*Boundaries, error)
	String() string
}

// NewMapper builds the mapper for kind over bounds. An empty kind yields
// the symmetric mapper.
func NewMapper(kind MapperKind, bounds Bounds, tolerance float64) (Mapper, error) {
	if bounds == nil {
		return nil, fmt.Errorf("%w: mapper requires bounds", ErrConfiguration)
	}
	switch kind {
	case SymmetricMapperKind, "":
		return NewSymmetricMapper(bounds, tolerance), nil
	case ZeroBasedMapperKind:
		return NewZeroBasedMapper(bounds, tolerance), nil
	case DiscreteMapperKind:
		return NewDiscreteMapper(), nil
	}
	return nil, fmt.Errorf("%w: unknown mapper kind %q", ErrConfiguration, kind)
}

// NormalizedValueForAction places the term of v on a 0..1 scale, using
// the middle of its compartment.
func NormalizedValueForAction(m Mapper, v float64) float64 {
	return (float64(m.TermForValue(v).Order()) - 0.5) / float64(len(allTerms))
}

// NormalizedValueForDeontic places t on a 0..1 scale. With upper set the
// compartment's upper boundary is used, otherwise its middle.
func NormalizedValueForDeontic(t Term, upper bool) float64 {
	order := float64(t.Order())
	if !upper {
		order -= 0.5
	}
	return order / float64(len(allTerms))
}

func termValence(t Term) (Valence, error) {
	v, ok := t.Valence()
	if !ok {
		return Neutral, fmt.Errorf("%w: normative valence requested for unknown deontic %q", ErrConfiguration, t)
	}
	return v, nil
}

func valenceOf(m Mapper, v float64) Valence {
	val, _ := m.TermForValue(v).Valence()
	return val
}

// Boundaries is an insertion-ordered term → value map. Re-setting an
// existing term keeps its position.
type Boundaries struct {
	terms  []Term
	values map[Term]float64
}

func newBoundaries() *Boundaries {
	return &Boundaries{values: make(map[Term]float64)}
}

// Set stores value for t.
func (b *Boundaries) Set(t Term, value float64) {
	if _, ok := b.values[t]; !ok {
		b.terms = append(b.terms, t)
	}
	b.values[t] = value
}

// Get returns the boundary for t.
func (b *Boundaries) Get(t Term) (float64, bool) {
	v, ok := b.values[t]
	return v, ok
}

// Terms returns terms in insertion order.
func (b *Boundaries) Terms() []Term {
	out := make([]Term, len(b.terms))
	copy(out, b.terms)
	return out
}

func (b *Boundaries) Len() int { return len(b.terms) }

func describe(bounds Bounds, inner *Boundaries) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(string(MustNot) + ": " + formatFloat(bounds.Lower()) + "\n")
	if inner != nil {
		for _, t := range inner.terms {
			if t == MustNot || t == Must {
				continue
			}
			sb.WriteString(string(t) + ": to " + formatFloat(inner.values[t]) + "\n")
		}
	}
	sb.WriteString(string(Must) + ": " + formatFloat(bounds.Upper()))
	return sb.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
