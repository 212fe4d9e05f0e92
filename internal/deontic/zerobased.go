package deontic

import "math"

// ZeroBasedMapper anchors the normative center at zero and partitions the
// negative and positive halves of the range independently, so asymmetric
// ranges keep zero as the neutral point.
type ZeroBasedMapper struct {
	bounds       Bounds
	tolerancePct float64
}

// NewZeroBasedMapper returns a zero-based equi-compartment mapper.
func NewZeroBasedMapper(bounds Bounds, tolerance float64) *ZeroBasedMapper {
	return &ZeroBasedMapper{bounds: bounds, tolerancePct: tolerance}
}

func (m *ZeroBasedMapper) Kind() MapperKind { return ZeroBasedMapperKind }

func (m *ZeroBasedMapper) center() float64 { return 0 }

func (m *ZeroBasedMapper) TermForValue(v float64) Term {
	c := m.center()
	lower, upper := m.bounds.Lower(), m.bounds.Upper()
	// an undeveloped range classifies everything as neutral
	if v == c || upper == lower {
		return Indifferent
	}

	half := c - lower
	if v > c {
		half = upper - c
	}
	tolerance := m.tolerancePct * half
	if v < c+tolerance && v > c-tolerance {
		return Indifferent
	}
	if v > c && v >= upper-tolerance {
		return Must
	}
	if v < c && v <= lower+tolerance {
		return MustNot
	}

	perSide := len(rangeDeontics) / 2
	compartment := half / float64(perSide)
	if compartment == 0 {
		return Indifferent
	}
	idx := clampIndex(int(math.Abs(v-c)/compartment), perSide)
	if v > c {
		return rangeDeontics[perSide+idx]
	}
	return rangeDeontics[perSide-1-idx]
}

func (m *ZeroBasedMapper) Invert(v float64) float64 {
	return reflect(v, m.center(), m.bounds.Lower(), m.bounds.Upper())
}

func (m *ZeroBasedMapper) NormativeCenter() float64 { return m.center() }

// NormativeCenterWithMovement always returns zero; the center never drifts.
func (m *ZeroBasedMapper) NormativeCenterWithMovement(float64) float64 { return m.center() }

func (m *ZeroBasedMapper) NormativeValence(v float64) Valence {
	return valenceOf(m, v)
}

func (m *ZeroBasedMapper) TermValence(t Term) (Valence, error) {
	return termValence(t)
}

// InnerBoundaries walks up from the lower bound. The last negative range
// deontic is pulled back to the lower edge of the INDIFFERENT band.
func (m *ZeroBasedMapper) InnerBoundaries() (*Boundaries, error) {
	c := m.center()
	lower, upper := m.bounds.Lower(), m.bounds.Upper()
	perSide := len(rangeDeontics) / 2

	b := newBoundaries()
	current := lower
	tolerance := m.tolerancePct * (c - lower)
	compartment := (c - lower) / float64(perSide)
	for i, t := range rangeDeontics {
		if i == perSide {
			b.Set(rangeDeontics[i-1], c-tolerance)
			tolerance = m.tolerancePct * (upper - c)
			b.Set(Indifferent, c+tolerance)
			compartment = (upper - c) / float64(perSide)
		}
		current += compartment
		b.Set(t, current)
	}
	return b, nil
}

func (m *ZeroBasedMapper) String() string {
	inner, _ := m.InnerBoundaries()
	return describe(m.bounds, inner)
}
