package deontic

import "math"

// SymmetricMapper splits [lower, upper] into equal compartments around
// the midpoint. A tolerance band, expressed as a fraction of the full
// range, marks values near the extremes and near the center.
type SymmetricMapper struct {
	bounds       Bounds
	tolerancePct float64

	primed    bool
	oldLower  float64
	oldUpper  float64
	fullRange float64
	oldRange  float64
	width     float64
	center    float64
	oldCenter float64
	tolerance float64
}

// NewSymmetricMapper returns a symmetric mapper over bounds.
func NewSymmetricMapper(bounds Bounds, tolerance float64) *SymmetricMapper {
	return &SymmetricMapper{bounds: bounds, tolerancePct: tolerance}
}

func (m *SymmetricMapper) Kind() MapperKind { return SymmetricMapperKind }

// recalc refreshes the cached geometry when the bounds moved.
func (m *SymmetricMapper) recalc() {
	lower, upper := m.bounds.Lower(), m.bounds.Upper()
	if m.primed && lower == m.oldLower && upper == m.oldUpper {
		return
	}
	m.primed = true
	m.oldRange = m.fullRange
	m.fullRange = math.Abs(upper - lower)
	m.oldLower = lower
	m.oldUpper = upper
	m.width = m.fullRange / float64(len(rangeDeontics))
	m.oldCenter = m.center
	m.center = upper - m.fullRange/2
	m.tolerance = m.tolerancePct * m.fullRange
}

func (m *SymmetricMapper) TermForValue(v float64) Term {
	m.recalc()
	lower, upper := m.bounds.Lower(), m.bounds.Upper()
	switch {
	case v >= upper-m.tolerance:
		return Must
	case v <= lower+m.tolerance:
		return MustNot
	case v >= m.center-m.tolerance && v <= m.center+m.tolerance:
		return Indifferent
	}
	if m.width == 0 {
		return Indifferent
	}
	return rangeDeontics[clampIndex(int((v-lower)/m.width), len(rangeDeontics))]
}

func (m *SymmetricMapper) Invert(v float64) float64 {
	m.recalc()
	return reflect(v, m.center, m.bounds.Lower(), m.bounds.Upper())
}

func (m *SymmetricMapper) NormativeCenter() float64 {
	m.recalc()
	return m.center
}

// NormativeCenterWithMovement limits the center's drift since the last
// bounds change to maxMovement times the previous full range. The limit
// applies to every drift; a center that did not move is returned as is
// rather than nudged by maxMovement.
func (m *SymmetricMapper) NormativeCenterWithMovement(maxMovement float64) float64 {
	m.recalc()
	if m.oldRange == 0 {
		return m.center
	}
	maxMove := maxMovement * m.oldRange
	delta := m.center - m.oldCenter
	switch {
	case delta > maxMove:
		return m.oldCenter + maxMove
	case delta < -maxMove:
		return m.oldCenter - maxMove
	}
	return m.center
}

func (m *SymmetricMapper) NormativeValence(v float64) Valence {
	return valenceOf(m, v)
}

func (m *SymmetricMapper) TermValence(t Term) (Valence, error) {
	return termValence(t)
}

func (m *SymmetricMapper) InnerBoundaries() (*Boundaries, error) {
	return SymmetricBoundaries(m.bounds.Lower(), m.bounds.Upper()), nil
}

func (m *SymmetricMapper) String() string {
	return describe(m.bounds, SymmetricBoundaries(m.bounds.Lower(), m.bounds.Upper()))
}

// SymmetricBoundaries computes equally sized compartments over
// [lower, upper], framed by MUST NOT and MUST, with INDIFFERENT at the
// midpoint.
func SymmetricBoundaries(lower, upper float64) *Boundaries {
	fullRange := math.Abs(upper - lower)
	width := fullRange / float64(len(rangeDeontics))
	center := upper - fullRange/2

	b := newBoundaries()
	b.Set(MustNot, lower)
	half := len(rangeDeontics) / 2
	for i, t := range rangeDeontics {
		if i == half {
			b.Set(Indifferent, center)
		}
		b.Set(t, lower+width*float64(i+1))
	}
	b.Set(Must, upper)
	return b
}

// reflect mirrors v across center, scaling by the relative width of the
// two sides of the interval.
func reflect(v, center, lower, upper float64) float64 {
	switch {
	case v > center:
		side := math.Abs(center - upper)
		if side == 0 {
			return 2*center - v
		}
		return center - (math.Abs(v-center)/side)*math.Abs(center-lower)
	case v < center:
		side := math.Abs(center - lower)
		if side == 0 {
			return 2*center - v
		}
		return center + (math.Abs(v-center)/side)*math.Abs(center-upper)
	}
	// also covers -0 == 0
	return v
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
