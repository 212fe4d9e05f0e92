package deontic

import "fmt"

// DiscreteMapper knows only MUST, MAY and MUST NOT, decided by sign.
type DiscreteMapper struct{}

// NewDiscreteMapper returns the sign-based mapper.
func NewDiscreteMapper() *DiscreteMapper { return &DiscreteMapper{} }

func (m *DiscreteMapper) Kind() MapperKind { return DiscreteMapperKind }

func (m *DiscreteMapper) TermForValue(v float64) Term {
	switch {
	case v > 0:
		return Must
	case v < 0:
		return MustNot
	}
	return May
}

func (m *DiscreteMapper) Invert(v float64) float64 { return -v }

func (m *DiscreteMapper) NormativeCenter() float64 { return 0 }

func (m *DiscreteMapper) NormativeCenterWithMovement(float64) float64 { return 0 }

func (m *DiscreteMapper) NormativeValence(v float64) Valence {
	switch {
	case v > 0:
		return Positive
	case v < 0:
		return Negative
	}
	return Neutral
}

func (m *DiscreteMapper) TermValence(t Term) (Valence, error) {
	switch t {
	case Must:
		return Positive, nil
	case May:
		return Neutral, nil
	case MustNot:
		return Negative, nil
	}
	return Neutral, fmt.Errorf("%w: discrete mapper has no valence for %q", ErrConfiguration, t)
}

func (m *DiscreteMapper) InnerBoundaries() (*Boundaries, error) {
	return nil, fmt.Errorf("%w: discrete deontic range has no inner boundaries", ErrConfiguration)
}

func (m *DiscreteMapper) String() string {
	return "\n" + string(MustNot) + ": < 0\n" + string(May) + ": 0\n" + string(Must) + ": > 0"
}
