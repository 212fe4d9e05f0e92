package deontic

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type movableBounds struct{ lo, up float64 }

func (b *movableBounds) Lower() float64 { return b.lo }
func (b *movableBounds) Upper() float64 { return b.up }

type boundary struct {
	Term  Term
	Value float64
}

func flatten(b *Boundaries) []boundary {
	var out []boundary
	for _, term := range b.Terms() {
		v, _ := b.Get(term)
		out = append(out, boundary{term, v})
	}
	return out
}

func TestSymmetricTermForValue(t *testing.T) {
	m := NewSymmetricMapper(FixedBounds{Min: -2, Max: 2}, 0.05)
	tests := []struct {
		value float64
		want  Term
	}{
		{2, Must},
		{1.85, Must},
		{-1.9, MustNot},
		{-2, MustNot},
		{0.1, Indifferent},
		{-0.15, Indifferent},
		{-1.5, ShouldNot},
		{-0.5, MayNot},
		{0.5, May},
		{1.5, Should},
	}
	for _, tt := range tests {
		if got := m.TermForValue(tt.value); got != tt.want {
			t.Errorf("TermForValue(%v) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestSymmetricInvert(t *testing.T) {
	m := NewSymmetricMapper(FixedBounds{Min: 0, Max: 4}, 0.05)
	if got := m.Invert(3); got != 1 {
		t.Errorf("Invert(3) = %v, want 1", got)
	}
	if got := m.Invert(1); got != 3 {
		t.Errorf("Invert(1) = %v, want 3", got)
	}
	if got := m.Invert(2); got != 2 {
		t.Errorf("Invert(center) = %v, want 2", got)
	}
	for _, v := range []float64{0, 0.3, 1.7, 2.5, 3.99, 4} {
		if got := m.Invert(m.Invert(v)); math.Abs(got-v) > 1e-9 {
			t.Errorf("Invert(Invert(%v)) = %v", v, got)
		}
	}
}

func TestSymmetricBoundaries(t *testing.T) {
	m := NewSymmetricMapper(FixedBounds{Min: -2, Max: 2}, 0.05)
	b, err := m.InnerBoundaries()
	if err != nil {
		t.Fatalf("InnerBoundaries: %v", err)
	}
	want := []boundary{
		{MustNot, -2},
		{ShouldNot, -1},
		{MayNot, 0},
		{Indifferent, 0},
		{May, 1},
		{Should, 2},
		{Must, 2},
	}
	if diff := cmp.Diff(want, flatten(b)); diff != "" {
		t.Fatalf("boundaries mismatch (-want +got):\n%s", diff)
	}
}

func TestSymmetricCenterMovement(t *testing.T) {
	bounds := &movableBounds{lo: 0, up: 4}
	m := NewSymmetricMapper(bounds, 0.05)

	if got := m.NormativeCenterWithMovement(0.5); got != 2 {
		t.Fatalf("initial center = %v, want 2", got)
	}

	bounds.lo, bounds.up = 8, 12
	if got := m.NormativeCenterWithMovement(0.5); got != 4 {
		t.Errorf("bounded center = %v, want 4", got)
	}
	if got := m.NormativeCenterWithMovement(1); got != 6 {
		t.Errorf("bounded center = %v, want 6", got)
	}
	if got := m.NormativeCenterWithMovement(5); got != 10 {
		t.Errorf("unbounded center = %v, want 10", got)
	}
	if got := m.NormativeCenter(); got != 10 {
		t.Errorf("raw center = %v, want 10", got)
	}

	bounds.lo, bounds.up = 6, 14
	if got := m.NormativeCenterWithMovement(0.1); got != 10 {
		t.Errorf("unmoved center = %v, want 10", got)
	}
}

func TestZeroBasedTermForValue(t *testing.T) {
	m := NewZeroBasedMapper(FixedBounds{Min: -2, Max: 4}, 0.05)
	tests := []struct {
		value float64
		want  Term
	}{
		{0, Indifferent},
		{0.1, Indifferent},
		{-0.05, Indifferent},
		{3.9, Must},
		{4, Must},
		{-1.95, MustNot},
		{1, May},
		{3, Should},
		{-0.5, MayNot},
		{-1.5, ShouldNot},
	}
	for _, tt := range tests {
		if got := m.TermForValue(tt.value); got != tt.want {
			t.Errorf("TermForValue(%v) = %s, want %s", tt.value, got, tt.want)
		}
	}

	flat := NewZeroBasedMapper(FixedBounds{Min: 1, Max: 1}, 0.05)
	if got := flat.TermForValue(1); got != Indifferent {
		t.Errorf("undeveloped range should be INDIFFERENT, got %s", got)
	}
}

func TestZeroBasedInvert(t *testing.T) {
	m := NewZeroBasedMapper(FixedBounds{Min: -2, Max: 4}, 0.05)
	if got := m.Invert(2); got != -1 {
		t.Errorf("Invert(2) = %v, want -1", got)
	}
	if got := m.Invert(-1); got != 2 {
		t.Errorf("Invert(-1) = %v, want 2", got)
	}
	negZero := math.Copysign(0, -1)
	if got := m.Invert(negZero); got != 0 {
		t.Errorf("Invert(-0) = %v, want 0", got)
	}
	for _, v := range []float64{-2, -1.3, -0.01, 0.02, 1.1, 4} {
		if got := m.Invert(m.Invert(v)); math.Abs(got-v) > 1e-9 {
			t.Errorf("Invert(Invert(%v)) = %v", v, got)
		}
	}

	// A range that sits entirely above zero still mirrors onto the negative side.
	positive := NewZeroBasedMapper(FixedBounds{Min: 1, Max: 1}, 0.05)
	if got := positive.Invert(1); got != -1 {
		t.Errorf("Invert(1) on [1,1] = %v, want -1", got)
	}
}

func TestZeroBasedBoundaries(t *testing.T) {
	m := NewZeroBasedMapper(FixedBounds{Min: -2, Max: 4}, 0.05)
	b, err := m.InnerBoundaries()
	if err != nil {
		t.Fatalf("InnerBoundaries: %v", err)
	}
	want := []boundary{
		{ShouldNot, -1},
		{MayNot, -0.1},
		{Indifferent, 0.2},
		{May, 2},
		{Should, 4},
	}
	if diff := cmp.Diff(want, flatten(b), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("boundaries mismatch (-want +got):\n%s", diff)
	}
	if m.NormativeCenterWithMovement(1) != 0 || m.NormativeCenter() != 0 {
		t.Error("zero-based center must stay at zero")
	}
}

func TestDiscreteMapper(t *testing.T) {
	m := NewDiscreteMapper()
	if m.TermForValue(3) != Must || m.TermForValue(-0.1) != MustNot || m.TermForValue(0) != May {
		t.Error("unexpected discrete classification")
	}
	if m.Invert(2.5) != -2.5 {
		t.Error("discrete inversion is negation")
	}
	if _, err := m.InnerBoundaries(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
	if _, err := m.TermValence(Should); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for SHOULD, got %v", err)
	}
	if v, err := m.TermValence(May); err != nil || v != Neutral {
		t.Errorf("MAY should be neutral, got %v (%v)", v, err)
	}
}

func TestValenceConsistentWithTerm(t *testing.T) {
	mappers := []Mapper{
		NewSymmetricMapper(FixedBounds{Min: -3, Max: 5}, 0.05),
		NewZeroBasedMapper(FixedBounds{Min: -3, Max: 5}, 0.05),
		NewDiscreteMapper(),
	}
	for _, m := range mappers {
		for v := -3.0; v <= 5.0; v += 0.125 {
			term := m.TermForValue(v)
			want, err := m.TermValence(term)
			if err != nil {
				t.Fatalf("%s: TermValence(%s): %v", m.Kind(), term, err)
			}
			if got := m.NormativeValence(v); got != want {
				t.Errorf("%s: valence(%v) = %v, valence(%s) = %v", m.Kind(), v, got, term, want)
			}
		}
	}
}

func TestNormalizedValues(t *testing.T) {
	m := NewSymmetricMapper(FixedBounds{Min: -2, Max: 2}, 0.05)
	if got := NormalizedValueForAction(m, 2); math.Abs(got-6.5/7) > 1e-9 {
		t.Errorf("NormalizedValueForAction(MUST) = %v", got)
	}
	if got := NormalizedValueForDeontic(May, true); math.Abs(got-5.0/7) > 1e-9 {
		t.Errorf("upper boundary of MAY = %v", got)
	}
	if got := NormalizedValueForDeontic(MustNot, false); math.Abs(got-0.5/7) > 1e-9 {
		t.Errorf("center of MUST NOT = %v", got)
	}
}

func TestNewMapperKinds(t *testing.T) {
	b := FixedBounds{Min: -1, Max: 1}
	for kind, want := range map[MapperKind]MapperKind{
		"":                  SymmetricMapperKind,
		SymmetricMapperKind: SymmetricMapperKind,
		ZeroBasedMapperKind: ZeroBasedMapperKind,
		DiscreteMapperKind:  DiscreteMapperKind,
	} {
		m, err := NewMapper(kind, b, 0.05)
		if err != nil {
			t.Fatalf("NewMapper(%q): %v", kind, err)
		}
		if m.Kind() != want {
			t.Errorf("NewMapper(%q).Kind() = %s, want %s", kind, m.Kind(), want)
		}
	}
	if _, err := NewMapper("fuzzy", b, 0.05); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
