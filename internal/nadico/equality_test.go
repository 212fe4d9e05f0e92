package nadico

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualityModes(t *testing.T) {
	a := newStatement(t, "Agent01", "trade")
	b := newStatement(t, "Agent01", "trade")
	a.SetDeontic(1)
	b.SetDeontic(2)

	assert.True(t, a.Equal(b, EqualAIC))
	assert.False(t, a.Equal(b, EqualADIC))
	assert.False(t, a.Equal(b, EqualNADICO))

	b.SetDeontic(1)
	assert.True(t, a.Equal(b, EqualADIC))
	assert.True(t, a.Equal(b, EqualNADICO))

	b.SetCount(3)
	assert.True(t, a.Equal(b, EqualADIC), "statistics are ignored below nADICO")
	assert.False(t, a.Equal(b, EqualNADICO))
}

func TestEqualityIgnoresMarkerOrder(t *testing.T) {
	a := NewAttributes("NAME", "A").AddSocialMarkers("ROLE", "r1", "TEAM", "t1")
	b := NewAttributes("NAME", "A").AddSocialMarkers("TEAM", "t1", "ROLE", "r1")
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.fingerprint(), b.fingerprint())
	assert.NotEqual(t, a.String(), b.String(), "rendering keeps insertion order")
}

func TestFingerprintAgreesWithEqual(t *testing.T) {
	f := NewFactory(nil)
	build := func(name, act string, deon float64, prevAct string) *Expression {
		var prev *Expression
		if prevAct != "" {
			prev = newAction(t, "Other", "", prevAct, nil)
		}
		cond := NewConditions("PLACE", "market")
		if prev != nil {
			cond.SetPreviousAction(prev)
		}
		e, err := f.CreateStatement(NewAttributes("NAME", name), &deon, NewAim(act, "ITEM", "apple"), cond, nil)
		require.NoError(t, err)
		return e
	}
	comb := func(c Combinator, xs ...*Expression) *Expression {
		e, err := f.CreateCombination(c, xs...)
		require.NoError(t, err)
		return e
	}

	exprs := []*Expression{
		build("A", "trade", 1, ""),
		build("A", "trade", 2, ""),
		build("B", "trade", 1, ""),
		build("A", "trade", 1, "greet"),
		build("A", "trade", 1, "steal"),
		build("A", "steal", 1, "greet"),
		comb(And, build("A", "x", 1, ""), build("B", "y", 1, "")),
		comb(And, build("B", "y", 1, ""), build("A", "x", 1, "")),
		comb(Or, build("A", "x", 1, ""), build("B", "y", 1, "")),
	}
	for _, mode := range []Mode{EqualAIC, EqualADIC, EqualNADICO} {
		for i, x := range exprs {
			for j, y := range exprs {
				eq := x.Equal(y, mode)
				fp := x.Fingerprint(mode) == y.Fingerprint(mode)
				if eq != fp {
					t.Fatalf("mode %s, %d vs %d: Equal=%t but fingerprints equal=%t", mode, i, j, eq, fp)
				}
			}
		}
	}
	assert.True(t, exprs[6].Equal(exprs[7], EqualAIC), "nested elements compare as a set")
	assert.False(t, exprs[6].Equal(exprs[8], EqualAIC))
}

func TestStringRendering(t *testing.T) {
	prev := newAction(t, "Agent02", "", "greet", nil)
	act := newAction(t, "Agent01", "Trader", "trade", prev)
	want := "NAdicoAction [A=A({NAME=[Agent01]}, {ROLE=[Trader]}), I=I(trade, *), " +
		"C=C({PREVIOUS_ACTION=NAdicoAction [A=A({NAME=[Agent02]}, *), I=I(greet, *), C=C(*)]})]"
	if diff := cmp.Diff(want, act.String()); diff != "" {
		t.Fatalf("action rendering mismatch (-want +got):\n%s", diff)
	}

	st := newStatement(t, "Agent01", "pay")
	st.SetDeontic(1.5)
	st.SetCount(2)
	st.DeonticInverted = true
	want = "L0 (Count: 2): A=A({NAME=[Agent01]}, *), D=1.5 (inv), I=I(pay, *), C=C(*), O=(null)"
	if diff := cmp.Diff(want, st.String()); diff != "" {
		t.Fatalf("statement rendering mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "A(*)", NewAttributes("", "").String())
	assert.Equal(t, "I(*, {ITEM=apple})", NewAim("", "ITEM", "apple").String())
}
