package nadico

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds e0 <- e1 <- e2 with the given activities, earliest first.
func chain(t *testing.T, role string, activities ...string) *Expression {
	t.Helper()
	var prev *Expression
	for i, act := range activities {
		prev = newAction(t, "Agent0"+string(rune('1'+i)), role, act, prev)
	}
	return prev
}

func TestSequenceNavigation(t *testing.T) {
	e := chain(t, "", "a", "b", "c")
	assert.Equal(t, 2, e.NumberOfPrecedingExpressions())
	assert.Equal(t, 3, e.TotalExpressionSequenceLength())

	for k := 1; k <= 3; k++ {
		got, err := e.InitialExpressions(k)
		require.NoError(t, err)
		assert.Equal(t, k, got.TotalExpressionSequenceLength())
	}

	first, err := e.InitialExpressions(1)
	require.NoError(t, err)
	assert.Equal(t, "a", first.Aim.Activity)

	back, err := e.BacktrackPrecedingExpressions(0)
	require.NoError(t, err)
	assert.Same(t, e, back)

	_, err = e.BacktrackPrecedingExpressions(-1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.BacktrackPrecedingExpressions(3)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.InitialExpressions(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.InitialExpressions(4)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContainsActivityRecursively(t *testing.T) {
	e := chain(t, "", "a", "b", "c")
	assert.True(t, e.ContainsActivityRecursively("a"))
	assert.True(t, e.ContainsActivityRecursively("c"))
	assert.False(t, e.ContainsActivityRecursively("d"))
	assert.True(t, e.ContainsAnyActivityRecursively("x", "b"))
	assert.False(t, e.ContainsAnyActivityRecursively("x", "y"))

	comb, err := NewFactory(nil).CreateCombination(And, chain(t, "", "x"), chain(t, "", "y", "z"))
	require.NoError(t, err)
	assert.True(t, comb.ContainsActivityRecursively("y"))
	assert.False(t, comb.ContainsActivityRecursively("a"))
}

func TestCountActivityOccurrenceSumsNestedElements(t *testing.T) {
	e := chain(t, "", "a", "b", "a")
	assert.Equal(t, 2, e.CountActivityOccurrenceRecursively("a"))

	comb, err := NewFactory(nil).CreateCombination(And, chain(t, "", "a"), chain(t, "", "a", "a"))
	require.NoError(t, err)
	assert.Equal(t, 3, comb.CountActivityOccurrenceRecursively("a"))
}

func TestContainsSocialMarkerRequiresEveryExpression(t *testing.T) {
	e := chain(t, "Trader", "a", "b")
	assert.True(t, e.ContainsSocialMarkerRecursively("ROLE", "Trader"))
	assert.False(t, e.ContainsSocialMarkerRecursively("ROLE", "Thief"))

	e.Conditions.PreviousAction().Attributes.ReplaceSocialMarker("ROLE", "Thief")
	assert.False(t, e.ContainsSocialMarkerRecursively("ROLE", "Trader"))

	comb, err := NewFactory(nil).CreateCombination(Or, chain(t, "Trader", "x"), chain(t, "Thief", "y"))
	require.NoError(t, err)
	assert.False(t, comb.ContainsSocialMarkerRecursively("ROLE", "Trader"))
}

func TestReplaceSocialMarkersRecursively(t *testing.T) {
	e := chain(t, "Trader", "a", "b")
	e.ReplaceSocialMarkersRecursively(NewMarkerMap("TEAM", "t1"))
	assert.True(t, e.ContainsSocialMarkerRecursively("TEAM", "t1"))
	assert.False(t, e.Attributes.SocialMarkers.Has("ROLE", "Trader"))
	assert.False(t, e.Conditions.PreviousAction().Attributes.SocialMarkers.Has("ROLE", "Trader"))
}

func TestDeleteFromChain(t *testing.T) {
	e := chain(t, "", "a", "b", "c")
	mid := e.Conditions.PreviousAction()
	first := mid.Conditions.PreviousAction()

	assert.False(t, e.DeleteFromChain(e))
	assert.True(t, e.DeleteFromChain(first))
	assert.Equal(t, 2, e.TotalExpressionSequenceLength())
	assert.True(t, e.DeleteFromChain(mid))
	assert.Equal(t, 1, e.TotalExpressionSequenceLength())
	assert.False(t, e.DeleteFromChain(mid))

	x := newStatement(t, "A1", "x")
	y := newStatement(t, "A2", "y")
	comb, err := NewFactory(nil).CreateCombination(And, x, y)
	require.NoError(t, err)
	assert.True(t, comb.DeleteFromChain(y))
	assert.Len(t, comb.Nested(), 1)
}

func TestPrecedingExpressionWithDifferentAttributes(t *testing.T) {
	alpha := NewAttributes("ACTOR", "alpha")
	f := NewFactory(nil)
	beta, err := f.CreateAction(NewAttributes("ACTOR", "beta"), NewAim("r1"), NewConditions())
	require.NoError(t, err)
	same, err := f.CreateAction(alpha.Copy(), NewAim("prep"), NewConditionsAfter(beta))
	require.NoError(t, err)
	top, err := f.CreateAction(alpha.Copy(), NewAim("act"), NewConditionsAfter(same))
	require.NoError(t, err)

	assert.Same(t, beta, top.PrecedingExpressionWithDifferentAttributes(alpha))
	assert.Same(t, top, top.PrecedingExpressionWithDifferentAttributes(NewAttributes("ACTOR", "gamma")))

	lone, err := f.CreateAction(alpha.Copy(), NewAim("act"), NewConditions())
	require.NoError(t, err)
	assert.Nil(t, lone.PrecedingExpressionWithDifferentAttributes(alpha))

	comb, err := f.CreateCombination(And, lone, beta)
	require.NoError(t, err)
	assert.Same(t, comb, comb.PrecedingExpressionWithDifferentAttributes(alpha))
}
