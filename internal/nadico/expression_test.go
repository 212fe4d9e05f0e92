package nadico

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAction(t *testing.T, name, role, activity string, prev *Expression) *Expression {
	t.Helper()
	attrs := NewAttributes("NAME", name)
	if role != "" {
		attrs.AddSocialMarker("ROLE", role)
	}
	cond := NewConditions()
	if prev != nil {
		cond.SetPreviousAction(prev)
	}
	e, err := NewFactory(nil).CreateAction(attrs, NewAim(activity), cond)
	require.NoError(t, err)
	return e
}

func newStatement(t *testing.T, name, activity string) *Expression {
	t.Helper()
	e, err := NewFactory(nil).CreateStatement(NewAttributes("NAME", name), nil, NewAim(activity), NewConditions(), nil)
	require.NoError(t, err)
	return e
}

func TestSetParentAdjustsLevels(t *testing.T) {
	root := newStatement(t, "Agent01", "root")
	mid := newStatement(t, "Agent02", "mid")
	mid.SetParent(root)
	assert.Equal(t, 1, mid.Level())

	a := newStatement(t, "Agent03", "a")
	b := newStatement(t, "Agent04", "b")
	comb, err := NewFactory(nil).CreateCombination(Or, a, b)
	require.NoError(t, err)

	comb.SetParent(mid)
	assert.Equal(t, 2, comb.Level())
	for _, n := range comb.Nested() {
		assert.Same(t, mid, n.Parent(), "nested elements share the combination's parent")
		assert.Equal(t, 2, n.Level())
	}

	comb.DeleteParent()
	assert.Equal(t, 0, comb.Level())
	for _, n := range comb.Nested() {
		assert.Nil(t, n.Parent())
	}
}

func TestSetOrElse(t *testing.T) {
	st := newStatement(t, "Agent01", "pay")
	act := newAction(t, "Agent02", "", "fine", nil)

	err := act.SetOrElse(st)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExpressionShape))

	err = st.SetOrElse(act)
	assert.ErrorIs(t, err, ErrExpressionShape)

	consequence := newStatement(t, "Agent02", "fine")
	require.NoError(t, st.SetOrElse(consequence))
	assert.Same(t, st, consequence.Parent())
	assert.Equal(t, 1, consequence.Level())
	assert.Same(t, consequence, st.OrElse())

	require.NoError(t, st.SetOrElse(nil))
	assert.Same(t, consequence, st.OrElse(), "nil or-else is ignored")
}

func TestMakeCombinationMovesContent(t *testing.T) {
	st := newStatement(t, "Agent01", "trade")
	st.SetDeontic(2)
	consequence := newStatement(t, "Agent02", "punish")
	require.NoError(t, st.SetOrElse(consequence))

	require.NoError(t, st.MakeCombination(Xor))
	assert.True(t, st.IsCombination())
	assert.Nil(t, st.Attributes)
	assert.Nil(t, st.Aim)
	assert.Nil(t, st.Conditions)
	assert.Nil(t, st.Deontic)
	assert.Nil(t, st.OrElse())
	assert.Equal(t, Xor, st.Combinator())

	nested := st.Nested()
	require.Len(t, nested, 1)
	assert.True(t, nested[0].IsStatement())
	assert.Equal(t, "trade", nested[0].Aim.Activity)
	assert.Equal(t, 2.0, nested[0].DeonticValue())
	assert.Same(t, consequence, nested[0].OrElse())

	err := st.MakeCombination(And)
	assert.ErrorIs(t, err, ErrExpressionShape)
}

func TestMakeCombinationDefaultsToAnd(t *testing.T) {
	st := newStatement(t, "Agent01", "trade")
	require.NoError(t, st.MakeCombination(""))
	assert.Equal(t, And, st.Combinator())
}

func TestMakeStatementCollapsesSingleElement(t *testing.T) {
	st := newStatement(t, "Agent01", "trade")
	require.NoError(t, st.MakeCombination(And))
	st.MakeStatement()
	assert.True(t, st.IsStatement())
	assert.Empty(t, st.Nested())
	assert.Equal(t, "trade", st.Aim.Activity)
	assert.Equal(t, Combinator(""), st.Combinator())
}

func TestMakeStatementKeepsMultiElementCombination(t *testing.T) {
	a := newAction(t, "Agent01", "", "a", nil)
	b := newAction(t, "Agent02", "", "b", nil)
	comb, err := NewFactory(nil).CreateCombination(And, a, b)
	require.NoError(t, err)

	comb.MakeStatement()
	assert.True(t, comb.IsCombination())
	for _, n := range comb.Nested() {
		assert.True(t, n.IsStatement())
	}
}

func TestMakeAction(t *testing.T) {
	a := newAction(t, "Agent01", "", "a", nil)
	assert.NoError(t, a.MakeAction())
	assert.ErrorIs(t, newStatement(t, "Agent01", "a").MakeAction(), ErrExpressionShape)
}

func TestMakeStatementRecursively(t *testing.T) {
	first := newAction(t, "Agent01", "", "a", nil)
	second := newAction(t, "Agent02", "", "b", first)
	second.MakeStatementRecursively()
	assert.True(t, second.IsStatement())
	assert.True(t, first.IsStatement())
}

func TestAddExpression(t *testing.T) {
	t.Run("statement becomes combination", func(t *testing.T) {
		a := newStatement(t, "Agent01", "a")
		b := newStatement(t, "Agent02", "b")
		got, err := a.AddExpression(b, And)
		require.NoError(t, err)
		assert.Same(t, a, got)
		assert.True(t, a.IsCombination())
		require.Len(t, a.Nested(), 2)
		assert.Equal(t, "a", a.Nested()[0].Aim.Activity)
		assert.Same(t, b, a.Nested()[1])
	})

	t.Run("same combinator absorbs elements", func(t *testing.T) {
		f := NewFactory(nil)
		left, err := f.CreateCombination(Or, newStatement(t, "A1", "a"), newStatement(t, "A2", "b"))
		require.NoError(t, err)
		right, err := f.CreateCombination(Or, newStatement(t, "A3", "c"))
		require.NoError(t, err)
		got, err := left.AddExpression(right, "")
		require.NoError(t, err)
		assert.Len(t, got.Nested(), 3)
	})

	t.Run("different combinator nests", func(t *testing.T) {
		f := NewFactory(nil)
		left, err := f.CreateCombination(Or, newStatement(t, "A1", "a"), newStatement(t, "A2", "b"))
		require.NoError(t, err)
		right, err := f.CreateCombination(Xor, newStatement(t, "A3", "c"))
		require.NoError(t, err)
		got, err := left.AddExpression(right, "")
		require.NoError(t, err)
		require.Len(t, got.Nested(), 3)
		assert.Same(t, right, got.Nested()[2])
	})

	t.Run("different requested combinator wraps", func(t *testing.T) {
		f := NewFactory(nil)
		left, err := f.CreateCombination(Or, newStatement(t, "A1", "a"), newStatement(t, "A2", "b"))
		require.NoError(t, err)
		x := newStatement(t, "A3", "c")
		got, err := left.AddExpression(x, Xor)
		require.NoError(t, err)
		assert.Same(t, x, got)
		assert.Equal(t, Xor, got.Combinator())
		require.Len(t, got.Nested(), 2)
		assert.Same(t, left, got.Nested()[1])
	})

	t.Run("or-else keeps entities separate", func(t *testing.T) {
		a := newStatement(t, "A1", "a")
		b := newStatement(t, "A2", "b")
		require.NoError(t, b.SetOrElse(newStatement(t, "A3", "sanction")))
		got, err := a.AddExpression(b, And)
		require.NoError(t, err)
		require.Len(t, got.Nested(), 2)
		assert.Same(t, b, got.Nested()[1])
		assert.NotNil(t, b.OrElse())
	})

	t.Run("invalid input", func(t *testing.T) {
		a := newStatement(t, "A1", "a")
		_, err := a.AddExpression(nil, And)
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = a.AddExpression(newStatement(t, "A2", "b"), "")
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = a.AddExpression(newStatement(t, "A2", "b"), Combinator("NAND"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCopyDropsParent(t *testing.T) {
	root := newStatement(t, "Agent01", "root")
	child := newStatement(t, "Agent02", "child")
	require.NoError(t, root.SetOrElse(child))

	cp := child.Copy()
	assert.Nil(t, cp.Parent())
	assert.True(t, cp.Equal(child, EqualAIC))

	deep := root.Copy()
	require.NotNil(t, deep.OrElse())
	assert.NotSame(t, child, deep.OrElse())
	assert.Same(t, deep, deep.OrElse().Parent())

	deep.OrElse().Aim.Activity = "changed"
	assert.Equal(t, "child", child.Aim.Activity)
}

func TestCopyDeepCopiesChain(t *testing.T) {
	first := newAction(t, "Agent01", "", "a", nil)
	second := newAction(t, "Agent02", "", "b", first)
	cp := second.Copy()
	cp.Conditions.PreviousAction().Aim.Activity = "x"
	assert.Equal(t, "a", first.Aim.Activity)
}

func TestSumOfConsequentialDeontics(t *testing.T) {
	f := NewFactory(nil)
	c1 := newStatement(t, "A1", "x")
	c1.SetDeontic(-1)
	c2 := newStatement(t, "A2", "y")
	c2.SetDeontic(-2.5)
	comb, err := f.CreateCombination(And, c1, c2)
	require.NoError(t, err)

	st := newStatement(t, "A0", "z")
	require.NoError(t, st.SetOrElse(comb))
	assert.InDelta(t, -3.5, st.SumOfConsequentialDeontics(), 1e-9)
	assert.Zero(t, newStatement(t, "A0", "z").SumOfConsequentialDeontics())
}

func TestFactoryValidation(t *testing.T) {
	e := &Expression{}
	require.NoError(t, e.MakeCombination(And))
	e.Aim = NewAim("x")
	assert.ErrorIs(t, NewFactory(nil).Validate(e), ErrExpressionShape)
	assert.NoError(t, NewUnvalidatedFactory(nil).Validate(e))

	a, err := NewFactory(nil).CreateActionWithEmptyInstances(NewAttributes("NAME", "A"), nil)
	require.NoError(t, err)
	assert.True(t, a.IsAction())
	assert.NotNil(t, a.Aim)
	assert.True(t, a.Conditions.IsEmpty())
}
