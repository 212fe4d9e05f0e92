package nadico

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionMapGroupsByMode(t *testing.T) {
	m := NewExpressionMap(EqualAIC)
	k1 := newStatement(t, "A", "trade")
	k1.SetDeontic(1)
	k2 := newStatement(t, "A", "trade")
	k2.SetDeontic(5)
	k3 := newStatement(t, "B", "trade")

	m.Append(k1, newStatement(t, "i1", "x"))
	m.Append(k3, newStatement(t, "i2", "x"))
	g := m.Append(k2, newStatement(t, "i3", "x"))

	require.Equal(t, 2, m.Len())
	assert.Same(t, k1, g.Key, "first inserted key is kept")
	assert.Len(t, g.Instances, 2)

	var order []string
	for _, k := range m.Keys() {
		order = append(order, k.Attributes.IndividualMarkers.Get("NAME").Items()[0])
	}
	if diff := cmp.Diff([]string{"A", "B"}, order); diff != "" {
		t.Fatalf("insertion order mismatch (-want +got):\n%s", diff)
	}

	adic := NewExpressionMap(EqualADIC)
	adic.Append(k1, k1)
	adic.Append(k2, k2)
	assert.Equal(t, 2, adic.Len())

	m.Delete(k2)
	assert.Equal(t, 1, m.Len())
	assert.Nil(t, m.Get(k1))
}

func TestExpressionMapCopyIsDeep(t *testing.T) {
	m := NewExpressionMap(EqualAIC)
	k := newStatement(t, "A", "trade")
	m.Put(k, newStatement(t, "i1", "x"))

	cp := m.Copy()
	cp.Keys()[0].SetDeontic(9)
	cp.Groups()[0].Instances[0].Aim.Activity = "changed"

	assert.Nil(t, k.Deontic)
	assert.Equal(t, "x", m.Groups()[0].Instances[0].Aim.Activity)
}

func TestSortByCount(t *testing.T) {
	mk := func(name string, n int) *Expression {
		e := newStatement(t, name, "a")
		e.SetCount(n)
		return e
	}
	xs := []*Expression{mk("a", 1), mk("b", 3), mk("c", 1), mk("d", 2)}
	SortByCount(xs, false)
	var got []string
	for _, x := range xs {
		got = append(got, x.Attributes.IndividualMarkers.Get("NAME").Items()[0])
	}
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, got); diff != "" {
		t.Fatalf("descending order mismatch (-want +got):\n%s", diff)
	}
	SortByCount(xs, true)
	assert.Equal(t, 1, xs[0].CountValue())
	assert.Equal(t, 3, xs[3].CountValue())
}
