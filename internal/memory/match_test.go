package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nadico/internal/nadico"
)

func TestMatchAttributes(t *testing.T) {
	full := nadico.NewAttributes("NAME", ownerOne).AddSocialMarker("ROLE", roleOne)
	tests := []struct {
		name  string
		query *nadico.Attributes
		want  bool
	}{
		{"nil is wildcard", nil, true},
		{"empty is wildcard", nadico.NewAttributes("", ""), true},
		{"subset", nadico.NewAttributes("", "").AddSocialMarker("ROLE", roleOne), true},
		{"equal", full.Copy(), true},
		{"other marker", nadico.NewAttributes("NAME", ownerTwo), false},
		{"missing category", nadico.NewAttributes("TEAM", "t1"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchAttributes(tt.query, full))
		})
	}
}

func TestMatchAim(t *testing.T) {
	candidate := nadico.NewAim(actionOne, "price", 2)
	assert.True(t, MatchAim(nil, candidate))
	assert.True(t, MatchAim(nadico.NewAim(""), candidate))
	assert.True(t, MatchAim(nadico.NewAim(actionOne), candidate))
	assert.True(t, MatchAim(nadico.NewAim("", "price", 2), candidate))
	assert.False(t, MatchAim(nadico.NewAim("", "price", 3), candidate))
	assert.False(t, MatchAim(nadico.NewAim(actionTwo), candidate))
}

func TestMatchConditions(t *testing.T) {
	empty := nadico.NewConditions()
	rainy := nadico.NewConditions("weather", "rain")

	assert.True(t, MatchConditions(empty, rainy, false))
	assert.False(t, MatchConditions(empty, rainy, true))
	assert.True(t, MatchConditions(nil, empty, true))
	assert.True(t, MatchConditions(rainy, rainy.Copy(), true))
	assert.False(t, MatchConditions(nadico.NewConditions("weather", "sun"), rainy, false))
}

func TestStrictMatchImpliesWildcardMatch(t *testing.T) {
	candidates := []*nadico.Expression{
		e0(t, nil),
		e1(t, e0(t, nil)),
		x(t, e1(t, e0(t, nil))),
	}
	queries := []*nadico.Expression{e0(t, nil), e1(t, nil), e1(t, e0(t, nil)), x(t, nil)}
	for _, q := range queries {
		for _, c := range candidates {
			if match(q, c, false, true) {
				assert.True(t, match(q, c, false, false), "query %s candidate %s", q, c)
			}
		}
	}
}

func TestMatchRejectsDifferentKinds(t *testing.T) {
	st := e0(t, nil)
	st.MakeStatement()
	assert.False(t, match(e0(t, nil), st, false, false))

	a, err := nadico.NewFactory(nil).CreateCombination(nadico.And, e0(t, nil), e1(t, nil))
	assert.NoError(t, err)
	b, err := nadico.NewFactory(nil).CreateCombination(nadico.And, e0(t, nil), e1(t, nil), e2(t, nil))
	assert.NoError(t, err)
	o, err := nadico.NewFactory(nil).CreateCombination(nadico.Or, e0(t, nil), e1(t, nil))
	assert.NoError(t, err)

	assert.True(t, match(a, b, false, true), "shorter nested list matches pairwise")
	assert.False(t, match(b, a, false, true))
	assert.False(t, match(a, o, false, true))
}
