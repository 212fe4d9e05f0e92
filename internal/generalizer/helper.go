package generalizer

import (
	"fmt"
	"strings"

	"nadico/internal/nadico"
)

// LabeledValue is a rendered statement with its aggregated deontic value.
type LabeledValue struct {
	Label string
	Value float64
}

// LabelOptions controls how statements are rendered into labels.
type LabelOptions struct {
	// Extended includes individual markers, aim properties and conditions.
	Extended bool
	// ValuesOnly prints marker values without their categories.
	ValuesOnly bool
	// IncludeDeontic prefixes the activity with the deontic term.
	IncludeDeontic bool
	// UseNormativeValence prints the valence instead of the term.
	UseNormativeValence bool
	// IgnoredKeys are property keys left out of extended labels.
	IgnoredKeys []string
	// IgnoredTerms drops statements whose deontic maps to one of these terms.
	IgnoredTerms []string
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// accumulate adds value under label, keeping first-seen order.
func accumulate(out []LabeledValue, label string, value float64) []LabeledValue {
	for i := range out {
		if out[i].Label == label {
			out[i].Value += value
			return out
		}
	}
	return append(out, LabeledValue{Label: label, Value: value})
}

// LabeledStatements renders each expression and sums the deontic values of
// expressions that render identically.
func LabeledStatements(exprs []*nadico.Expression, opts LabelOptions) []LabeledValue {
	var out []LabeledValue
	for _, e := range exprs {
		if len(opts.IgnoredTerms) > 0 && e.Deontic != nil {
			if r := e.Range(); r != nil && contains(opts.IgnoredTerms, string(r.TermForValue(*e.Deontic))) {
				continue
			}
		}
		var b strings.Builder
		buildActivityString(&b, e, opts)
		out = accumulate(out, b.String(), e.DeonticValue())
	}
	return out
}

// AimAndDeonticValue labels statements by social markers and activity chain.
func AimAndDeonticValue(exprs []*nadico.Expression, includeDeontic bool, ignoredTerms []string, useNormativeValence bool) []LabeledValue {
	return LabeledStatements(exprs, LabelOptions{
		ValuesOnly:          true,
		IncludeDeontic:      includeDeontic,
		IgnoredTerms:        ignoredTerms,
		UseNormativeValence: useNormativeValence,
	})
}

// StringifiedNAdicoStatementAndDeonticValue labels statements with all
// markers and properties.
func StringifiedNAdicoStatementAndDeonticValue(exprs []*nadico.Expression, valuesOnly, includeDeontic bool, ignoredKeys []string) []LabeledValue {
	return LabeledStatements(exprs, LabelOptions{
		Extended:       true,
		ValuesOnly:     valuesOnly,
		IncludeDeontic: includeDeontic,
		IgnoredKeys:    ignoredKeys,
	})
}

// StringifiedAICStatement renders social markers and the activity chain of e.
func StringifiedAICStatement(e *nadico.Expression) string {
	var b strings.Builder
	buildActivityString(&b, e, LabelOptions{ValuesOnly: true})
	return b.String()
}

// BuildActivityString renders e into a compact label.
func BuildActivityString(e *nadico.Expression, opts LabelOptions) string {
	var b strings.Builder
	buildActivityString(&b, e, opts)
	return b.String()
}

func markerString(m *nadico.MarkerMap, valuesOnly bool) string {
	if !valuesOnly {
		return m.String()
	}
	vals := make([]string, 0, m.Len())
	for _, cat := range m.Categories() {
		vals = append(vals, m.Get(cat).String())
	}
	return "[" + strings.Join(vals, ", ") + "]"
}

func buildActivityString(b *strings.Builder, e *nadico.Expression, opts LabelOptions) {
	if e == nil {
		return
	}
	if e.IsCombination() {
		nested := e.Nested()
		if len(nested) == 0 {
			return
		}
		b.WriteString("(")
		for i, n := range nested {
			if i > 0 {
				fmt.Fprintf(b, " %s ", e.Combinator())
			}
			buildActivityString(b, n, opts)
		}
		b.WriteString(")")
		return
	}
	if e.Attributes != nil {
		if opts.Extended {
			b.WriteString(markerString(e.Attributes.IndividualMarkers, opts.ValuesOnly))
		}
		b.WriteString(markerString(e.Attributes.SocialMarkers, opts.ValuesOnly))
		b.WriteString(": ")
	}
	if e.Aim != nil {
		if opts.IncludeDeontic && e.Deontic != nil {
			if r := e.Range(); r != nil {
				if opts.UseNormativeValence {
					b.WriteString(r.NormativeValence(*e.Deontic).String())
				} else {
					b.WriteString(string(r.TermForValue(*e.Deontic)))
				}
				b.WriteString(" ")
			}
		}
		b.WriteString(e.Aim.Activity)
		if opts.Extended && e.Aim.Properties.Len() > 0 {
			writeProperties(b, e.Aim.Properties, opts, func(v interface{}) { fmt.Fprint(b, v) })
		}
	}
	if e.Conditions == nil || e.Conditions.IsEmpty() {
		return
	}
	if !opts.Extended {
		if prev := e.Conditions.PreviousAction(); prev != nil {
			b.WriteString("-")
			buildActivityString(b, prev, opts)
		}
		return
	}
	writeProperties(b, e.Conditions.Properties, opts, func(v interface{}) {
		if x, ok := v.(*nadico.Expression); ok {
			buildActivityString(b, x, opts)
			return
		}
		fmt.Fprint(b, v)
	})
}

func writeProperties(b *strings.Builder, props *nadico.Properties, opts LabelOptions, value func(interface{})) {
	keys := props.Keys()
	b.WriteString(" (")
	for i, k := range keys {
		if !contains(opts.IgnoredKeys, k) {
			v, _ := props.Get(k)
			b.WriteString(k + "-")
			value(v)
		}
		if i < len(keys)-1 {
			b.WriteString(", ")
		}
	}
	b.WriteString(")")
}

// LeadingActivityWithAggregatedDeonticValue sums deontic values per leading
// activity.
func LeadingActivityWithAggregatedDeonticValue(exprs []*nadico.Expression) []LabeledValue {
	var out []LabeledValue
	for _, e := range exprs {
		if e.Aim == nil {
			continue
		}
		out = accumulate(out, e.Aim.Activity, e.DeonticValue())
	}
	return out
}

// DeonticValueForActivity returns the aggregated deontic value of the
// statements led by activity.
func DeonticValueForActivity(activity string, exprs []*nadico.Expression) (float64, bool) {
	for _, lv := range LeadingActivityWithAggregatedDeonticValue(exprs) {
		if lv.Label == activity {
			return lv.Value, true
		}
	}
	return 0, false
}

// ContainsActivity reports whether activity is performed by any statement
// reachable from exprs. Actions are not considered.
func ContainsActivity(activity string, exprs ...*nadico.Expression) (bool, error) {
	if activity == "" {
		return false, fmt.Errorf("cannot test for empty activity: %w", nadico.ErrInvalidInput)
	}
	return containsStatementActivity(activity, exprs), nil
}

func containsStatementActivity(activity string, exprs []*nadico.Expression) bool {
	for _, e := range exprs {
		switch {
		case e == nil:
		case e.IsCombination():
			if containsStatementActivity(activity, e.Nested()) {
				return true
			}
		case e.IsStatement():
			if e.Aim != nil && e.Aim.Activity == activity {
				return true
			}
			if prev := e.Conditions.PreviousAction(); prev != nil && containsStatementActivity(activity, []*nadico.Expression{prev}) {
				return true
			}
		}
	}
	return false
}

// DeonticValueForStatementContainingActivity sums the deontic values of
// statements that perform activity or whose preceding statements do.
func DeonticValueForStatementContainingActivity(activity string, exprs []*nadico.Expression) (float64, error) {
	if activity == "" {
		return 0, fmt.Errorf("cannot determine deontic value for empty activity: %w", nadico.ErrInvalidInput)
	}
	sum := 0.0
	for _, e := range exprs {
		if e.Aim != nil && e.Aim.Activity == activity {
			sum += e.DeonticValue()
			continue
		}
		if prev := e.Conditions.PreviousAction(); prev != nil && containsStatementActivity(activity, []*nadico.Expression{prev}) {
			sum += e.DeonticValue()
		}
	}
	return sum, nil
}

// CopyExpressionMap deep-copies keys and instances of m.
func CopyExpressionMap(m *nadico.ExpressionMap) *nadico.ExpressionMap {
	if m == nil {
		return nil
	}
	return m.Copy()
}

// IntersectionMetric scores how closely b reproduces a. Half the score is
// positional agreement, half is membership overlap; identical sequences
// score 1, an empty a scores 0 and a nil argument scores -1.
func IntersectionMetric(a, b []string) float64 {
	if a == nil || b == nil {
		return -1
	}
	if len(a) == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	if matches == len(a) {
		return 1
	}
	order := float64(matches) / float64(len(a))

	inB := make(map[string]struct{}, len(b))
	for _, x := range b {
		inB[x] = struct{}{}
	}
	seen := make(map[string]struct{}, len(a))
	distinct, shared := 0, 0
	for _, x := range a {
		if _, dup := seen[x]; dup {
			continue
		}
		seen[x] = struct{}{}
		distinct++
		if _, ok := inB[x]; ok {
			shared++
		}
	}
	if shared == distinct {
		return 0.5 + 0.5*order
	}
	return 0.5*float64(shared)/float64(len(a)) + 0.5*order
}
