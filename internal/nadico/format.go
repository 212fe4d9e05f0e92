package nadico

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders e in the nADICO notation.
func (e *Expression) String() string {
	if e == nil {
		return "null"
	}
	switch e.kind {
	case KindStatement:
		return e.statementString()
	case KindCombination:
		return e.combinationString()
	default:
		var b strings.Builder
		b.WriteString("NAdicoAction [A=" + e.Attributes.String())
		if e.Deontic != nil {
			b.WriteString(", D=" + formatValue(*e.Deontic))
		}
		if e.DeonticInverted {
			b.WriteString(" (inv)")
		}
		b.WriteString(", I=" + e.Aim.String() + ", C=" + e.Conditions.String() + "]")
		return b.String()
	}
}

func (e *Expression) statementString() string {
	var b strings.Builder
	b.WriteString("L" + strconv.Itoa(e.level))
	if e.Probability != nil {
		b.WriteString(" (p: " + formatValue(*e.Probability) + ")")
	}
	if e.Count != nil {
		b.WriteString(" (Count: " + strconv.Itoa(*e.Count) + ")")
	}
	b.WriteString(": A=" + e.Attributes.String())
	if e.Deontic != nil {
		b.WriteString(", D=" + formatValue(*e.Deontic))
	}
	if e.DeonticInverted {
		b.WriteString(" (inv)")
	}
	if r := e.Range(); e.Deontic != nil && r != nil {
		b.WriteString(" (" + string(r.TermForValue(*e.Deontic)) + ")")
	}
	b.WriteString(", I=" + e.Aim.String() + ", C=" + e.Conditions.String() + ", ")
	if e.orElse != nil {
		b.WriteString("\n   ")
	}
	b.WriteString("O=(" + e.orElse.String() + ")")
	return b.String()
}

func (e *Expression) combinationString() string {
	var b strings.Builder
	b.WriteString("\n")
	if len(e.nested) == 0 {
		b.WriteString("Empty NAdicoCombinator with logical combinator " + string(e.combinator))
		return b.String()
	}
	b.WriteString("(")
	for i, n := range e.nested {
		if i > 0 {
			b.WriteString(strings.Repeat("  ", n.level) + " ")
		}
		b.WriteString("(" + n.String() + ")")
		if i < len(e.nested)-1 {
			b.WriteString(" " + string(e.combinator) + "\n")
		}
	}
	b.WriteString(")\n")
	if e.orElse != nil {
		b.WriteString(strings.Repeat("  ", e.orElse.level))
		b.WriteString("O=(" + e.orElse.String() + ")")
	}
	return b.String()
}

// AICString renders only the attributes, aim and conditions of e, which is
// what generalization groups by.
func (e *Expression) AICString() string {
	if e.IsCombination() {
		parts := make([]string, len(e.nested))
		for i, n := range e.nested {
			parts[i] = "(" + n.AICString() + ")"
		}
		return strings.Join(parts, " "+string(e.combinator)+" ")
	}
	return fmt.Sprintf("%s, %s, %s", e.Attributes, e.Aim, e.Conditions)
}

func formatValue(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
