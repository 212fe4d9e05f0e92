package generalizer

import (
	"fmt"

	"nadico/internal/logging"
	"nadico/internal/nadico"
)

// DeriveADICStatements derives statements from the cached level-0
// generalization and caches them. subject may be nil.
func (g *Generalizer) DeriveADICStatements(subject *nadico.Attributes) ([]*nadico.Expression, error) {
	out, err := g.DeriveADICStatementsFrom(g.generalized, false, subject)
	if err != nil {
		return nil, err
	}
	g.statements = out
	return out, nil
}

// DeriveADICStatementsAtLevel derives statements from the cached
// generalization of level. Higher levels have their individual markers
// erased, so the monitored statement is always the previous action.
func (g *Generalizer) DeriveADICStatementsAtLevel(level int, subject *nadico.Attributes) ([]*nadico.Expression, error) {
	out, err := g.DeriveADICStatementsFrom(g.generalizedHigherLevel[level], false, subject)
	if err != nil {
		return nil, err
	}
	g.statementsHigherLevel[level] = out
	return out, nil
}

// DeriveADICStatementsFrom splits every generalized key of m into a
// monitored statement whose orElse is the consequential statement. The
// monitored candidate is the previous action or, with requireDiffering, the
// first preceding expression whose attributes differ from subject (the
// key's own attributes when subject is nil). Keys without a candidate are
// kept as descriptive statements. The result is sorted by count, highest
// first. m is not modified.
func (g *Generalizer) DeriveADICStatementsFrom(m *nadico.ExpressionMap, requireDiffering bool, subject *nadico.Attributes) ([]*nadico.Expression, error) {
	if m.Len() == 0 {
		logging.GeneralizerWarn("%s: cannot derive ADIC statements yet, not enough data", g.owner)
		return []*nadico.Expression{}, nil
	}
	out := make([]*nadico.Expression, 0, m.Len())
	for _, grp := range m.Copy().Groups() {
		stmt, err := g.deriveStatement(grp, requireDiffering, subject)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	nadico.SortByCount(out, false)
	logging.GeneralizerDebug("%s: derived %d ADIC statements", g.owner, len(out))
	return out, nil
}

func (g *Generalizer) deriveStatement(grp *nadico.Group, requireDiffering bool, subject *nadico.Attributes) (*nadico.Expression, error) {
	expr := grp.Key
	var candidate *nadico.Expression
	if requireDiffering {
		perspective := subject
		if perspective == nil {
			perspective = expr.Attributes
		}
		candidate = expr.PrecedingExpressionWithDifferentAttributes(perspective)
	} else if expr.Conditions != nil {
		candidate = expr.Conditions.PreviousAction()
	}
	if candidate != nil {
		expr.DeleteFromChain(candidate)
	}

	consequential := expr.Copy()
	consequential.SetRange(g.rng)
	consequential.MakeStatementRecursively()
	if candidate == nil {
		consequential.SetCount(len(grp.Instances))
		return consequential, nil
	}

	monitored := candidate.Copy()
	monitored.SetRange(g.rng)
	monitored.MakeStatementRecursively()
	if err := monitored.SetOrElse(consequential); err != nil {
		return nil, fmt.Errorf("attaching consequential statement: %w", err)
	}
	monitored.Deontic = consequential.Deontic
	if consequential.Deontic != nil {
		consequential.SetDeontic(g.rng.Invert(*consequential.Deontic))
	}
	consequential.DeonticInverted = true
	monitored.SetCount(len(grp.Instances))
	return monitored, nil
}
