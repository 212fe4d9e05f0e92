// Package facts exports derived norms as Mangle facts so they can be loaded
// into a Datalog program next to other knowledge.
//
// Two predicates are produced:
//
//	norm(Owner, Position, Statement, DeonticTerm, DeonticCenti, Count).
//	or_else(Owner, Position, Statement, DeonticTerm).
//
// DeonticTerm is a name constant such as /must or /should_not. Deontic
// values are scaled by 100 and rounded, since Mangle numbers are integers.
package facts

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"

	"nadico/internal/deontic"
	"nadico/internal/generalizer"
	"nadico/internal/nadico"
)

const (
	PredicateNorm   = "norm"
	PredicateOrElse = "or_else"
)

// Declarations is the schema emitted ahead of exported facts.
const Declarations = `Decl norm(Owner, Position, Statement, DeonticTerm, DeonticCenti, Count).
Decl or_else(Owner, Position, Statement, DeonticTerm).
`

// MangleAtom is a Mangle name constant (starting with /).
type MangleAtom string

// Fact is a single logical fact.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// String returns the Datalog representation of the fact.
func (f Fact) String() string {
	args := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case MangleAtom:
			args = append(args, string(v))
		case string:
			args = append(args, fmt.Sprintf("%q", v))
		case int:
			args = append(args, fmt.Sprintf("%d", v))
		case int64:
			args = append(args, fmt.Sprintf("%d", v))
		default:
			args = append(args, fmt.Sprintf("%q", fmt.Sprint(v)))
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// ToAtom converts the fact to a Mangle atom.
func (f Fact) ToAtom() (ast.Atom, error) {
	terms := make([]ast.BaseTerm, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case MangleAtom:
			c, err := ast.Name(string(v))
			if err != nil {
				return ast.Atom{}, fmt.Errorf("%s: %w", f.Predicate, err)
			}
			terms = append(terms, c)
		case string:
			terms = append(terms, ast.String(v))
		case int:
			terms = append(terms, ast.Number(int64(v)))
		case int64:
			terms = append(terms, ast.Number(v))
		default:
			terms = append(terms, ast.String(fmt.Sprint(v)))
		}
	}
	return ast.NewAtom(f.Predicate, terms...), nil
}

// TermAtom returns the name constant for t, e.g. /may_not.
func TermAtom(t deontic.Term) MangleAtom {
	return MangleAtom("/" + strings.ReplaceAll(strings.ToLower(string(t)), " ", "_"))
}

// Centi scales a deontic value for export.
func Centi(v float64) int64 {
	return int64(math.Round(v * 100))
}

// FromStatements builds norm and or_else facts for derived statements.
// Terms are classified against rng. Positions start at 0 and follow the
// order of stmts.
func FromStatements(owner string, rng *deontic.Range, stmts []*nadico.Expression) []Fact {
	var out []Fact
	for i, s := range stmts {
		if s == nil || !s.IsStatement() {
			continue
		}
		v := s.DeonticValue()
		out = append(out, Fact{
			Predicate: PredicateNorm,
			Args: []interface{}{
				owner,
				i,
				generalizer.StringifiedAICStatement(s),
				TermAtom(rng.TermForValue(v)),
				Centi(v),
				s.CountValue(),
			},
		})
		if c := s.OrElse(); c != nil {
			out = append(out, Fact{
				Predicate: PredicateOrElse,
				Args: []interface{}{
					owner,
					i,
					generalizer.StringifiedAICStatement(c),
					TermAtom(rng.TermForValue(c.DeonticValue())),
				},
			})
		}
	}
	return out
}

// Render writes the declarations followed by one fact per line.
func Render(w io.Writer, facts []Fact) error {
	if _, err := io.WriteString(w, Declarations); err != nil {
		return err
	}
	for _, f := range facts {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
	}
	return nil
}

// NewStore loads facts into an in-memory Mangle fact store.
func NewStore(facts []Fact) (factstore.FactStore, error) {
	store := factstore.NewSimpleInMemoryStore()
	for _, f := range facts {
		atom, err := f.ToAtom()
		if err != nil {
			return nil, err
		}
		store.Add(atom)
	}
	return store, nil
}

// NormsFor returns the norm atoms of owner held by store.
func NormsFor(store factstore.ReadOnlyFactStore, owner string) ([]ast.Atom, error) {
	want := ast.String(owner)
	var out []ast.Atom
	err := store.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: PredicateNorm, Arity: 6}), func(a ast.Atom) error {
		if a.Args[0].Equals(want) {
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

// OrElseFor returns the or_else atoms of owner held by store, keyed by the
// position of the norm they belong to.
func OrElseFor(store factstore.ReadOnlyFactStore, owner string) (map[int64]ast.Atom, error) {
	want := ast.String(owner)
	out := make(map[int64]ast.Atom)
	err := store.GetFacts(ast.NewQuery(ast.PredicateSym{Symbol: PredicateOrElse, Arity: 4}), func(a ast.Atom) error {
		if !a.Args[0].Equals(want) {
			return nil
		}
		if pos, ok := Position(a); ok {
			out[pos] = a
		}
		return nil
	})
	return out, err
}

// Position returns the position argument of a norm or or_else atom.
func Position(a ast.Atom) (int64, bool) {
	if len(a.Args) < 2 {
		return 0, false
	}
	c, ok := a.Args[1].(ast.Constant)
	if !ok || c.Type != ast.NumberType {
		return 0, false
	}
	return c.NumValue, true
}

// HasTerm reports whether the norm or or_else atom a is classified as t.
func HasTerm(a ast.Atom, t deontic.Term) bool {
	if len(a.Args) < 4 {
		return false
	}
	name, err := ast.Name(string(TermAtom(t)))
	if err != nil {
		return false
	}
	return a.Args[3].Equals(name)
}
