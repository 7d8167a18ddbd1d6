package queryir

import (
	"fmt"
)

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	Problems []string
}

// Err returns the problems as an error, or nil for a valid query.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("invalid query: %v", r.Problems)
}

// Validate checks that a query is well formed:
//  1. Select has at least one required pattern
//  2. Every pattern position is set
//  3. Projected and filtered variables are bound by a required pattern
//  4. The score variable does not clash with a pattern variable
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{}
	v.validateQuery(query)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if len(sel.Where) == 0 {
		v.addProblem("select needs at least one required pattern")
	}

	bound := map[Var]bool{}
	for i, p := range sel.Where {
		v.validatePattern("where", i, p)
		for _, name := range p.Vars() {
			bound[name] = true
		}
	}
	for i, p := range sel.Optional {
		v.validatePattern("optional", i, p)
	}

	if len(sel.Project) == 0 {
		v.addProblem("empty projection - select needs explicit variables")
	}
	for _, name := range sel.Project {
		if !bound[name] {
			v.addProblem("projected variable ?%s is not bound by a required pattern", name)
		}
	}
	if sel.ScoreVar != "" && bound[sel.ScoreVar] {
		v.addProblem("score variable ?%s is also a pattern variable", sel.ScoreVar)
	}
	if sel.Limit < 0 {
		v.addProblem("negative limit %d", sel.Limit)
	}

	v.validatePredicate(sel.Filter, bound)
}

func (v *validator) validatePattern(section string, i int, p Pattern) {
	if p.Subject == nil || p.Predicate == nil || p.Object == nil {
		v.addProblem("%s pattern %d has an unset position", section, i)
	}
	for _, t := range []Term{p.Subject, p.Predicate, p.Object, p.Graph} {
		if c, ok := t.(Const); ok && c.Node == nil {
			v.addProblem("%s pattern %d has a nil constant", section, i)
		}
	}
}

func (v *validator) validatePredicate(p Predicate, bound map[Var]bool) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.checkFilterVar(pred.Var, bound)
	case NotEquals:
		v.checkFilterVar(pred.Var, bound)
	case In:
		v.checkFilterVar(pred.Var, bound)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, bound)
		}
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) checkFilterVar(name Var, bound map[Var]bool) {
	if !bound[name] {
		v.addProblem("filter variable ?%s is not bound by a required pattern", name)
	}
}
