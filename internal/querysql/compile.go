// Package querysql compiles QueryIR pattern queries to parameterized SQL
// over the store's statements table.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/semstore/internal/queryir"
)

// DefaultTable is the quad table created by the store schema.
const DefaultTable = "statements"

// columns maps pattern positions to table columns, in S, P, O, G order.
var columns = [4]string{"subject", "predicate", "object", "graph"}

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// Every term column stores the N3 encoding of the term, so constants are
// bound as their N3 text.
//
// CRITICAL: ALL queries include ORDER BY for deterministic results.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct {
	Table string
}

// NewSQLCompiler creates a compiler for the default table.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Table: DefaultTable}
}

// Compiled is a compiled query plus what the caller needs to scan it.
type Compiled struct {
	SQL    string
	Params []any

	// Columns lists the projected variables in result column order. When
	// HasScore is set, the score is one extra trailing integer column.
	Columns  []queryir.Var
	HasScore bool
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	compiled, err := c.CompileQuery(q)
	if err != nil {
		return "", nil, err
	}
	return compiled.SQL, compiled.Params, nil
}

// CompileQuery is Compile with column metadata.
func (c *SQLCompiler) CompileQuery(q queryir.Query) (*Compiled, error) {
	if q == nil {
		return nil, fmt.Errorf("cannot compile nil query")
	}
	if err := queryir.Validate(q).Err(); err != nil {
		return nil, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// scope tracks which column reference first bound each variable.
type scope struct {
	refs map[queryir.Var]string
}

func newScope() *scope {
	return &scope{refs: map[queryir.Var]string{}}
}

// clause accumulates SQL fragments with their parameters in textual order.
type clause struct {
	parts  []string
	params []any
}

func (cl *clause) add(sql string, params ...any) {
	cl.parts = append(cl.parts, sql)
	cl.params = append(cl.params, params...)
}

// compileSelect compiles a queryir.Select to SQL.
// MANDATORY: Includes ORDER BY.
func (c *SQLCompiler) compileSelect(q queryir.Select) (*Compiled, error) {
	sc := newScope()

	// FROM and WHERE for required patterns
	from := make([]string, 0, len(q.Where))
	where := &clause{}
	for i, p := range q.Where {
		alias := fmt.Sprintf("t%d", i)
		from = append(from, fmt.Sprintf("%s AS %s", c.Table, alias))
		c.bindPattern(p, alias, sc, sc, where)
	}

	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter, sc)
		if err != nil {
			return nil, fmt.Errorf("compile filter: %w", err)
		}
		where.add(filterSQL, filterParams...)
	}

	// SELECT list
	sel := &clause{}
	for _, v := range q.Project {
		sel.add(sc.refs[v])
	}
	hasScore := q.ScoreVar != ""
	if hasScore {
		scoreSQL, scoreParams := c.compileScore(q.Optional, sc)
		sel.add(scoreSQL+" AS score", scoreParams...)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(strings.Join(sel.parts, ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.Join(from, ", "))
	if len(where.parts) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where.parts, " AND "))
	}

	// MANDATORY: Always add ORDER BY
	b.WriteString(" ORDER BY ")
	b.WriteString(stableOrderKey(q.Project, sc))

	params := append(append([]any{}, sel.params...), where.params...)
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}

	return &Compiled{
		SQL:      b.String(),
		Params:   params,
		Columns:  append([]queryir.Var(nil), q.Project...),
		HasScore: hasScore,
	}, nil
}

// bindPattern emits the conditions for one pattern aliased as alias.
// Variables already in outer are joined against; new variables are recorded
// in local.
func (c *SQLCompiler) bindPattern(p queryir.Pattern, alias string, outer, local *scope, cl *clause) {
	terms := [4]queryir.Term{p.Subject, p.Predicate, p.Object, p.Graph}
	for i, t := range terms {
		col := alias + "." + columns[i]
		switch term := t.(type) {
		case nil:
			// Unrestricted graph
		case queryir.Const:
			cl.add(col+" = ?", term.Node.N3())
		case queryir.Var:
			if ref, ok := outer.refs[term]; ok {
				cl.add(col + " = " + ref)
			} else if ref, ok := local.refs[term]; ok {
				cl.add(col + " = " + ref)
			} else {
				local.refs[term] = col
			}
		}
	}
}

// compileScore sums one EXISTS check per optional pattern. SQLite evaluates
// EXISTS to 0 or 1.
func (c *SQLCompiler) compileScore(optional []queryir.Pattern, outer *scope) (string, []any) {
	if len(optional) == 0 {
		return "0", nil
	}
	parts := make([]string, 0, len(optional))
	var params []any
	for i, p := range optional {
		alias := fmt.Sprintf("o%d", i)
		cond := &clause{}
		c.bindPattern(p, alias, outer, newScope(), cond)
		sub := fmt.Sprintf("EXISTS (SELECT 1 FROM %s AS %s", c.Table, alias)
		if len(cond.parts) > 0 {
			sub += " WHERE " + strings.Join(cond.parts, " AND ")
		}
		sub += ")"
		parts = append(parts, sub)
		params = append(params, cond.params...)
	}
	return "(" + strings.Join(parts, " + ") + ")", params
}

// compilePredicate compiles a filter to a WHERE fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate, sc *scope) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return sc.refs[pred.Var] + " = ?", []any{pred.Value.N3()}, nil
	case queryir.NotEquals:
		return sc.refs[pred.Var] + " <> ?", []any{pred.Value.N3()}, nil
	case queryir.In:
		if len(pred.Values) == 0 {
			return "0 = 1", nil, nil
		}
		marks := make([]string, len(pred.Values))
		params := make([]any, len(pred.Values))
		for i, v := range pred.Values {
			marks[i] = "?"
			params[i] = v.N3()
		}
		return sc.refs[pred.Var] + " IN (" + strings.Join(marks, ", ") + ")", params, nil
	case queryir.And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil
		}
		var parts []string
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := c.compilePredicate(sub, sc)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// stableOrderKey orders by every projected column.
// Uses COLLATE BINARY for deterministic text ordering.
func stableOrderKey(project []queryir.Var, sc *scope) string {
	keys := make([]string, len(project))
	for i, v := range project {
		keys[i] = sc.refs[v] + " ASC COLLATE BINARY"
	}
	return strings.Join(keys, ", ")
}
