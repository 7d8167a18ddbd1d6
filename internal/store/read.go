package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/semstore/internal/queryir"
	"github.com/roach88/semstore/internal/rdf"
)

// Match executes a pattern query and returns its solutions in the
// compiler's deterministic order.
func (o *ops) Match(ctx context.Context, q queryir.Query) ([]queryir.Solution, error) {
	compiled, err := o.compiler.CompileQuery(q)
	if err != nil {
		return nil, fmt.Errorf("compile match: %w", err)
	}

	rows, err := o.q.QueryContext(ctx, compiled.SQL, compiled.Params...)
	if err != nil {
		return nil, fmt.Errorf("execute match: %w", err)
	}
	defer rows.Close()

	var solutions []queryir.Solution
	for rows.Next() {
		terms := make([]string, len(compiled.Columns))
		dest := make([]any, 0, len(terms)+1)
		for i := range terms {
			dest = append(dest, &terms[i])
		}
		var score int
		if compiled.HasScore {
			dest = append(dest, &score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}

		sol := queryir.Solution{
			Bindings: make(map[queryir.Var]rdf.Node, len(terms)),
			Score:    score,
		}
		for i, text := range terms {
			node, err := rdf.ParseN3(text)
			if err != nil {
				return nil, fmt.Errorf("decode ?%s: %w", compiled.Columns[i], err)
			}
			sol.Bindings[compiled.Columns[i]] = node
		}
		solutions = append(solutions, sol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match: %w", err)
	}
	return solutions, nil
}

// Statements returns the statements of one graph, or of every graph when
// graph is empty, in insertion order.
func (o *ops) Statements(ctx context.Context, graph rdf.IRI) ([]rdf.Statement, error) {
	query := `SELECT subject, predicate, object, graph FROM statements`
	var args []any
	if graph != "" {
		query += ` WHERE graph = ?`
		args = append(args, graph.N3())
	}
	query += ` ORDER BY seq ASC`

	rows, err := o.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var out []rdf.Statement
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statements: %w", err)
	}
	return out, nil
}

// Contains reports whether a statement matching the pattern exists. Zero
// terms are wildcards.
func (o *ops) Contains(ctx context.Context, subject rdf.Node, predicate rdf.IRI, object rdf.Node, graph rdf.IRI) (bool, error) {
	n, err := o.Count(ctx, subject, predicate, object, graph)
	return n > 0, err
}

// Count returns how many statements match the pattern. Zero terms are
// wildcards.
func (o *ops) Count(ctx context.Context, subject rdf.Node, predicate rdf.IRI, object rdf.Node, graph rdf.IRI) (int64, error) {
	where, args := patternWhere(subject, predicate, object, graph)
	var n int64
	err := o.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM statements`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count statements: %w", err)
	}
	return n, nil
}

// AgentFor returns the resource representing application app.
func (o *ops) AgentFor(ctx context.Context, app string) (rdf.IRI, bool, error) {
	sols, err := o.Match(ctx, queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.Var("a"), queryir.C(rdf.RDFType), queryir.C(rdf.NAOAgent)),
			queryir.Triple(queryir.Var("a"), queryir.C(rdf.NAOIdentifier), queryir.C(rdf.NewString(app))),
		},
		Project: []queryir.Var{"a"},
		Limit:   1,
	})
	if err != nil {
		return "", false, fmt.Errorf("lookup agent %q: %w", app, err)
	}
	if len(sols) == 0 {
		return "", false, nil
	}
	iri, ok := sols[0].Get("a").(rdf.IRI)
	return iri, ok, nil
}

// GraphMetadata returns the metadata recorded for graph.
func (o *ops) GraphMetadata(ctx context.Context, graph rdf.IRI) (rdf.PropertyMap, error) {
	rows, err := o.q.QueryContext(ctx, `
		SELECT subject, predicate, object, graph FROM statements
		WHERE subject = ? AND graph IN (
			SELECT subject FROM statements
			WHERE predicate = ? AND object = ?
		)
		ORDER BY seq ASC
	`, graph.N3(), rdf.NRLCoreGraphMetadataFor.N3(), graph.N3())
	if err != nil {
		return nil, fmt.Errorf("query graph metadata: %w", err)
	}
	defer rows.Close()

	meta := rdf.PropertyMap{}
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		meta.Add(s.Predicate, s.Object)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graph metadata: %w", err)
	}
	return meta, nil
}

func scanStatement(rows *sql.Rows) (rdf.Statement, error) {
	var subj, pred, obj, graph string
	if err := rows.Scan(&subj, &pred, &obj, &graph); err != nil {
		return rdf.Statement{}, fmt.Errorf("scan statement: %w", err)
	}
	s, err := decodeStatement(subj, pred, obj, graph)
	if err != nil {
		return rdf.Statement{}, fmt.Errorf("decode statement: %w", err)
	}
	return s, nil
}

func decodeStatement(subj, pred, obj, graph string) (rdf.Statement, error) {
	s, err := rdf.ParseN3(subj)
	if err != nil {
		return rdf.Statement{}, err
	}
	p, err := rdf.ParseN3(pred)
	if err != nil {
		return rdf.Statement{}, err
	}
	o, err := rdf.ParseN3(obj)
	if err != nil {
		return rdf.Statement{}, err
	}
	g, err := rdf.ParseN3(graph)
	if err != nil {
		return rdf.Statement{}, err
	}
	pIRI, _ := p.(rdf.IRI)
	gIRI, _ := g.(rdf.IRI)
	return rdf.Statement{Subject: s, Predicate: pIRI, Object: o, Graph: gIRI}, nil
}

// patternWhere builds a WHERE clause for a statement pattern. Zero terms are
// wildcards.
func patternWhere(subject rdf.Node, predicate rdf.IRI, object rdf.Node, graph rdf.IRI) (string, []any) {
	var conds []string
	var args []any
	if subject != nil {
		conds = append(conds, "subject = ?")
		args = append(args, subject.N3())
	}
	if predicate != "" {
		conds = append(conds, "predicate = ?")
		args = append(args, predicate.N3())
	}
	if object != nil {
		conds = append(conds, "object = ?")
		args = append(args, object.N3())
	}
	if graph != "" {
		conds = append(conds, "graph = ?")
		args = append(args, graph.N3())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
