package store

import (
	"context"
	"fmt"

	"github.com/roach88/semstore/internal/rdf"
)

// AddStatement writes one statement into graph.
//
// Idempotent: writing the same (subject, predicate, object, graph) again is a
// no-op. Returns whether a row was inserted.
func (o *ops) AddStatement(ctx context.Context, subject rdf.Node, predicate rdf.IRI, object rdf.Node, graph rdf.IRI) (bool, error) {
	s := rdf.Statement{Subject: subject, Predicate: predicate, Object: object, Graph: graph}
	if err := s.Validate(); err != nil {
		return false, fmt.Errorf("add statement: %w", err)
	}
	if _, isBlank := subject.(rdf.Blank); isBlank {
		return false, fmt.Errorf("add statement: blank subject %s cannot be stored", subject.N3())
	}
	if _, isBlank := object.(rdf.Blank); isBlank {
		return false, fmt.Errorf("add statement: blank object %s cannot be stored", object.N3())
	}
	if graph == "" {
		return false, fmt.Errorf("add statement: missing graph")
	}

	res, err := o.q.ExecContext(ctx, `
		INSERT INTO statements (id, subject, predicate, object, graph)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rdf.StatementID(s), subject.N3(), predicate.N3(), object.N3(), graph.N3())
	if err != nil {
		return false, fmt.Errorf("add statement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add statement: %w", err)
	}
	return n > 0, nil
}

// RemoveStatements deletes every statement matching the pattern and returns
// how many were removed. Zero terms are wildcards; an all-wildcard pattern is
// rejected.
func (o *ops) RemoveStatements(ctx context.Context, subject rdf.Node, predicate rdf.IRI, object rdf.Node, graph rdf.IRI) (int64, error) {
	where, args := patternWhere(subject, predicate, object, graph)
	if where == "" {
		return 0, fmt.Errorf("remove statements: refusing to remove everything")
	}
	res, err := o.q.ExecContext(ctx, `DELETE FROM statements`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("remove statements: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove statements: %w", err)
	}
	return n, nil
}

// AllocateResourceID returns a new store resource IRI.
func (o *ops) AllocateResourceID(ctx context.Context) (rdf.IRI, error) {
	return rdf.IRI(rdf.ResourcePrefix + o.ids.Generate()), nil
}

// CreateGraph creates a graph attributed to application app and returns its
// IRI.
//
// The metadata is written with the graph as subject into a companion
// metadata graph. The store adds:
//   - rdf:type nrl:InstanceBase when the metadata asserts no type
//   - nao:created (now) unless present
//   - nao:maintainedBy the agent resource of app, created on first use
//
// An empty app creates an unattributed graph.
func (o *ops) CreateGraph(ctx context.Context, app string, metadata rdf.PropertyMap) (rdf.IRI, error) {
	props := metadata.Clone()
	if props == nil {
		props = rdf.PropertyMap{}
	}
	if len(props.Types()) == 0 {
		props.Add(rdf.RDFType, rdf.NRLInstanceBase)
	}
	if _, ok := props.First(rdf.NAOCreated); !ok {
		props.Add(rdf.NAOCreated, rdf.NewDateTime(o.now()))
	}
	if app != "" {
		agent, err := o.ensureAgent(ctx, app)
		if err != nil {
			return "", fmt.Errorf("create graph: %w", err)
		}
		props.Add(rdf.NAOMaintainedBy, agent)
	}

	graph := rdf.IRI(rdf.GraphPrefix + o.ids.Generate())
	if err := o.writeGraphMetadata(ctx, graph, props); err != nil {
		return "", fmt.Errorf("create graph: %w", err)
	}
	return graph, nil
}

// DropGraphIfEmpty removes the metadata of graph when the graph no longer
// holds any statement. Reports whether the graph was dropped.
func (o *ops) DropGraphIfEmpty(ctx context.Context, graph rdf.IRI) (bool, error) {
	n, err := o.Count(ctx, nil, "", nil, graph)
	if err != nil {
		return false, fmt.Errorf("drop graph: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	rows, err := o.q.QueryContext(ctx, `
		SELECT graph FROM statements
		WHERE predicate = ? AND object = ?
		ORDER BY seq ASC
	`, rdf.NRLCoreGraphMetadataFor.N3(), graph.N3())
	if err != nil {
		return false, fmt.Errorf("drop graph: %w", err)
	}
	var metaGraphs []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			rows.Close()
			return false, fmt.Errorf("drop graph: %w", err)
		}
		metaGraphs = append(metaGraphs, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("drop graph: %w", err)
	}

	for _, mg := range metaGraphs {
		if _, err := o.q.ExecContext(ctx, `DELETE FROM statements WHERE graph = ?`, mg); err != nil {
			return false, fmt.Errorf("drop graph: %w", err)
		}
	}
	return len(metaGraphs) > 0, nil
}

// ensureAgent returns the agent resource of app, creating it in its own
// unattributed graph when missing.
func (o *ops) ensureAgent(ctx context.Context, app string) (rdf.IRI, error) {
	agent, ok, err := o.AgentFor(ctx, app)
	if err != nil {
		return "", err
	}
	if ok {
		return agent, nil
	}

	agent, err = o.AllocateResourceID(ctx)
	if err != nil {
		return "", err
	}
	graph, err := o.CreateGraph(ctx, "", nil)
	if err != nil {
		return "", err
	}
	if _, err := o.AddStatement(ctx, agent, rdf.RDFType, rdf.NAOAgent, graph); err != nil {
		return "", err
	}
	if _, err := o.AddStatement(ctx, agent, rdf.NAOIdentifier, rdf.NewString(app), graph); err != nil {
		return "", err
	}
	return agent, nil
}

// writeGraphMetadata stores props about graph in a new metadata graph.
func (o *ops) writeGraphMetadata(ctx context.Context, graph rdf.IRI, props rdf.PropertyMap) error {
	metaGraph := rdf.IRI(rdf.GraphPrefix + o.ids.Generate())
	for _, s := range props.Statements(graph) {
		if _, err := o.AddStatement(ctx, s.Subject, s.Predicate, s.Object, metaGraph); err != nil {
			return err
		}
	}
	if _, err := o.AddStatement(ctx, metaGraph, rdf.RDFType, rdf.NRLGraphMetadata, metaGraph); err != nil {
		return err
	}
	if _, err := o.AddStatement(ctx, metaGraph, rdf.NRLCoreGraphMetadataFor, graph, metaGraph); err != nil {
		return err
	}
	return nil
}
