package engine

import (
	"context"

	"github.com/roach88/semstore/internal/queryir"
	"github.com/roach88/semstore/internal/rdf"
)

// Reader is the read side of the store used by identification.
// Implemented by *store.Store and *store.Tx.
type Reader interface {
	Match(ctx context.Context, q queryir.Query) ([]queryir.Solution, error)
	Contains(ctx context.Context, subject rdf.Node, predicate rdf.IRI, object rdf.Node, graph rdf.IRI) (bool, error)
}

// Writer is the store as used by the merger.
// Implemented by *store.Store and *store.Tx.
type Writer interface {
	Reader
	GraphMetadata(ctx context.Context, graph rdf.IRI) (rdf.PropertyMap, error)
	AgentFor(ctx context.Context, app string) (rdf.IRI, bool, error)
	AddStatement(ctx context.Context, subject rdf.Node, predicate rdf.IRI, object rdf.Node, graph rdf.IRI) (bool, error)
	RemoveStatements(ctx context.Context, subject rdf.Node, predicate rdf.IRI, object rdf.Node, graph rdf.IRI) (int64, error)
	CreateGraph(ctx context.Context, app string, metadata rdf.PropertyMap) (rdf.IRI, error)
	AllocateResourceID(ctx context.Context) (rdf.IRI, error)
	DropGraphIfEmpty(ctx context.Context, graph rdf.IRI) (bool, error)
}

// objectsOf returns the distinct stored objects of (subject, predicate).
func objectsOf(ctx context.Context, r Reader, subject rdf.Node, predicate rdf.IRI) ([]rdf.Node, error) {
	sols, err := r.Match(ctx, queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.C(subject), queryir.C(predicate), queryir.Var("v")),
		},
		Project:  []queryir.Var{"v"},
		Distinct: true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]rdf.Node, 0, len(sols))
	for _, sol := range sols {
		if v := sol.Get("v"); v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// storedTypes returns the rdf:type values recorded for subject.
func storedTypes(ctx context.Context, r Reader, subject rdf.Node) ([]rdf.IRI, error) {
	objs, err := objectsOf(ctx, r, subject, rdf.RDFType)
	if err != nil {
		return nil, err
	}
	out := make([]rdf.IRI, 0, len(objs))
	for _, o := range objs {
		if iri, ok := o.(rdf.IRI); ok {
			out = append(out, iri)
		}
	}
	return out, nil
}

// exists reports whether subject has any stored statement.
func exists(ctx context.Context, r Reader, subject rdf.Node) (bool, error) {
	return r.Contains(ctx, subject, "", nil, "")
}
