package engine

import (
	"context"

	"github.com/roach88/semstore/internal/queryir"
	"github.com/roach88/semstore/internal/rdf"
)

// findDuplicates moves statements that already exist verbatim out of the
// pending lists and records them under the graph that holds them.
// Statements still involving placeholders cannot exist yet.
func (m *Merger) findDuplicates(ctx context.Context, st *mergeState) error {
	var err error
	if st.types, err = m.splitDuplicates(ctx, st, st.types); err != nil {
		return err
	}
	if st.props, err = m.splitDuplicates(ctx, st, st.props); err != nil {
		return err
	}
	return nil
}

func (m *Merger) splitDuplicates(ctx context.Context, st *mergeState, stmts []rdf.Statement) ([]rdf.Statement, error) {
	kept := stmts[:0:0]
	for _, s := range stmts {
		if st.isPlaceholder(s.Subject) || st.isPlaceholder(s.Object) {
			kept = append(kept, s)
			continue
		}
		graph, found, err := m.graphOf(ctx, s)
		if err != nil {
			return nil, storeError("find duplicate", err)
		}
		if !found {
			kept = append(kept, s)
			continue
		}
		st.duplicates[graph] = append(st.duplicates[graph], s)
		st.result.Duplicates++
	}
	return kept, nil
}

// graphOf returns a graph holding the triple of s.
func (m *Merger) graphOf(ctx context.Context, s rdf.Statement) (rdf.IRI, bool, error) {
	sols, err := m.st.Match(ctx, queryir.Select{
		Where: []queryir.Pattern{{
			Subject:   queryir.C(s.Subject),
			Predicate: queryir.C(s.Predicate),
			Object:    queryir.C(s.Object),
			Graph:     queryir.Var("g"),
		}},
		Project: []queryir.Var{"g"},
		Limit:   1,
	})
	if err != nil || len(sols) == 0 {
		return "", false, err
	}
	g, ok := sols[0].Get("g").(rdf.IRI)
	return g, ok, nil
}

// resolveGraphs decides, per old graph holding duplicates, whether the old
// graph already describes the new batch or must be superseded by a graph
// carrying the union of both metadata sets.
func (m *Merger) resolveGraphs(ctx context.Context, st *mergeState) error {
	olds := make([]rdf.IRI, 0, len(st.duplicates))
	for g := range st.duplicates {
		olds = append(olds, g)
	}
	rdf.SortIRIs(olds)

	for _, old := range olds {
		oldMeta, err := m.st.GraphMetadata(ctx, old)
		if err != nil {
			return storeError("read graph metadata", err)
		}
		same, err := m.sameGraph(ctx, oldMeta, st.metadata)
		if err != nil {
			return err
		}
		if same {
			m.cfg.logger.Debug("duplicates already attributed", "graph", old, "statements", len(st.duplicates[old]))
			continue
		}

		union := unionMetadata(oldMeta, st.metadata)
		if err := m.checkGraphMetadata(ctx, union); err != nil {
			return err
		}
		graph, err := m.st.CreateGraph(ctx, m.cfg.app, union)
		if err != nil {
			return storeError("create graph", err)
		}
		st.repoint[old] = graph
		st.result.Superseded[old] = graph
		st.result.Graphs = append(st.result.Graphs, graph)
		m.cfg.logger.Debug("superseding graph", "old", old, "new", graph, "statements", len(st.duplicates[old]))
	}
	return nil
}

// sameGraph reports whether an existing graph's metadata already describes
// the new batch.
//
// nao:created and nao:maintainedBy are ignored when comparing properties.
// Types are compared after folding nrl:InstanceBase into both sides; a type
// on one side matches when it or one of its ancestors appears on the other.
// Discardable graphs only match discardable batches. The old graph must be
// maintained by the merging application.
func (m *Merger) sameGraph(ctx context.Context, oldMeta, newMeta rdf.PropertyMap) (bool, error) {
	if !sameProperties(oldMeta, newMeta) || !sameProperties(newMeta, oldMeta) {
		return false, nil
	}

	oldTypes := appendIRI(oldMeta.Types(), rdf.NRLInstanceBase)
	newTypes := appendIRI(newMeta.Types(), rdf.NRLInstanceBase)
	if !m.containsAllTypes(oldTypes, newTypes) || !m.containsAllTypes(newTypes, oldTypes) {
		return false, nil
	}
	if oldMeta.Contains(rdf.RDFType, rdf.NRLDiscardableInstanceBase) != newMeta.Contains(rdf.RDFType, rdf.NRLDiscardableInstanceBase) {
		return false, nil
	}

	agent, ok, err := m.st.AgentFor(ctx, m.cfg.app)
	if err != nil {
		return false, storeError("lookup agent", err)
	}
	return ok && oldMeta.Contains(rdf.NAOMaintainedBy, agent), nil
}

// sameProperties reports whether every non-type value of a is in b.
func sameProperties(a, b rdf.PropertyMap) bool {
	for p, vs := range a {
		switch p {
		case rdf.RDFType, rdf.NAOCreated, rdf.NAOMaintainedBy:
			continue
		}
		for _, v := range vs {
			if !b.Contains(p, v) {
				return false
			}
		}
	}
	return true
}

// containsAllTypes reports whether every type is in master or descends from
// a type in master.
func (m *Merger) containsAllTypes(types, master []rdf.IRI) bool {
	for _, t := range types {
		found := false
		for _, mt := range master {
			if t == mt || m.tree.IsSubclassOf(t, mt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// unionMetadata merges old and new graph metadata. The result is
// discardable only when both sides are. nao:created is dropped so the
// superseding graph records its own creation time.
func unionMetadata(oldMeta, newMeta rdf.PropertyMap) rdf.PropertyMap {
	discardable := oldMeta.Contains(rdf.RDFType, rdf.NRLDiscardableInstanceBase) &&
		newMeta.Contains(rdf.RDFType, rdf.NRLDiscardableInstanceBase)

	out := rdf.PropertyMap{}
	for _, meta := range []rdf.PropertyMap{oldMeta, newMeta} {
		for _, p := range meta.Predicates() {
			if p == rdf.NAOCreated {
				continue
			}
			for _, v := range meta.Values(p) {
				if p == rdf.RDFType && rdf.Equal(v, rdf.NRLDiscardableInstanceBase) {
					continue
				}
				out.Add(p, v)
			}
		}
	}
	if discardable {
		out.Add(rdf.RDFType, rdf.NRLDiscardableInstanceBase)
	}
	return out
}
