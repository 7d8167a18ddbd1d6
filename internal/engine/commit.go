package engine

import (
	"context"

	"github.com/roach88/semstore/internal/rdf"
)

// graph returns the main graph, creating it on first use.
func (m *Merger) graph(ctx context.Context, st *mergeState) (rdf.IRI, error) {
	if st.mainGraph != "" {
		return st.mainGraph, nil
	}
	g, err := m.st.CreateGraph(ctx, m.cfg.app, st.metadata)
	if err != nil {
		return "", storeError("create graph", err)
	}
	st.mainGraph = g
	st.result.Graph = g
	st.result.Graphs = append(st.result.Graphs, g)
	return g, nil
}

// add writes one statement into the main graph.
func (m *Merger) add(ctx context.Context, st *mergeState, s rdf.Node, p rdf.IRI, o rdf.Node) (bool, error) {
	g, err := m.graph(ctx, st)
	if err != nil {
		return false, err
	}
	inserted, err := m.st.AddStatement(ctx, s, p, o, g)
	if err != nil {
		return false, storeError("add statement", err)
	}
	if inserted {
		st.result.Inserted++
	}
	return inserted, nil
}

// remove deletes every stored (s, p, o) in any graph. A nil o matches any
// value.
func (m *Merger) remove(ctx context.Context, st *mergeState, s rdf.Node, p rdf.IRI, o rdf.Node) (int64, error) {
	n, err := m.st.RemoveStatements(ctx, s, p, o, "")
	if err != nil {
		return 0, storeError("remove statements", err)
	}
	st.result.Removed += int(n)
	return n, nil
}

// materialize allocates a store resource for every unresolved placeholder,
// stamps its creation and modification time and rewrites the pending
// statements to use it.
func (m *Merger) materialize(ctx context.Context, st *mergeState) error {
	if len(st.placeholders) == 0 {
		return nil
	}
	placeholders := make([]rdf.Node, 0, len(st.placeholders))
	for p := range st.placeholders {
		placeholders = append(placeholders, p)
	}
	rdf.SortNodes(placeholders)

	hasCreated := make(map[rdf.Node]bool)
	for _, s := range st.resMeta {
		if s.Predicate == rdf.NAOCreated {
			hasCreated[s.Subject] = true
		}
	}

	now := rdf.NewDateTime(m.cfg.clock.Now())
	mapping := make(map[rdf.Node]rdf.IRI, len(placeholders))
	for _, p := range placeholders {
		id, err := m.st.AllocateResourceID(ctx)
		if err != nil {
			return storeError("allocate resource", err)
		}
		mapping[p] = id
		st.result.Mappings[p] = id

		if !hasCreated[p] {
			if _, err := m.add(ctx, st, id, rdf.NAOCreated, now); err != nil {
				return err
			}
		}
		if _, err := m.add(ctx, st, id, rdf.NAOLastModified, now); err != nil {
			return err
		}

		st.created[id] = true
		st.result.Created = append(st.result.Created, id)
		st.newTypes[id] = st.newTypes[p]
		delete(st.newTypes, p)
		if m.notify != nil {
			m.notify.ResourceCreated(id, st.newTypes[id])
		}
	}

	rewrite := func(stmts []rdf.Statement) {
		for i, s := range stmts {
			if id, ok := mapping[s.Subject]; ok {
				stmts[i].Subject = id
			}
			if id, ok := mapping[s.Object]; ok {
				stmts[i].Object = id
			}
		}
	}
	rewrite(st.types)
	rewrite(st.props)
	rewrite(st.resMeta)
	st.placeholders = make(map[rdf.Node]struct{})

	m.cfg.logger.Debug("materialized resources", "count", len(placeholders))
	return nil
}

// commit writes types, properties, moved duplicates and resource metadata.
func (m *Merger) commit(ctx context.Context, st *mergeState) error {
	if err := m.commitTypes(ctx, st); err != nil {
		return err
	}
	if err := m.commitProperties(ctx, st); err != nil {
		return err
	}
	if err := m.commitDuplicates(ctx, st); err != nil {
		return err
	}
	if err := m.touchModified(ctx, st); err != nil {
		return err
	}
	return m.commitResourceMetadata(ctx, st)
}

func (m *Merger) commitTypes(ctx context.Context, st *mergeState) error {
	keys, values := groupProps(st.types)
	for _, k := range keys {
		var added []rdf.Node
		for _, t := range values[k] {
			inserted, err := m.add(ctx, st, k.subject, rdf.RDFType, t)
			if err != nil {
				return err
			}
			if inserted {
				added = append(added, t)
			}
		}
		if len(added) == 0 {
			continue
		}
		st.touched[k.subject] = struct{}{}
		if err := m.notifyChange(ctx, st, k.subject, rdf.RDFType, added, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *Merger) commitProperties(ctx context.Context, st *mergeState) error {
	keys, values := groupProps(st.props)
	// Removals stand even when every incoming value was a duplicate.
	extra := false
	for k := range st.overwrite {
		if _, ok := values[k]; !ok {
			keys = append(keys, k)
			extra = true
		}
	}
	if extra {
		sortKeys(keys)
	}
	for _, k := range keys {
		var removed []rdf.Node
		for _, old := range st.overwrite[k] {
			n, err := m.remove(ctx, st, k.subject, k.predicate, old)
			if err != nil {
				return err
			}
			if n > 0 {
				removed = append(removed, old)
			}
		}

		var added []rdf.Node
		for _, v := range values[k] {
			inserted, err := m.add(ctx, st, k.subject, k.predicate, v)
			if err != nil {
				return err
			}
			if inserted {
				added = append(added, v)
			}
		}

		if len(added) == 0 && len(removed) == 0 {
			continue
		}
		st.touched[k.subject] = struct{}{}
		if err := m.notifyChange(ctx, st, k.subject, k.predicate, added, removed); err != nil {
			return err
		}
	}
	return nil
}

// commitDuplicates moves duplicates of superseded graphs into their new
// graph. Watchers are not told: only provenance changed.
func (m *Merger) commitDuplicates(ctx context.Context, st *mergeState) error {
	olds := make([]rdf.IRI, 0, len(st.repoint))
	for g := range st.repoint {
		olds = append(olds, g)
	}
	rdf.SortIRIs(olds)

	for _, old := range olds {
		graph := st.repoint[old]
		for _, s := range st.duplicates[old] {
			if _, err := m.st.RemoveStatements(ctx, s.Subject, s.Predicate, s.Object, old); err != nil {
				return storeError("move duplicate", err)
			}
			if _, err := m.st.AddStatement(ctx, s.Subject, s.Predicate, s.Object, graph); err != nil {
				return storeError("move duplicate", err)
			}
		}
		dropped, err := m.st.DropGraphIfEmpty(ctx, old)
		if err != nil {
			return storeError("drop graph", err)
		}
		if dropped {
			m.cfg.logger.Debug("dropped empty graph", "graph", old)
		}
	}
	return nil
}

// touchModified replaces nao:lastModified of every existing resource that
// received a new type or property value.
func (m *Merger) touchModified(ctx context.Context, st *mergeState) error {
	subjects := make([]rdf.Node, 0, len(st.touched))
	for s := range st.touched {
		if !st.created[s] {
			subjects = append(subjects, s)
		}
	}
	rdf.SortNodes(subjects)

	now := rdf.NewDateTime(m.cfg.clock.Now())
	for _, s := range subjects {
		if _, err := m.remove(ctx, st, s, rdf.NAOLastModified, nil); err != nil {
			return err
		}
		if _, err := m.add(ctx, st, s, rdf.NAOLastModified, now); err != nil {
			return err
		}
	}
	return nil
}

// commitResourceMetadata applies caller-supplied resource metadata.
// nao:lastModified and nao:userVisible keep only the newest value,
// nao:created keeps the first, nao:creator values are added.
func (m *Merger) commitResourceMetadata(ctx context.Context, st *mergeState) error {
	rdf.SortStatements(st.resMeta)
	for _, s := range st.resMeta {
		switch s.Predicate {
		case rdf.NAOLastModified, rdf.NAOUserVisible:
			stored, err := objectsOf(ctx, m.st, s.Subject, s.Predicate)
			if err != nil {
				return storeError("read resource metadata", err)
			}
			if len(stored) == 1 && rdf.Equal(stored[0], s.Object) {
				continue
			}
			if _, err := m.remove(ctx, st, s.Subject, s.Predicate, nil); err != nil {
				return err
			}
		case rdf.NAOCreated:
			found, err := m.st.Contains(ctx, s.Subject, rdf.NAOCreated, nil, "")
			if err != nil {
				return storeError("read resource metadata", err)
			}
			if found {
				continue
			}
		}
		if _, err := m.add(ctx, st, s.Subject, s.Predicate, s.Object); err != nil {
			return err
		}
	}
	return nil
}

// notifyChange reports a changed value set. The types of resources created
// by this merge were announced with ResourceCreated already.
func (m *Merger) notifyChange(ctx context.Context, st *mergeState, subject rdf.Node, p rdf.IRI, added, removed []rdf.Node) error {
	if m.notify == nil || (p == rdf.RDFType && st.created[subject]) {
		return nil
	}
	res, ok := subject.(rdf.IRI)
	if !ok {
		return nil
	}
	types, err := m.typesOf(ctx, st, subject)
	if err != nil {
		return err
	}
	m.notify.PropertyChanged(res, types, p, added, removed)
	return nil
}
