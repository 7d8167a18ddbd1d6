package engine

import (
	"context"
	"fmt"

	"github.com/roach88/semstore/internal/ontology"
	"github.com/roach88/semstore/internal/rdf"
)

// checkGraphMetadata validates graph metadata using only the metadata
// itself as context. Every asserted type must be nrl:Graph or a subclass;
// the graph is implicitly an nrl:InstanceBase for domain checks.
func (m *Merger) checkGraphMetadata(ctx context.Context, meta rdf.PropertyMap) error {
	graphTypes := []rdf.IRI{rdf.NRLInstanceBase}
	for _, v := range meta.Values(rdf.RDFType) {
		t, ok := v.(rdf.IRI)
		if !ok {
			return graphMetadataError("rdf:type value %s is not a class", v.N3())
		}
		if t != rdf.NRLGraph && !m.tree.IsSubclassOf(t, rdf.NRLGraph) {
			return graphMetadataError("graph type %s is not a subclass of nrl:Graph", t)
		}
		graphTypes = appendIRI(graphTypes, t)
	}

	for _, p := range meta.Predicates() {
		if p == rdf.RDFType {
			continue
		}
		values := meta.Values(p)

		if max, ok := m.tree.MaxCardinality(p); ok && max > 0 && len(values) > max {
			return graphMetadataError("%s has a max cardinality of %d", p, max)
		}
		if domain, ok := m.tree.PropertyDomain(p); ok && !ontology.IsOfType(m.tree, graphTypes, domain) {
			return graphMetadataError("%s has a rdfs:domain of %s", p, domain)
		}
		rng, ok := m.tree.PropertyRange(p)
		if !ok {
			continue
		}
		for _, v := range values {
			switch o := v.(type) {
			case rdf.Literal:
				if !literalInRange(m.tree, o, rng) {
					return graphMetadataError("%s has a rdfs:range of %s", p, rng)
				}
			case rdf.IRI:
				if m.tree.IsLiteralType(rng) {
					return graphMetadataError("%s has a rdfs:range of %s", p, rng)
				}
				types, err := storedTypes(ctx, m.st, o)
				if err != nil {
					return storeError("lookup types", err)
				}
				if !ontology.IsOfType(m.tree, types, rng) {
					return graphMetadataError("%s has a rdfs:range of %s", p, rng)
				}
			default:
				return graphMetadataError("%s value %s must be a literal or a resource", p, v.N3())
			}
		}
	}
	return nil
}

// checkCardinality counts stored plus new distinct values for every
// (subject, predicate) pair with a declared maximum.
func (m *Merger) checkCardinality(ctx context.Context, st *mergeState) error {
	keys, values := groupProps(st.props)
	for _, k := range keys {
		max, ok := m.tree.MaxCardinality(k.predicate)
		if !ok || max <= 0 {
			continue
		}
		newVals := values[k]

		var stored, others []rdf.Node
		if !st.isPlaceholder(k.subject) {
			var err error
			stored, err = objectsOf(ctx, m.st, k.subject, k.predicate)
			if err != nil {
				return storeError("count values", err)
			}
			for _, v := range stored {
				if !containsNode(newVals, v) {
					others = append(others, v)
				}
			}
		}

		if len(others)+len(newVals) <= max {
			continue
		}
		switch {
		case st.flags.Has(LazyCardinalities):
			m.trimToCardinality(st, k, max, stored, others, newVals)
		case st.flags.Has(OverwriteProperties) && max == 1 && len(newVals) == 1 && len(others) == 1:
			st.overwrite[k] = others
		default:
			err := NewCardinalityError(k.subject, k.predicate, max, newVals)
			err.Details["existing"] = fmt.Sprintf("%d", len(others))
			return err
		}
	}
	return nil
}

// trimToCardinality keeps the newest max values of k. Incoming values are
// newer than stored ones and later incoming values newer than earlier ones.
// Stored values that are not kept are scheduled for removal; incoming values
// that are not kept are dropped from the batch.
func (m *Merger) trimToCardinality(st *mergeState, k spKey, max int, stored, others, newVals []rdf.Node) {
	all := append(append([]rdf.Node(nil), others...), newVals...)
	kept := all[len(all)-max:]

	for _, v := range stored {
		if !containsNode(kept, v) {
			st.overwrite[k] = append(st.overwrite[k], v)
		}
	}
	props := st.props[:0:0]
	for _, s := range st.props {
		if rdf.Equal(s.Subject, k.subject) && s.Predicate == k.predicate && !containsNode(kept, s.Object) {
			continue
		}
		props = append(props, s)
	}
	st.props = props

	m.cfg.logger.Debug("cardinality trimmed",
		"subject", k.subject.N3(),
		"predicate", k.predicate,
		"max", max,
		"dropped", len(all)-max)
}

// checkDomainRange checks every property statement against the declared
// domain and range of its predicate, using stored and newly asserted types.
func (m *Merger) checkDomainRange(ctx context.Context, st *mergeState) error {
	for _, s := range st.props {
		if domain, ok := m.tree.PropertyDomain(s.Predicate); ok {
			types, err := m.typesOf(ctx, st, s.Subject)
			if err != nil {
				return err
			}
			if !ontology.IsOfType(m.tree, types, domain) {
				return NewDomainError(s.Subject, s.Predicate, domain)
			}
		}

		rng, ok := m.tree.PropertyRange(s.Predicate)
		if !ok {
			continue
		}
		switch o := s.Object.(type) {
		case rdf.Literal:
			if !literalInRange(m.tree, o, rng) {
				return NewRangeError(s.Subject, s.Predicate, rng, o)
			}
		default:
			if m.tree.IsLiteralType(rng) {
				return NewRangeError(s.Subject, s.Predicate, rng, o)
			}
			types, err := m.typesOf(ctx, st, o)
			if err != nil {
				return err
			}
			if !ontology.IsOfType(m.tree, types, rng) {
				return NewRangeError(s.Subject, s.Predicate, rng, o)
			}
		}
	}
	return nil
}

// literalInRange reports whether lit satisfies range rng.
//
// rdfs:Literal accepts any literal. A plain or language-tagged literal
// satisfies xsd:string. An integer-typed literal satisfies xsd:duration,
// which stores durations as seconds. Otherwise the datatype must be rng or
// a subclass of it.
func literalInRange(tree ontology.Tree, lit rdf.Literal, rng rdf.IRI) bool {
	switch {
	case rng == rdf.RDFSLiteral:
		return true
	case rng == rdf.XSDDuration && lit.IsInteger():
		return true
	case lit.IsPlain():
		return rng == rdf.XSDString
	case lit.Datatype == rng:
		return true
	}
	return tree.IsSubclassOf(lit.Datatype, rng)
}
