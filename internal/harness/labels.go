package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/semstore/internal/rdf"
)

// labeler names store identifiers in traces. Resources bound to a blank
// node are "$name"; other resources and graphs are numbered in order of
// first appearance ("r1", "g1"). Vocabulary IRIs are compacted.
type labeler struct {
	ns        rdf.Namespaces
	labels    map[rdf.IRI]string
	graphs    int
	resources int
}

func newLabeler(ns rdf.Namespaces) *labeler {
	return &labeler{ns: ns, labels: make(map[rdf.IRI]string)}
}

// name labels iri unless it already has a label.
func (l *labeler) name(iri rdf.IRI, label string) {
	if _, ok := l.labels[iri]; !ok {
		l.labels[iri] = label
	}
}

func (l *labeler) iri(iri rdf.IRI) string {
	if label, ok := l.labels[iri]; ok {
		return label
	}
	var label string
	switch {
	case strings.HasPrefix(string(iri), rdf.GraphPrefix):
		l.graphs++
		label = fmt.Sprintf("g%d", l.graphs)
	case strings.HasPrefix(string(iri), rdf.ResourcePrefix):
		l.resources++
		label = fmt.Sprintf("r%d", l.resources)
	default:
		return l.ns.Compact(iri)
	}
	l.labels[iri] = label
	return label
}

func (l *labeler) node(n rdf.Node) string {
	switch v := n.(type) {
	case nil:
		return ""
	case rdf.IRI:
		return l.iri(v)
	case rdf.Literal:
		if v.Datatype != "" {
			return strings.TrimSuffix(v.N3(), v.Datatype.N3()) + l.ns.Compact(v.Datatype)
		}
		return v.N3()
	default:
		return n.N3()
	}
}

// nodes labels in input order and returns the labels sorted.
func (l *labeler) nodes(nodes []rdf.Node) []string {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = l.node(n)
	}
	sort.Strings(out)
	return out
}

func (l *labeler) iris(iris []rdf.IRI) []string {
	nodes := make([]rdf.Node, len(iris))
	for i, iri := range iris {
		nodes[i] = iri
	}
	return l.nodes(nodes)
}
