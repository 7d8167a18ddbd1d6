package rdf

import (
	"fmt"
	"strings"
)

// Namespaces maps prefixes to namespace IRIs for compact term syntax
// ("nfo:Folder").
type Namespaces map[string]string

// DefaultNamespaces returns the prefixes of the built-in vocabularies.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		"rdf":  NSRDF,
		"rdfs": NSRDFS,
		"xsd":  NSXSD,
		"nrl":  NSNRL,
		"nao":  NSNAO,
		"nie":  NSNIE,
		"nfo":  NSNFO,
		"nco":  NSNCO,
	}
}

// With returns a copy of ns extended by extra. Entries in extra win.
func (ns Namespaces) With(extra map[string]string) Namespaces {
	out := make(Namespaces, len(ns)+len(extra))
	for k, v := range ns {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Expand resolves "prefix:local" to a full IRI.
func (ns Namespaces) Expand(name string) (IRI, error) {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return "", fmt.Errorf("%q is not a prefixed name", name)
	}
	base, ok := ns[prefix]
	if !ok {
		return "", fmt.Errorf("unknown prefix %q in %q", prefix, name)
	}
	return IRI(base + local), nil
}

// Compact abbreviates iri with the longest matching namespace, or returns
// its N3 form when none matches.
func (ns Namespaces) Compact(iri IRI) string {
	best, bestLen := "", 0
	for prefix, base := range ns {
		if len(base) > bestLen && strings.HasPrefix(string(iri), base) {
			best, bestLen = prefix, len(base)
		}
	}
	if bestLen == 0 {
		return iri.N3()
	}
	return best + ":" + string(iri)[bestLen:]
}

// ParseTerm decodes the compact term syntax used in batch and scenario files:
// N3 terms plus prefixed names, including prefixed literal datatypes
// ("42"^^xsd:int). The "a" keyword stands for rdf:type.
func (ns Namespaces) ParseTerm(s string) (Node, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, errEmptyTerm
	case s == "a":
		return RDFType, nil
	case strings.HasPrefix(s, `"`):
		return parseLiteral(s, ns)
	case strings.HasPrefix(s, "<"), strings.HasPrefix(s, "_:"):
		return ParseN3(s)
	}
	// A registered prefix takes precedence over IRI schemes such as file:.
	if prefix, _, ok := strings.Cut(s, ":"); ok {
		if _, known := ns[prefix]; known {
			return ns.Expand(s)
		}
	}
	return nil, fmt.Errorf("unrecognised term %q", s)
}

// ParseIRI is ParseTerm restricted to IRIs.
func (ns Namespaces) ParseIRI(s string) (IRI, error) {
	n, err := ns.ParseTerm(s)
	if err != nil {
		return "", err
	}
	iri, ok := n.(IRI)
	if !ok {
		return "", fmt.Errorf("%q is not an IRI", s)
	}
	return iri, nil
}
