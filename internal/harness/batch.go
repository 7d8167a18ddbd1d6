package harness

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/semstore/internal/engine"
	"github.com/roach88/semstore/internal/rdf"
)

// Batch is a set of resources to merge or identify, written as YAML (or
// JSON) in the compact term syntax:
//
//	prefixes:
//	  ex: http://example.org/
//	metadata:
//	  a: nrl:DiscardableInstanceBase
//	resources:
//	  _:alice:
//	    a: nco:PersonContact
//	    nco:fullname: '"Alice"'
//	    nco:nickname: ['"Al"', '"Ally"']
//
// Inside scenarios a term "$name" refers to the store resource that the
// blank node _:name was mapped to by an earlier step.
type Batch struct {
	// Prefixes extends the default namespaces for this batch.
	Prefixes map[string]string `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`

	// Metadata describes the graph the merge creates.
	Metadata map[string]Values `yaml:"metadata,omitempty" json:"metadata,omitempty"`

	// Resources maps subject terms to their properties.
	Resources map[string]map[string]Values `yaml:"resources" json:"resources"`

	// Overwrite and Lazy select the merge flags.
	Overwrite bool `yaml:"overwrite,omitempty" json:"overwrite,omitempty"`
	Lazy      bool `yaml:"lazy,omitempty" json:"lazy,omitempty"`
}

// Values is one term or a list of terms.
type Values []string

// UnmarshalYAML accepts a scalar as a one-element list.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = Values{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*v = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a term or a list of terms", node.Line)
	}
}

// Binder resolves "$name" references. It returns false for unknown names.
type Binder func(name string) (rdf.IRI, bool)

// Decoded is a batch in engine terms.
type Decoded struct {
	Statements []rdf.Statement
	Metadata   rdf.PropertyMap
	Flags      engine.Flags
}

// LoadBatch reads a batch file. Unknown fields are rejected.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatch(data)
}

// ParseBatch decodes a batch document.
func ParseBatch(data []byte) (*Batch, error) {
	var b Batch
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	if len(b.Resources) == 0 {
		return nil, fmt.Errorf("invalid batch: resources must be non-empty")
	}
	return &b, nil
}

// Decode converts the batch into statements, graph metadata and flags.
// ns is extended by the batch prefixes; bind may be nil.
func (b *Batch) Decode(ns rdf.Namespaces, bind Binder) (*Decoded, error) {
	if len(b.Prefixes) > 0 {
		ns = ns.With(b.Prefixes)
	}
	d := &batchDecoder{ns: ns, bind: bind}

	out := &Decoded{Metadata: rdf.PropertyMap{}}
	for _, p := range sortedKeys(b.Metadata) {
		pred, err := d.predicate(p)
		if err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
		for _, raw := range b.Metadata[p] {
			v, err := d.term(raw)
			if err != nil {
				return nil, fmt.Errorf("metadata %s: %w", p, err)
			}
			out.Metadata.Add(pred, v)
		}
	}

	for _, s := range sortedKeys(b.Resources) {
		subject, err := d.term(s)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", s, err)
		}
		props := b.Resources[s]
		for _, p := range sortedKeys(props) {
			pred, err := d.predicate(p)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", s, err)
			}
			for _, raw := range props[p] {
				v, err := d.term(raw)
				if err != nil {
					return nil, fmt.Errorf("resource %s %s: %w", s, p, err)
				}
				out.Statements = append(out.Statements, rdf.NewStatement(subject, pred, v))
			}
		}
	}
	rdf.SortStatements(out.Statements)

	if b.Overwrite {
		out.Flags |= engine.OverwriteProperties
	}
	if b.Lazy {
		out.Flags |= engine.LazyCardinalities
	}
	return out, nil
}

type batchDecoder struct {
	ns   rdf.Namespaces
	bind Binder
}

func (d *batchDecoder) term(s string) (rdf.Node, error) {
	return parseTerm(d.ns, d.bind, s)
}

func (d *batchDecoder) predicate(s string) (rdf.IRI, error) {
	n, err := d.term(s)
	if err != nil {
		return "", err
	}
	iri, ok := n.(rdf.IRI)
	if !ok {
		return "", fmt.Errorf("predicate %q is not an IRI", s)
	}
	return iri, nil
}

// parseTerm is ParseTerm with "$name" references.
func parseTerm(ns rdf.Namespaces, bind Binder, s string) (rdf.Node, error) {
	s = strings.TrimSpace(s)
	if name, ok := strings.CutPrefix(s, "$"); ok {
		if bind == nil {
			return nil, fmt.Errorf("reference %q outside a scenario", s)
		}
		iri, ok := bind(name)
		if !ok {
			return nil, fmt.Errorf("unbound reference %q", s)
		}
		return iri, nil
	}
	return ns.ParseTerm(s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
