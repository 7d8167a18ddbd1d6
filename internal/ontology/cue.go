package ontology

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/semstore/internal/rdf"
)

// Load error codes.
const (
	ErrCodeNotFound    = "E201" // ontology directory not found
	ErrCodeNoFiles     = "E202" // no CUE files in directory
	ErrCodeLoadFailed  = "E203" // CUE instance failed to load
	ErrCodeBuildFailed = "E204" // CUE value failed to build
	ErrCodeBadPrefix   = "E205" // unknown or malformed prefixed name
	ErrCodeBadField    = "E206" // field has the wrong shape
)

// LoadError represents an error that occurred while loading an ontology.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir loads every CUE file in dir on top of the core vocabulary.
func LoadDir(dir string) (*Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("ontology directory not found: %s", dir)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil || len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(ErrCodeBuildFailed, err)
	}

	s := Default()
	if err := Extend(s, value); err != nil {
		return nil, err
	}
	return s, nil
}

// CompileString compiles one CUE source on top of the core vocabulary.
func CompileString(src string) (*Schema, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(ErrCodeBuildFailed, err)
	}

	s := Default()
	if err := Extend(s, value); err != nil {
		return nil, err
	}
	return s, nil
}

// Extend adds the classes and properties declared in v to s.
func Extend(s *Schema, v cue.Value) error {
	ns := rdf.DefaultNamespaces()
	if prefixes := v.LookupPath(cue.ParsePath("prefixes")); prefixes.Exists() {
		extra := map[string]string{}
		if err := prefixes.Decode(&extra); err != nil {
			return formatCUEError(ErrCodeBadField, err)
		}
		ns = ns.With(extra)
	}

	if classes := v.LookupPath(cue.ParsePath("class")); classes.Exists() {
		err := eachField(classes, func(label string, cv cue.Value) error {
			c, err := parseClass(ns, label, cv)
			if err != nil {
				return err
			}
			s.AddClass(c)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if props := v.LookupPath(cue.ParsePath("property")); props.Exists() {
		err := eachField(props, func(label string, pv cue.Value) error {
			p, err := parseProperty(ns, label, pv)
			if err != nil {
				return err
			}
			s.AddProperty(p)
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// eachField visits struct fields in label order.
func eachField(v cue.Value, fn func(label string, fv cue.Value) error) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(ErrCodeBadField, err)
	}
	type field struct {
		label string
		value cue.Value
	}
	var fields []field
	for iter.Next() {
		fields = append(fields, field{label: iter.Label(), value: iter.Value()})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].label < fields[j].label })
	for _, f := range fields {
		if err := fn(f.label, f.value); err != nil {
			return err
		}
	}
	return nil
}

func parseClass(ns rdf.Namespaces, label string, v cue.Value) (Class, error) {
	iri, err := expand(ns, label, v.Pos())
	if err != nil {
		return Class{}, err
	}
	c := Class{IRI: iri}

	if parents := v.LookupPath(cue.ParsePath("parents")); parents.Exists() {
		var names []string
		if err := parents.Decode(&names); err != nil {
			return Class{}, formatCUEError(ErrCodeBadField, err)
		}
		for _, name := range names {
			parent, err := expand(ns, name, parents.Pos())
			if err != nil {
				return Class{}, err
			}
			c.Parents = append(c.Parents, parent)
		}
	}
	if len(c.Parents) == 0 && iri != rdf.RDFSResource {
		c.Parents = []rdf.IRI{rdf.RDFSResource}
	}

	c.Label, err = optionalString(v, "label")
	if err != nil {
		return Class{}, err
	}
	return c, nil
}

func parseProperty(ns rdf.Namespaces, label string, v cue.Value) (Property, error) {
	iri, err := expand(ns, label, v.Pos())
	if err != nil {
		return Property{}, err
	}
	p := Property{IRI: iri}

	for field, dst := range map[string]*rdf.IRI{"domain": &p.Domain, "range": &p.Range} {
		name, err := optionalString(v, field)
		if err != nil {
			return Property{}, err
		}
		if name == "" {
			continue
		}
		if *dst, err = expand(ns, name, v.LookupPath(cue.ParsePath(field)).Pos()); err != nil {
			return Property{}, err
		}
	}

	if mc := v.LookupPath(cue.ParsePath("maxCardinality")); mc.Exists() {
		n, err := mc.Int64()
		if err != nil {
			return Property{}, formatCUEError(ErrCodeBadField, err)
		}
		if n < 0 {
			return Property{}, &LoadError{Code: ErrCodeBadField, Message: fmt.Sprintf("%s: negative maxCardinality", label), Pos: mc.Pos()}
		}
		p.MaxCardinality = int(n)
	}

	if id := v.LookupPath(cue.ParsePath("identifying")); id.Exists() {
		b, err := id.Bool()
		if err != nil {
			return Property{}, formatCUEError(ErrCodeBadField, err)
		}
		p.Identifying = Bool(b)
	}

	p.Label, err = optionalString(v, "label")
	if err != nil {
		return Property{}, err
	}
	return p, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(ErrCodeBadField, err)
	}
	return s, nil
}

func expand(ns rdf.Namespaces, name string, pos token.Pos) (rdf.IRI, error) {
	iri, err := ns.ParseIRI(name)
	if err != nil {
		return "", &LoadError{Code: ErrCodeBadPrefix, Message: err.Error(), Pos: pos}
	}
	return iri, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
