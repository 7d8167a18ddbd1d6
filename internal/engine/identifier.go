package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/semstore/internal/ontology"
	"github.com/roach88/semstore/internal/queryir"
	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/resource"
)

// Identifier matches staged resources against the store.
//
// An Identifier is a session: statements are added, subjects identified,
// mapped, forced or ignored, and the remaining batch is handed to the
// merger together with the accumulated mapping. Every subject of the batch
// is either mapped or pending; Unidentified lists the pending ones.
//
// An Identifier is not safe for concurrent use.
type Identifier struct {
	reader Reader
	tree   ontology.Tree
	cfg    config

	batch    resource.Batch
	mappings map[rdf.Node]rdf.IRI
	pending  map[rdf.Node]struct{}
	failures map[rdf.Node]error
}

// NewIdentifier creates an empty identification session reading from r.
func NewIdentifier(r Reader, tree ontology.Tree, opts ...Option) *Identifier {
	return newIdentifier(r, tree, newConfig(opts))
}

func newIdentifier(r Reader, tree ontology.Tree, cfg config) *Identifier {
	return &Identifier{
		reader:   r,
		tree:     tree,
		cfg:      cfg,
		batch:    resource.Batch{},
		mappings: make(map[rdf.Node]rdf.IRI),
		pending:  make(map[rdf.Node]struct{}),
		failures: make(map[rdf.Node]error),
	}
}

// Mode returns the identification mode of the session.
func (id *Identifier) Mode() Mode {
	return id.cfg.mode
}

// AddStatements adds statements to the session batch.
func (id *Identifier) AddStatements(stmts []rdf.Statement) {
	id.AddBatch(resource.FromStatements(stmts))
}

// AddBatch unites b into the session batch. Subjects not yet mapped become
// pending.
func (id *Identifier) AddBatch(b resource.Batch) {
	id.batch = resource.Unite(id.batch, b)
	for _, subj := range b.Subjects() {
		if _, mapped := id.mappings[subj]; !mapped {
			id.pending[subj] = struct{}{}
		}
	}
}

// Batch returns a copy of the session batch.
func (id *Identifier) Batch() resource.Batch {
	return id.batch.Clone()
}

// Statements returns the statements of the session batch.
func (id *Identifier) Statements() []rdf.Statement {
	return id.batch.ToStatements()
}

// Identify tries to map subject to a stored resource. It returns true when
// subject is mapped, either now or by an earlier call. A false result with a
// nil error leaves subject pending; Failure reports why.
//
// The returned error is always a store failure.
func (id *Identifier) Identify(ctx context.Context, subject rdf.Node) (bool, error) {
	return id.identify(ctx, subject, newResolving())
}

// IdentifyAll runs Identify for every pending subject in subject order.
// Returns the number of subjects mapped by this call.
func (id *Identifier) IdentifyAll(ctx context.Context) (int, error) {
	before := len(id.mappings)
	guard := newResolving()
	for _, subj := range id.Unidentified() {
		if _, err := id.identify(ctx, subj, guard); err != nil {
			return len(id.mappings) - before, err
		}
	}
	return len(id.mappings) - before, nil
}

// MappedURI returns the store resource subject is mapped to.
func (id *Identifier) MappedURI(subject rdf.Node) (rdf.IRI, bool) {
	iri, ok := id.mappings[subject]
	return iri, ok
}

// Mappings returns a copy of the identification mapping.
func (id *Identifier) Mappings() map[rdf.Node]rdf.IRI {
	out := make(map[rdf.Node]rdf.IRI, len(id.mappings))
	for k, v := range id.mappings {
		out[k] = v
	}
	return out
}

// Unidentified returns the pending subjects in sorted order.
func (id *Identifier) Unidentified() []rdf.Node {
	out := make([]rdf.Node, 0, len(id.pending))
	for subj := range id.pending {
		out = append(out, subj)
	}
	rdf.SortNodes(out)
	return out
}

// Failure returns why the last identification of subject failed, or nil.
// Ambiguity is reported as an AMBIGUOUS_IDENTIFICATION *Error; a missing
// match wraps ErrNoMatch.
func (id *Identifier) Failure(subject rdf.Node) error {
	return id.failures[subject]
}

// ManualIdentification maps subject to target without matching.
func (id *Identifier) ManualIdentification(subject rdf.Node, target rdf.IRI) {
	id.record(subject, target)
}

// ForceResource maps subject to target and, when the staged resource has a
// location, rewrites the locations of pending resources below it to sit
// below target's stored location.
//
// For a container both locations are used as directory prefixes. For any
// other resource the trailing path segment is stripped from both first, so
// siblings are rewritten.
func (id *Identifier) ForceResource(ctx context.Context, subject rdf.Node, target rdf.IRI) error {
	id.record(subject, target)

	res, ok := id.batch[subject]
	if !ok {
		return nil
	}
	oldLoc, ok := res.PrimaryLocation()
	if !ok {
		return nil
	}
	locs, err := objectsOf(ctx, id.reader, target, rdf.NIEURL)
	if err != nil {
		return storeError("lookup location", err)
	}
	if len(locs) == 0 {
		return nil
	}
	newLoc, ok := locationText(locs[0])
	if !ok {
		return nil
	}
	id.batch[subject] = res.WithPrimaryLocation(newLoc)

	var oldPrefix, newPrefix string
	if res.IsContainer(id.tree) {
		oldPrefix, newPrefix = withTrailingSlash(oldLoc), withTrailingSlash(newLoc)
	} else {
		oldPrefix, newPrefix = parentLocation(oldLoc), parentLocation(newLoc)
	}
	// A location without a path has no parent to rewrite below.
	if oldPrefix == "" || newPrefix == "" || oldPrefix == newPrefix {
		return nil
	}

	rewritten := 0
	for _, other := range id.Unidentified() {
		r, ok := id.batch[other]
		if !ok {
			continue
		}
		loc, ok := r.PrimaryLocation()
		if !ok || !strings.HasPrefix(loc, oldPrefix) {
			continue
		}
		id.batch[other] = r.WithPrimaryLocation(newPrefix + loc[len(oldPrefix):])
		rewritten++
	}

	id.cfg.logger.Debug("forced resource",
		"subject", subject.N3(),
		"target", target,
		"old_prefix", oldPrefix,
		"new_prefix", newPrefix,
		"rewritten", rewritten)
	return nil
}

// Ignore removes a pending subject from the session and strips every
// reference to it from the other staged resources. With cascade set and a
// container subject, pending resources located below it are removed too.
// Returns false if subject is already mapped.
func (id *Identifier) Ignore(subject rdf.Node, cascade bool) bool {
	if _, mapped := id.mappings[subject]; mapped {
		return false
	}

	removed := []rdf.Node{subject}
	if res, ok := id.batch[subject]; ok && cascade && res.IsContainer(id.tree) {
		if loc, ok := res.PrimaryLocation(); ok {
			prefix := withTrailingSlash(loc)
			for _, other := range id.Unidentified() {
				if other == subject {
					continue
				}
				l, ok := id.batch[other].PrimaryLocation()
				if ok && strings.HasPrefix(l, prefix) {
					removed = append(removed, other)
				}
			}
		}
	}

	for _, r := range removed {
		delete(id.batch, r)
		delete(id.pending, r)
		delete(id.failures, r)
	}
	for _, res := range id.batch {
		for _, r := range removed {
			res.Props.RemoveValue(r)
		}
	}

	id.cfg.logger.Debug("ignored resources", "subject", subject.N3(), "removed", len(removed))
	return true
}

func (id *Identifier) record(subject rdf.Node, target rdf.IRI) {
	id.mappings[subject] = target
	delete(id.pending, subject)
	delete(id.failures, subject)
}

func (id *Identifier) identify(ctx context.Context, subject rdf.Node, guard *resolving) (bool, error) {
	if _, ok := id.mappings[subject]; ok {
		return true, nil
	}
	if !guard.enter(subject) {
		id.cfg.logger.Debug("identification cycle", "subject", subject.N3())
		return false, nil
	}
	defer guard.leave(subject)

	target, err := id.run(ctx, subject, guard)
	var f *failure
	if errors.As(err, &f) {
		reason := f.reason
		id.failures[subject] = reason
		if IsAmbiguousError(reason) {
			id.cfg.metrics.recordIdentification("ambiguous")
		} else {
			id.cfg.metrics.recordIdentification("unmatched")
		}
		id.cfg.logger.Debug("identification failed", "subject", subject.N3(), "reason", reason.Error())
		return false, nil
	}
	if err != nil {
		id.cfg.metrics.recordIdentification("error")
		return false, err
	}

	id.record(subject, target)
	id.cfg.metrics.recordIdentification("identified")
	id.cfg.logger.Debug("identified resource", "subject", subject.N3(), "target", target)
	return true, nil
}

// failure is a local identification failure. It never leaves the package:
// identify records the reason and reports false.
type failure struct {
	reason error
}

func (f *failure) Error() string { return f.reason.Error() }

func (f *failure) Unwrap() error { return f.reason }

func fail(reason error) error {
	return &failure{reason: reason}
}

// run performs one identification. It returns a target, a *failure, or a
// store error.
func (id *Identifier) run(ctx context.Context, subject rdf.Node, guard *resolving) (rdf.IRI, error) {
	if iri, ok := subject.(rdf.IRI); ok && rdf.IsStoreIRI(iri) {
		found, err := exists(ctx, id.reader, iri)
		if err != nil {
			return "", storeError("check resource", err)
		}
		if !found {
			return "", fail(&Error{
				Code:    ErrCodeUnresolvableReference,
				Message: "store resource does not exist",
				Subject: iri,
			})
		}
		return iri, nil
	}

	switch id.cfg.mode {
	case IdentifyNone:
		return "", fail(fmt.Errorf("%w: identification disabled", ErrNoMatch))
	case IdentifyNew:
		if _, blank := subject.(rdf.Blank); !blank {
			return "", fail(fmt.Errorf("%w: foreign identifiers are not identified in mode %s", ErrNoMatch, id.cfg.mode))
		}
	}

	res, ok := id.batch[subject]
	if !ok {
		return "", fail(fmt.Errorf("%w: no statements about %s", ErrNoMatch, subject.N3()))
	}

	if loc, ok := res.Props.First(rdf.NIEURL); ok {
		return id.identifyByLocation(ctx, loc)
	}

	types := res.Types()
	if len(types) == 0 {
		return "", fail(fmt.Errorf("%w: resource has no type", ErrNoMatch))
	}

	optional, err := id.identifyingPatterns(ctx, res, guard)
	if err != nil {
		return "", err
	}
	if len(optional) == 0 {
		return "", fail(fmt.Errorf("%w: no identifying values", ErrNoMatch))
	}

	where := make([]queryir.Pattern, 0, len(types))
	for _, t := range types {
		where = append(where, queryir.Triple(queryir.Var("r"), queryir.C(rdf.RDFType), queryir.C(t)))
	}
	sols, err := id.reader.Match(ctx, queryir.Select{
		Where:    where,
		Optional: optional,
		Project:  []queryir.Var{"r"},
		Distinct: true,
		ScoreVar: "score",
	})
	if err != nil {
		return "", storeError("match candidates", err)
	}

	best := 0
	var candidates []rdf.IRI
	for _, sol := range sols {
		r, ok := sol.Get("r").(rdf.IRI)
		if !ok || sol.Score == 0 {
			continue
		}
		switch {
		case sol.Score > best:
			best = sol.Score
			candidates = []rdf.IRI{r}
		case sol.Score == best:
			candidates = append(candidates, r)
		}
	}

	switch len(candidates) {
	case 0:
		if id.cfg.additional != nil {
			target, ok, err := id.cfg.additional(ctx, id.reader, subject, res.Clone())
			if err != nil {
				return "", storeError("additional identification", err)
			}
			if ok {
				return target, nil
			}
		}
		return "", fail(fmt.Errorf("%w: no candidate among %d resources of type %v", ErrNoMatch, len(sols), types))
	case 1:
		return candidates[0], nil
	}

	rdf.SortIRIs(candidates)
	if id.cfg.duplicateMatch != nil {
		target, ok, err := id.cfg.duplicateMatch(ctx, id.reader, subject, candidates, best)
		if err != nil {
			return "", storeError("duplicate match", err)
		}
		if ok {
			return target, nil
		}
	}
	return "", fail(NewAmbiguousError(subject, candidates, best))
}

// identifyByLocation maps a resource with a location to the stored resource
// with exactly that location.
func (id *Identifier) identifyByLocation(ctx context.Context, loc rdf.Node) (rdf.IRI, error) {
	sols, err := id.reader.Match(ctx, queryir.Select{
		Where: []queryir.Pattern{
			queryir.Triple(queryir.Var("r"), queryir.C(rdf.NIEURL), queryir.C(loc)),
		},
		Project: []queryir.Var{"r"},
		Limit:   1,
	})
	if err != nil {
		return "", storeError("match location", err)
	}
	if len(sols) == 0 {
		return "", fail(fmt.Errorf("%w: no resource at %s", ErrNoMatch, loc.N3()))
	}
	r, ok := sols[0].Get("r").(rdf.IRI)
	if !ok {
		return "", fail(fmt.Errorf("%w: no resource at %s", ErrNoMatch, loc.N3()))
	}
	return r, nil
}

// identifyingPatterns builds one optional pattern per identifying value.
// Values referencing resources that cannot be identified are dropped.
func (id *Identifier) identifyingPatterns(ctx context.Context, res resource.Resource, guard *resolving) ([]queryir.Pattern, error) {
	var out []queryir.Pattern
	for _, p := range res.Props.Predicates() {
		if !id.isIdentifying(p) {
			continue
		}
		for _, v := range res.Props.Values(p) {
			resolved, ok, err := id.resolveValue(ctx, v, guard)
			if err != nil {
				return nil, err
			}
			if !ok {
				id.cfg.logger.Debug("dropping unresolved identifying value",
					"subject", res.ID.N3(),
					"predicate", p,
					"value", v.N3())
				continue
			}
			out = append(out, queryir.Triple(queryir.Var("r"), queryir.C(p), queryir.C(resolved)))
		}
	}
	return out, nil
}

func (id *Identifier) isIdentifying(p rdf.IRI) bool {
	if p == rdf.RDFType || rdf.IsResourceMetadata(p) {
		return false
	}
	return id.tree.IsIdentifyingProperty(p)
}

// resolveValue maps an identifying value to the term stored for it.
func (id *Identifier) resolveValue(ctx context.Context, v rdf.Node, guard *resolving) (rdf.Node, bool, error) {
	if target, ok := id.mappings[v]; ok {
		return target, true, nil
	}
	switch t := v.(type) {
	case rdf.Literal:
		return t, true, nil
	case rdf.IRI:
		if _, staged := id.batch[t]; !staged && !rdf.IsStoreIRI(t) {
			return t, true, nil
		}
	}

	ok, err := id.identify(ctx, v, guard)
	if err != nil || !ok {
		return nil, false, err
	}
	return id.mappings[v], true, nil
}

func locationText(n rdf.Node) (string, bool) {
	switch t := n.(type) {
	case rdf.IRI:
		return string(t), true
	case rdf.Literal:
		return t.Lexical, true
	}
	return "", false
}

func withTrailingSlash(loc string) string {
	if strings.HasSuffix(loc, "/") {
		return loc
	}
	return loc + "/"
}

// parentLocation strips the last path segment and keeps the trailing slash.
func parentLocation(loc string) string {
	loc = strings.TrimSuffix(loc, "/")
	return loc[:strings.LastIndex(loc, "/")+1]
}
