package watcher

import "github.com/roach88/semstore/internal/rdf"

// Buffer records notifications so they can be delivered once the writes that
// caused them have committed. The zero value is ready to use.
type Buffer struct {
	calls []call
}

type call struct {
	kind    EventKind
	res     rdf.IRI
	types   []rdf.IRI
	prop    rdf.IRI
	added   []rdf.Node
	removed []rdf.Node
}

func (b *Buffer) ResourceCreated(res rdf.IRI, types []rdf.IRI) {
	b.calls = append(b.calls, call{kind: ResourceCreated, res: res, types: cloneIRIs(types)})
}

func (b *Buffer) ResourceRemoved(res rdf.IRI, types []rdf.IRI) {
	b.calls = append(b.calls, call{kind: ResourceRemoved, res: res, types: cloneIRIs(types)})
}

func (b *Buffer) PropertyChanged(res rdf.IRI, types []rdf.IRI, prop rdf.IRI, added, removed []rdf.Node) {
	b.calls = append(b.calls, call{
		kind:    PropertyChanged,
		res:     res,
		types:   cloneIRIs(types),
		prop:    prop,
		added:   cloneNodes(added),
		removed: cloneNodes(removed),
	})
}

// Len returns the number of recorded notifications.
func (b *Buffer) Len() int {
	return len(b.calls)
}

// Flush replays the recorded notifications to n in order and empties the
// buffer. A nil n discards them.
func (b *Buffer) Flush(n Notifier) {
	calls := b.calls
	b.calls = nil
	if n == nil {
		return
	}
	for _, c := range calls {
		switch c.kind {
		case ResourceCreated:
			n.ResourceCreated(c.res, c.types)
		case ResourceRemoved:
			n.ResourceRemoved(c.res, c.types)
		case PropertyChanged:
			n.PropertyChanged(c.res, c.types, c.prop, c.added, c.removed)
		}
	}
}

// Discard drops the recorded notifications.
func (b *Buffer) Discard() {
	b.calls = nil
}

var _ Notifier = (*Buffer)(nil)
