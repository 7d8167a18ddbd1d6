package watcher

import (
	"fmt"

	"github.com/roach88/semstore/internal/rdf"
)

// EventKind distinguishes between notification kinds.
type EventKind int

const (
	// ResourceCreated reports a newly created resource and its types.
	ResourceCreated EventKind = iota + 1
	// ResourceRemoved reports a removed resource and the types it had.
	ResourceRemoved
	// TypesAdded reports rdf:type values added to a resource.
	TypesAdded
	// TypesRemoved reports rdf:type values removed from a resource.
	TypesRemoved
	// PropertyChanged reports values added to and removed from one
	// (resource, property) pair.
	PropertyChanged
)

var eventKindNames = map[EventKind]string{
	ResourceCreated: "resourceCreated",
	ResourceRemoved: "resourceRemoved",
	TypesAdded:      "typesAdded",
	TypesRemoved:    "typesRemoved",
	PropertyChanged: "propertyChanged",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one notification delivered to a subscription.
type Event struct {
	Kind     EventKind
	Resource rdf.IRI

	// Types holds the resource types for ResourceCreated and ResourceRemoved
	// and the changed types for TypesAdded and TypesRemoved.
	Types []rdf.IRI

	// Property, Added and Removed are set for PropertyChanged.
	Property rdf.IRI
	Added    []rdf.Node
	Removed  []rdf.Node
}

func (e Event) String() string {
	switch e.Kind {
	case PropertyChanged:
		return fmt.Sprintf("%s %s %s +%d -%d", e.Kind, e.Resource, e.Property, len(e.Added), len(e.Removed))
	default:
		return fmt.Sprintf("%s %s %v", e.Kind, e.Resource, e.Types)
	}
}
