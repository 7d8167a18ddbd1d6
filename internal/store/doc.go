// Package store provides durable quad storage for semstore on SQLite.
//
// The store is the external collaborator the engine writes through: it
// executes pattern matches (compiled from QueryIR), adds and removes
// statements, creates attributed graphs and allocates resource identifiers.
// It knows nothing about identification or merge rules.
//
// Every statement lives in exactly one named graph. Graph metadata
// (attributing application, creation time, graph types and caller metadata)
// is itself stored as statements about the graph IRI, held in a companion
// metadata graph typed nrl:GraphMetadata.
//
// All reads are ordered deterministically (seq or binary term order).
// Writes are idempotent: a statement's primary key is its content hash.
package store
