// Package rdf defines the statement model shared by every semstore package.
//
// A statement is a (subject, predicate, object) fact written into exactly one
// named graph. Subjects are resource references: store IRIs under
// "nepomuk:/res/", foreign IRIs, or batch-local blank placeholders. Objects are
// resource references or literals.
//
// Terms have a single text encoding (N3 style) used for storage, hashing and
// ordering:
//
//	<http://example.org/a>      IRI
//	_:b1                        blank placeholder
//	"Alice"                     plain literal
//	"42"^^<xsd:int IRI>         typed literal
//	"chat"@fr                   language-tagged literal
//
// Literal lexical forms are normalised to Unicode NFC when constructed, so the
// same text in a different normalisation form encodes, hashes and compares
// identically.
package rdf
