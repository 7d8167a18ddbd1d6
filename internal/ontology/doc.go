// Package ontology provides the class and property hierarchy the engine
// validates against.
//
// The engine consumes the Tree interface only. Schema is the in-memory
// implementation: Default returns the core vocabulary (RDF, RDFS, NRL, NAO,
// NIE, NFO, NCO) and ontologies written in CUE extend it:
//
//	prefixes: ex: "http://example.org/"
//
//	class: "ex:Invoice": parents: ["nie:InformationElement"]
//
//	property: "ex:number": {
//		domain:         "ex:Invoice"
//		range:          "xsd:string"
//		maxCardinality: 1
//	}
//
// A property is identifying when it is flagged so explicitly, or when its
// range is a literal datatype, or when it has no range beyond rdfs:Resource.
package ontology
