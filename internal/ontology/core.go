package ontology

import "github.com/roach88/semstore/internal/rdf"

// Default returns a new schema holding the core vocabulary.
func Default() *Schema {
	s := NewSchema()

	for _, c := range []Class{
		{IRI: rdf.RDFSResource},
		{IRI: rdf.RDFSClass, Parents: []rdf.IRI{rdf.RDFSResource}},
		{IRI: rdf.RDFSLiteral, Parents: []rdf.IRI{rdf.RDFSResource}},
		{IRI: rdf.RDFProperty, Parents: []rdf.IRI{rdf.RDFSResource}},

		{IRI: rdf.NRLGraph, Parents: []rdf.IRI{rdf.RDFSResource}},
		{IRI: rdf.NRLInstanceBase, Parents: []rdf.IRI{rdf.NRLGraph}},
		{IRI: rdf.NRLDiscardableInstanceBase, Parents: []rdf.IRI{rdf.NRLInstanceBase}},
		{IRI: rdf.NRLGraphMetadata, Parents: []rdf.IRI{rdf.NRLGraph}},

		{IRI: rdf.NAOAgent, Parents: []rdf.IRI{rdf.RDFSResource}},
		{IRI: rdf.NAOTag, Parents: []rdf.IRI{rdf.RDFSResource}},

		{IRI: rdf.NIEInformationElement, Parents: []rdf.IRI{rdf.RDFSResource}},
		{IRI: rdf.NIEDataObject, Parents: []rdf.IRI{rdf.RDFSResource}},
		{IRI: rdf.NFOFileDataObject, Parents: []rdf.IRI{rdf.NIEDataObject}},
		{IRI: rdf.NFOFolder, Parents: []rdf.IRI{rdf.NIEDataObject, rdf.NIEInformationElement}},

		{IRI: rdf.NCOContact, Parents: []rdf.IRI{rdf.NIEInformationElement}},
		{IRI: rdf.NCOPersonContact, Parents: []rdf.IRI{rdf.NCOContact}},
		{IRI: rdf.NCOEmailAddress, Parents: []rdf.IRI{rdf.RDFSResource}},
	} {
		s.AddClass(c)
	}

	for _, p := range []Property{
		{IRI: rdf.RDFType, Domain: rdf.RDFSResource, Range: rdf.RDFSClass, Identifying: Bool(false)},
		{IRI: rdf.RDFSLabel, Domain: rdf.RDFSResource, Range: rdf.RDFSLiteral},

		{IRI: rdf.NRLCoreGraphMetadataFor, Domain: rdf.NRLGraphMetadata, Range: rdf.NRLGraph, MaxCardinality: 1},

		{IRI: rdf.NAOCreated, Domain: rdf.RDFSResource, Range: rdf.XSDDateTime, MaxCardinality: 1},
		{IRI: rdf.NAOLastModified, Domain: rdf.RDFSResource, Range: rdf.XSDDateTime, MaxCardinality: 1},
		{IRI: rdf.NAOUserVisible, Domain: rdf.RDFSResource, Range: rdf.XSDInt, MaxCardinality: 1},
		{IRI: rdf.NAOCreator, Domain: rdf.RDFSResource, Range: rdf.RDFSResource},
		{IRI: rdf.NAOMaintainedBy, Domain: rdf.NRLGraph, Range: rdf.NAOAgent},
		{IRI: rdf.NAOIdentifier, Domain: rdf.RDFSResource, Range: rdf.XSDString},
		{IRI: rdf.NAOPrefLabel, Domain: rdf.RDFSResource, Range: rdf.RDFSLiteral, MaxCardinality: 1},
		{IRI: rdf.NAOHasTag, Domain: rdf.RDFSResource, Range: rdf.NAOTag},
		{IRI: rdf.NAONumericRating, Domain: rdf.RDFSResource, Range: rdf.XSDInt, MaxCardinality: 1},

		{IRI: rdf.NIEURL, Domain: rdf.NIEDataObject, Range: rdf.RDFSResource, MaxCardinality: 1},
		{IRI: rdf.NIETitle, Domain: rdf.NIEInformationElement, Range: rdf.XSDString, MaxCardinality: 1},
		{IRI: rdf.NIEIsPartOf, Domain: rdf.NIEDataObject, Range: rdf.NIEDataObject},

		{IRI: rdf.NFOFileName, Domain: rdf.NFOFileDataObject, Range: rdf.XSDString, MaxCardinality: 1},
		{IRI: rdf.NFOFileSize, Domain: rdf.NFOFileDataObject, Range: rdf.XSDInt, MaxCardinality: 1},
		{IRI: rdf.NFODuration, Domain: rdf.RDFSResource, Range: rdf.XSDDuration, MaxCardinality: 1},

		{IRI: rdf.NCOFullname, Domain: rdf.NCOContact, Range: rdf.XSDString, MaxCardinality: 1},
		{IRI: rdf.NCONickname, Domain: rdf.NCOContact, Range: rdf.XSDString},
		{IRI: rdf.NCOHasEmailAddress, Domain: rdf.NCOContact, Range: rdf.NCOEmailAddress, Identifying: Bool(true)},
		{IRI: rdf.NCOEmailAddressProp, Domain: rdf.NCOEmailAddress, Range: rdf.XSDString, MaxCardinality: 1},
	} {
		s.AddProperty(p)
	}

	return s
}
