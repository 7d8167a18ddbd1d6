package rdf

import "strings"

// Namespace IRIs of the vocabularies the engine interprets.
const (
	NSRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NSXSD  = "http://www.w3.org/2001/XMLSchema#"
	NSNRL  = "http://www.semanticdesktop.org/ontologies/2007/08/15/nrl#"
	NSNAO  = "http://www.semanticdesktop.org/ontologies/2007/08/15/nao#"
	NSNIE  = "http://www.semanticdesktop.org/ontologies/2007/01/19/nie#"
	NSNFO  = "http://www.semanticdesktop.org/ontologies/2007/03/22/nfo#"
	NSNCO  = "http://www.semanticdesktop.org/ontologies/2007/03/22/nco#"
)

// Store identifier scheme. Resources and graphs created by the store live
// under these prefixes; nothing else may mint IRIs in this scheme.
const (
	StoreScheme    = "nepomuk:/"
	ResourcePrefix = "nepomuk:/res/"
	GraphPrefix    = "nepomuk:/ctx/"
)

// IsStoreIRI reports whether iri uses the store's own identifier scheme.
func IsStoreIRI(iri IRI) bool {
	return strings.HasPrefix(string(iri), StoreScheme)
}

const (
	RDFType     IRI = NSRDF + "type"
	RDFProperty IRI = NSRDF + "Property"

	RDFSResource   IRI = NSRDFS + "Resource"
	RDFSClass      IRI = NSRDFS + "Class"
	RDFSLiteral    IRI = NSRDFS + "Literal"
	RDFSSubClassOf IRI = NSRDFS + "subClassOf"
	RDFSDomain     IRI = NSRDFS + "domain"
	RDFSRange      IRI = NSRDFS + "range"
	RDFSLabel      IRI = NSRDFS + "label"
)

const (
	XSDString             IRI = NSXSD + "string"
	XSDBoolean            IRI = NSXSD + "boolean"
	XSDInt                IRI = NSXSD + "int"
	XSDInteger            IRI = NSXSD + "integer"
	XSDLong               IRI = NSXSD + "long"
	XSDShort              IRI = NSXSD + "short"
	XSDByte               IRI = NSXSD + "byte"
	XSDUnsignedInt        IRI = NSXSD + "unsignedInt"
	XSDUnsignedLong       IRI = NSXSD + "unsignedLong"
	XSDUnsignedShort      IRI = NSXSD + "unsignedShort"
	XSDNonNegativeInteger IRI = NSXSD + "nonNegativeInteger"
	XSDDouble             IRI = NSXSD + "double"
	XSDDateTime           IRI = NSXSD + "dateTime"
	XSDDate               IRI = NSXSD + "date"
	XSDDuration           IRI = NSXSD + "duration"
)

const (
	NRLGraph                   IRI = NSNRL + "Graph"
	NRLInstanceBase            IRI = NSNRL + "InstanceBase"
	NRLDiscardableInstanceBase IRI = NSNRL + "DiscardableInstanceBase"
	NRLGraphMetadata           IRI = NSNRL + "GraphMetadata"
	NRLCoreGraphMetadataFor    IRI = NSNRL + "coreGraphMetadataFor"
	NRLMaxCardinality          IRI = NSNRL + "maxCardinality"
)

const (
	NAOCreated       IRI = NSNAO + "created"
	NAOLastModified  IRI = NSNAO + "lastModified"
	NAOUserVisible   IRI = NSNAO + "userVisible"
	NAOCreator       IRI = NSNAO + "creator"
	NAOMaintainedBy  IRI = NSNAO + "maintainedBy"
	NAOAgent         IRI = NSNAO + "Agent"
	NAOIdentifier    IRI = NSNAO + "identifier"
	NAOPrefLabel     IRI = NSNAO + "prefLabel"
	NAOHasTag        IRI = NSNAO + "hasTag"
	NAOTag           IRI = NSNAO + "Tag"
	NAONumericRating IRI = NSNAO + "numericRating"
)

const (
	NIEURL                IRI = NSNIE + "url"
	NIETitle              IRI = NSNIE + "title"
	NIEIsPartOf           IRI = NSNIE + "isPartOf"
	NIEInformationElement IRI = NSNIE + "InformationElement"
	NIEDataObject         IRI = NSNIE + "DataObject"

	NFOFolder         IRI = NSNFO + "Folder"
	NFOFileDataObject IRI = NSNFO + "FileDataObject"
	NFOFileName       IRI = NSNFO + "fileName"
	NFOFileSize       IRI = NSNFO + "fileSize"
	NFODuration       IRI = NSNFO + "duration"

	NCOContact          IRI = NSNCO + "Contact"
	NCOPersonContact    IRI = NSNCO + "PersonContact"
	NCOFullname         IRI = NSNCO + "fullname"
	NCONickname         IRI = NSNCO + "nickname"
	NCOEmailAddress     IRI = NSNCO + "EmailAddress"
	NCOHasEmailAddress  IRI = NSNCO + "hasEmailAddress"
	NCOEmailAddressProp IRI = NSNCO + "emailAddress"
)

// ResourceMetadataProperties is the closed set of bookkeeping predicates the
// merger applies with per-predicate write rules instead of as ordinary
// properties.
var ResourceMetadataProperties = map[IRI]bool{
	NAOCreated:      true,
	NAOLastModified: true,
	NAOUserVisible:  true,
	NAOCreator:      true,
}

// IsResourceMetadata reports whether p is a resource bookkeeping predicate.
func IsResourceMetadata(p IRI) bool {
	return ResourceMetadataProperties[p]
}
