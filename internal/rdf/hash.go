package rdf

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainStatement = "semstore/statement/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + part + 0x00 + part ...)
func hashWithDomain(domain string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// StatementID computes the content-addressed id of a statement in its graph.
// The same quad always has the same id, which makes writes idempotent.
func StatementID(s Statement) string {
	return hashWithDomain(DomainStatement,
		s.Subject.N3(), s.Predicate.N3(), s.Object.N3(), s.Graph.N3())
}
