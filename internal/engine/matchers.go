package engine

import (
	"context"

	"github.com/roach88/semstore/internal/rdf"
)

// PreferOldest is a DuplicateMatchFunc that resolves ties to the candidate
// with the earliest nao:created. Candidates without a creation time lose; if
// none has one the subject stays unidentified.
func PreferOldest(ctx context.Context, r Reader, _ rdf.Node, candidates []rdf.IRI, _ int) (rdf.IRI, bool, error) {
	var best rdf.IRI
	var bestCreated string
	for _, c := range candidates {
		created, err := objectsOf(ctx, r, c, rdf.NAOCreated)
		if err != nil {
			return "", false, err
		}
		for _, v := range created {
			lit, ok := v.(rdf.Literal)
			if !ok {
				continue
			}
			// Candidates arrive sorted, so equal times keep the first.
			if best == "" || lit.Lexical < bestCreated {
				best, bestCreated = c, lit.Lexical
			}
		}
	}
	return best, best != "", nil
}

var _ DuplicateMatchFunc = PreferOldest
