package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/semstore/internal/rdf"
	"github.com/roach88/semstore/internal/testutil"
)

// createTestStore creates a new store with deterministic ids and clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequenceGenerator("")),
		WithClock(testutil.NewDeterministicClock().Now),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustAdd writes a statement or fails the test.
func mustAdd(t *testing.T, s *Store, subj rdf.Node, pred rdf.IRI, obj rdf.Node, graph rdf.IRI) {
	t.Helper()
	if _, err := s.AddStatement(context.Background(), subj, pred, obj, graph); err != nil {
		t.Fatalf("AddStatement(%s %s %s) failed: %v", subj.N3(), pred.N3(), obj.N3(), err)
	}
}
