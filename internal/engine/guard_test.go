package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/semstore/internal/rdf"
)

func TestResolving_EnterLeave(t *testing.T) {
	r := newResolving()
	a := rdf.Blank("a")

	assert.True(t, r.enter(a), "first entry should succeed")
	assert.False(t, r.enter(a), "re-entry would cycle")
	assert.Equal(t, 1, r.size())

	r.leave(a)
	assert.Equal(t, 0, r.size())
	assert.True(t, r.enter(a), "entry after leave should succeed")
}

func TestResolving_DistinctTerms(t *testing.T) {
	r := newResolving()

	assert.True(t, r.enter(rdf.Blank("x")))
	assert.True(t, r.enter(rdf.IRI("x")), "blank and IRI with the same text are different subjects")
	assert.Equal(t, 2, r.size())
}
