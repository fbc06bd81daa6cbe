package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingVisitor struct {
	BaseVisitor
	nodes, types, paths, idents int
}

func (c *countingVisitor) VisitNode(Node) error       { c.nodes++; return nil }
func (c *countingVisitor) VisitType(*Type) error       { c.types++; return nil }
func (c *countingVisitor) VisitPath(*Path) error       { c.paths++; return nil }
func (c *countingVisitor) VisitIdentifier(*Identifier) error { c.idents++; return nil }

func TestTraverseVisitsStructFields(t *testing.T) {
	_, m := parseSource(t, "pub struct Point { x: Int, y: Int }")
	v := &countingVisitor{}
	require.NoError(t, Traverse(v, m))
	assert.Equal(t, 3, v.nodes) // struct + its two fields, each dispatched through traverseNode
	assert.GreaterOrEqual(t, v.types, 2)
	assert.GreaterOrEqual(t, v.idents, 3) // struct name + two field names
}

func TestTraverseShortCircuitsOnError(t *testing.T) {
	_, m := parseSource(t, "pub struct A { x: Int }\npub struct B { y: Int }")
	boom := assert.AnError
	v := &erroringVisitor{failOn: 1, err: boom}
	err := Traverse(v, m)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, v.seen) // stopped after the first VisitNode call
}

type erroringVisitor struct {
	BaseVisitor
	failOn int
	seen   int
	err    error
}

func (e *erroringVisitor) VisitNode(Node) error {
	e.seen++
	if e.seen >= e.failOn {
		return e.err
	}
	return nil
}

func TestTraverseMiddlePathSegmentsAllVisited(t *testing.T) {
	_, m := parseSource(t, "fn open(r: std::io::Reader) {}")
	v := &countingVisitor{}
	require.NoError(t, Traverse(v, m))
	assert.Equal(t, 2, v.paths) // the function name path, plus the parameter's std::io::Reader path
	assert.GreaterOrEqual(t, v.idents, 4)
}
