package graph_test

import (
	"testing"

	"github.com/graybat-go/graybat/graph"
	gc "gopkg.in/check.v1"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(GraphTestSuite))

type GraphTestSuite struct{}

func chainDescription(n int) graph.GraphDescription {
	var desc graph.GraphDescription
	for i := 0; i < n; i++ {
		desc.Vertices = append(desc.Vertices, graph.VertexDescription{ID: graph.VertexID(i)})
	}
	for i := 0; i < n-1; i++ {
		desc.Edges = append(desc.Edges, graph.EdgeDescription{Src: graph.VertexID(i), Dst: graph.VertexID(i + 1)})
	}
	return desc
}

func (s *GraphTestSuite) TestBuildAndQuery(c *gc.C) {
	g, err := graph.New(0, chainDescription(4))
	c.Assert(err, gc.IsNil)
	c.Assert(g.NumVertices(), gc.Equals, 4)
	c.Assert(g.NumEdges(), gc.Equals, 3)

	e, ok := g.Edge(0, 1)
	c.Assert(ok, gc.Equals, true)
	c.Assert(e.ID, gc.Equals, graph.EdgeID(0))

	c.Assert(len(g.OutEdges(1)), gc.Equals, 1)
	c.Assert(len(g.InEdges(1)), gc.Equals, 1)
	c.Assert(len(g.OutEdges(3)), gc.Equals, 0)

	_, ok = g.Edge(3, 0)
	c.Assert(ok, gc.Equals, false)
}

func (s *GraphTestSuite) TestInverse(c *gc.C) {
	desc := graph.GraphDescription{
		Vertices: []graph.VertexDescription{{ID: 0}, {ID: 1}},
		Edges: []graph.EdgeDescription{
			{Src: 0, Dst: 1},
			{Src: 1, Dst: 0},
		},
	}
	g, err := graph.New(0, desc)
	c.Assert(err, gc.IsNil)

	e, _ := g.Edge(0, 1)
	inv, ok := e.Inverse(g)
	c.Assert(ok, gc.Equals, true)
	c.Assert(inv.Src, gc.Equals, graph.VertexID(1))
	c.Assert(inv.Dst, gc.Equals, graph.VertexID(0))

	invInv, ok := inv.Inverse(g)
	c.Assert(ok, gc.Equals, true)
	c.Assert(invInv.ID, gc.Equals, e.ID)
}

func (s *GraphTestSuite) TestNoInverse(c *gc.C) {
	g, err := graph.New(0, chainDescription(2))
	c.Assert(err, gc.IsNil)

	e, _ := g.Edge(0, 1)
	_, ok := e.Inverse(g)
	c.Assert(ok, gc.Equals, false)
}

func (s *GraphTestSuite) TestRejectsNonPermutationIDs(c *gc.C) {
	desc := graph.GraphDescription{
		Vertices: []graph.VertexDescription{{ID: 0}, {ID: 0}},
	}
	_, err := graph.New(0, desc)
	c.Assert(err, gc.ErrorMatches, ".*graph description is invalid.*")
}

func (s *GraphTestSuite) TestRejectsDanglingEdge(c *gc.C) {
	desc := graph.GraphDescription{
		Vertices: []graph.VertexDescription{{ID: 0}},
		Edges:    []graph.EdgeDescription{{Src: 0, Dst: 5}},
	}
	_, err := graph.New(0, desc)
	c.Assert(err, gc.ErrorMatches, ".*graph description is invalid.*")
}
