package graph

import "golang.org/x/xerrors"

// Graph is an immutable directed multigraph. It is built once from a
// GraphDescription by New and never mutated afterwards; all accessors are
// pure reads over precomputed adjacency indexes.
type Graph struct {
	id GraphID

	vertices []VertexDescription
	edges    []EdgeDescription

	outEdges [][]EdgeID
	inEdges  [][]EdgeID
}

// New builds a Graph from desc, assigning EdgeIDs in the order edges appear
// in desc.Edges. It returns ErrInvalidDescription if desc.Vertices is not a
// permutation of [0, len(desc.Vertices)) or if any edge references a vertex
// outside that range.
func New(id GraphID, desc GraphDescription) (*Graph, error) {
	n := len(desc.Vertices)
	seen := make([]bool, n)
	verts := make([]VertexDescription, n)
	for _, vd := range desc.Vertices {
		if int(vd.ID) < 0 || int(vd.ID) >= n || seen[vd.ID] {
			return nil, xerrors.Errorf("vertex id %d: %w", vd.ID, ErrInvalidDescription)
		}
		seen[vd.ID] = true
		verts[vd.ID] = vd
	}

	g := &Graph{
		id:       id,
		vertices: verts,
		edges:    make([]EdgeDescription, len(desc.Edges)),
		outEdges: make([][]EdgeID, n),
		inEdges:  make([][]EdgeID, n),
	}

	for i, ed := range desc.Edges {
		if int(ed.Src) < 0 || int(ed.Src) >= n {
			return nil, xerrors.Errorf("edge %d source %d: %w", i, ed.Src, ErrInvalidDescription)
		}
		if int(ed.Dst) < 0 || int(ed.Dst) >= n {
			return nil, xerrors.Errorf("edge %d target %d: %w", i, ed.Dst, ErrInvalidDescription)
		}
		g.edges[i] = ed
		id := EdgeID(i)
		g.outEdges[ed.Src] = append(g.outEdges[ed.Src], id)
		g.inEdges[ed.Dst] = append(g.inEdges[ed.Dst], id)
	}

	return g, nil
}

// ID returns this graph's process-local identifier.
func (g *Graph) ID() GraphID { return g.id }

// NumVertices returns the number of vertices in the graph.
func (g *Graph) NumVertices() int { return len(g.vertices) }

// NumEdges returns the number of edges in the graph.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Vertex resolves id to a Vertex view.
func (g *Graph) Vertex(id VertexID) (Vertex, error) {
	if int(id) < 0 || int(id) >= len(g.vertices) {
		return Vertex{}, ErrUnknownVertex
	}
	vd := g.vertices[id]
	return Vertex{ID: vd.ID, Property: vd.Property}, nil
}

// Vertices returns all vertices in ID order.
func (g *Graph) Vertices() []Vertex {
	out := make([]Vertex, len(g.vertices))
	for i, vd := range g.vertices {
		out[i] = Vertex{ID: vd.ID, Property: vd.Property}
	}
	return out
}

// edgeView converts an internal EdgeID into an Edge value.
func (g *Graph) edgeView(id EdgeID) Edge {
	ed := g.edges[id]
	return Edge{ID: id, Src: ed.Src, Dst: ed.Dst, Property: ed.Property}
}

// EdgeByID resolves id to an Edge view.
func (g *Graph) EdgeByID(id EdgeID) (Edge, error) {
	if int(id) < 0 || int(id) >= len(g.edges) {
		return Edge{}, ErrUnknownEdge
	}
	return g.edgeView(id), nil
}

// Edge returns the first edge (in description order) from src to dst, if
// any. When multiple edges exist between the same pair (multi-edges),
// callers that need to disambiguate a specific one must do so by EdgeID
// (e.g. via OutEdges) rather than relying on this accessor.
func (g *Graph) Edge(src, dst VertexID) (Edge, bool) {
	if int(src) < 0 || int(src) >= len(g.vertices) {
		return Edge{}, false
	}
	for _, id := range g.outEdges[src] {
		if g.edges[id].Dst == dst {
			return g.edgeView(id), true
		}
	}
	return Edge{}, false
}

// InEdges returns the edges whose target is v, in description order.
func (g *Graph) InEdges(v VertexID) []Edge {
	if int(v) < 0 || int(v) >= len(g.vertices) {
		return nil
	}
	ids := g.inEdges[v]
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = g.edgeView(id)
	}
	return out
}

// OutEdges returns the edges whose source is v, in description order.
func (g *Graph) OutEdges(v VertexID) []Edge {
	if int(v) < 0 || int(v) >= len(g.vertices) {
		return nil
	}
	ids := g.outEdges[v]
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = g.edgeView(id)
	}
	return out
}

// AdjacentVertices returns the targets of v's outgoing edges, one per edge,
// in description order. A target reached by several edges (multi-edges)
// appears once per edge; the result is not de-duplicated.
func (g *Graph) AdjacentVertices(v VertexID) []Vertex {
	ids := g.outEdges[v]
	out := make([]Vertex, len(ids))
	for i, id := range ids {
		dst := g.edges[id].Dst
		vd := g.vertices[dst]
		out[i] = Vertex{ID: vd.ID, Property: vd.Property}
	}
	return out
}

// VertexProperty returns the property attached to v.
func (g *Graph) VertexProperty(v VertexID) (VertexProperty, error) {
	if int(v) < 0 || int(v) >= len(g.vertices) {
		return nil, ErrUnknownVertex
	}
	return g.vertices[v].Property, nil
}

// EdgeProperty returns the property attached to e.
func (g *Graph) EdgeProperty(e EdgeID) (EdgeProperty, error) {
	if int(e) < 0 || int(e) >= len(g.edges) {
		return nil, ErrUnknownEdge
	}
	return g.edges[e].Property, nil
}
