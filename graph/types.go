package graph

// VertexID uniquely identifies a vertex within a Graph. IDs are dense and
// span [0, NumVertices()).
type VertexID int

// EdgeID uniquely identifies an edge within a Graph and doubles as the
// transport-level tag used to disambiguate messages sent over multi-edges.
// IDs are dense and span [0, NumEdges()), assigned in the order edges
// appear in the GraphDescription.
type EdgeID int

// GraphID uniquely identifies a Graph within the process that built it.
type GraphID int

// VertexProperty is an arbitrary, user-supplied value attached to a vertex.
type VertexProperty interface{}

// EdgeProperty is an arbitrary, user-supplied value attached to an edge.
type EdgeProperty interface{}

// VertexDescription pairs a vertex identifier with its initial property, as
// produced by a Pattern.
type VertexDescription struct {
	ID       VertexID
	Property VertexProperty
}

// EdgeDescription pairs a (source, target) vertex pair with its initial
// property, as produced by a Pattern. Edges are directed; multiple
// EdgeDescriptions between the same pair are permitted.
type EdgeDescription struct {
	Src, Dst VertexID
	Property EdgeProperty
}

// GraphDescription is the pure, declarative output of a Pattern: a list of
// vertices and a list of edges between them. Vertex IDs must form a
// permutation of [0, len(Vertices)).
type GraphDescription struct {
	Vertices []VertexDescription
	Edges    []EdgeDescription
}

// Vertex is a value-like view of a graph vertex. It carries no back
// reference to the Graph; callers pass it back into Graph accessors (or a
// Cage, which owns a Graph) to resolve adjacency or properties.
type Vertex struct {
	ID       VertexID
	Property VertexProperty
}

// Edge is a value-like view of a directed graph edge.
type Edge struct {
	ID       EdgeID
	Src, Dst VertexID
	Property EdgeProperty
}

// Inverse returns the edge (Dst -> Src) in g, if one exists. Per spec, the
// inverse edge is not guaranteed to exist for an arbitrary pattern, so the
// second return value must be checked before use.
func (e Edge) Inverse(g *Graph) (Edge, bool) {
	return g.Edge(e.Dst, e.Src)
}
