package mapping

import (
	"math/rand"

	"github.com/graybat-go/graybat/graph"
)

// Mapping assigns a subset of a graph's vertices to a peer. It must be a
// pure function of (peerID, peerCount, graph): called identically on every
// peer with identical arguments except peerID, the union of all peers'
// results must be a disjoint cover of graph.Vertices().
type Mapping func(peerID, peerCount int, g *graph.Graph) []graph.Vertex

// Consecutive assigns peer p the contiguous block
// [p*ceil(V/P), min((p+1)*ceil(V/P), V)) of vertex IDs. Peers beyond the
// last non-empty block host no vertices.
func Consecutive(peerID, peerCount int, g *graph.Graph) []graph.Vertex {
	v := g.NumVertices()
	if peerCount <= 0 {
		return nil
	}
	block := ceilDiv(v, peerCount)
	from := peerID * block
	to := min(from+block, v)
	if from >= to {
		return nil
	}

	out := make([]graph.Vertex, 0, to-from)
	for id := from; id < to; id++ {
		vert, err := g.Vertex(graph.VertexID(id))
		if err != nil {
			continue
		}
		out = append(out, vert)
	}
	return out
}

// Roundrobin assigns peer p the vertex IDs {p, p+P, p+2P, ...} that fall
// within [0, V).
func Roundrobin(peerID, peerCount int, g *graph.Graph) []graph.Vertex {
	v := g.NumVertices()
	if peerCount <= 0 {
		return nil
	}
	var out []graph.Vertex
	for id := peerID; id < v; id += peerCount {
		vert, err := g.Vertex(graph.VertexID(id))
		if err != nil {
			continue
		}
		out = append(out, vert)
	}
	return out
}

// Random returns a Mapping that, given an identical seed on every peer,
// walks all vertices in ID order and assigns each one to the peer for which
// rand()%peerCount equals that peer's ID. Because every peer derives its
// decision from the same deterministic sequence, the resulting assignment
// is a disjoint cover regardless of which peer evaluates it.
func Random(seed int64) Mapping {
	return func(peerID, peerCount int, g *graph.Graph) []graph.Vertex {
		if peerCount <= 0 {
			return nil
		}
		rng := rand.New(rand.NewSource(seed))
		var out []graph.Vertex
		for id := 0; id < g.NumVertices(); id++ {
			owner := rng.Intn(peerCount)
			if owner != peerID {
				continue
			}
			vert, err := g.Vertex(graph.VertexID(id))
			if err != nil {
				continue
			}
			out = append(out, vert)
		}
		return out
	}
}

// Filter returns a Mapping that assigns peer p every vertex whose property
// satisfies predicate, further restricted to a Roundrobin-style split of
// the matching vertices across peers so that the result remains a disjoint
// cover when more than one peer matches the same predicate.
func Filter(predicate func(graph.VertexProperty) bool) Mapping {
	return func(peerID, peerCount int, g *graph.Graph) []graph.Vertex {
		if peerCount <= 0 {
			return nil
		}
		var matched []graph.Vertex
		for _, v := range g.Vertices() {
			if predicate(v.Property) {
				matched = append(matched, v)
			}
		}

		var out []graph.Vertex
		for i, v := range matched {
			if i%peerCount == peerID {
				out = append(out, v)
			}
		}
		return out
	}
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
