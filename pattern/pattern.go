package pattern

import (
	"math/bits"
	"math/rand"

	"github.com/graybat-go/graybat/graph"
)

func vertices(n int) []graph.VertexDescription {
	out := make([]graph.VertexDescription, n)
	for i := 0; i < n; i++ {
		out[i] = graph.VertexDescription{ID: graph.VertexID(i)}
	}
	return out
}

func edge(src, dst int) graph.EdgeDescription {
	return graph.EdgeDescription{Src: graph.VertexID(src), Dst: graph.VertexID(dst)}
}

// None returns the empty graph: 0 vertices, 0 edges.
func None() graph.GraphDescription {
	return graph.GraphDescription{}
}

// EdgeLess returns a graph with n vertices and no edges.
func EdgeLess(n int) graph.GraphDescription {
	return graph.GraphDescription{Vertices: vertices(n)}
}

// Chain returns a graph with n vertices and edges (i -> i+1) for i < n-1.
func Chain(n int) graph.GraphDescription {
	desc := graph.GraphDescription{Vertices: vertices(n)}
	for i := 0; i < n-1; i++ {
		desc.Edges = append(desc.Edges, edge(i, i+1))
	}
	return desc
}

// Ring returns a Chain(n) plus the closing edge (n-1 -> 0).
func Ring(n int) graph.GraphDescription {
	desc := Chain(n)
	if n > 0 {
		desc.Edges = append(desc.Edges, edge(n-1, 0))
	}
	return desc
}

// FullyConnected returns a graph with n vertices and a directed edge for
// every ordered pair (i, j) with i != j.
func FullyConnected(n int) graph.GraphDescription {
	desc := graph.GraphDescription{Vertices: vertices(n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				desc.Edges = append(desc.Edges, edge(i, j))
			}
		}
	}
	return desc
}

func gridID(w, x, y int) int { return y*w + x }

// Grid returns a w*h vertex grid where every interior vertex has 4
// bidirectional neighbours (up/down/left/right). Border vertices have
// fewer neighbours, handled naturally by the bounds check.
func Grid(w, h int) graph.GraphDescription {
	desc := graph.GraphDescription{Vertices: vertices(w * h)}
	type delta struct{ dx, dy int }
	deltas := []delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for _, d := range deltas {
				nx, ny := x+d.dx, y+d.dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				desc.Edges = append(desc.Edges, edge(gridID(w, x, y), gridID(w, nx, ny)))
			}
		}
	}
	return desc
}

// GridDiagonal returns Grid(w,h) plus the 4 diagonal neighbours of every
// interior vertex.
func GridDiagonal(w, h int) graph.GraphDescription {
	desc := Grid(w, h)
	type delta struct{ dx, dy int }
	deltas := []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for _, d := range deltas {
				nx, ny := x+d.dx, y+d.dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				desc.Edges = append(desc.Edges, edge(gridID(w, x, y), gridID(w, nx, ny)))
			}
		}
	}
	return desc
}

// HyperCube returns a graph with 2^d vertices and an edge (i -> j) whenever
// the Hamming distance between i and j (popcount(i^j)) is exactly 1, in both
// directions.
func HyperCube(d int) graph.GraphDescription {
	n := 1 << uint(d)
	desc := graph.GraphDescription{Vertices: vertices(n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && bits.OnesCount(uint(i^j)) == 1 {
				desc.Edges = append(desc.Edges, edge(i, j))
			}
		}
	}
	return desc
}

// InStar returns a graph where vertex 0 is the hub and every other vertex
// (leaf) has a single edge leaf -> hub.
func InStar(n int) graph.GraphDescription {
	desc := graph.GraphDescription{Vertices: vertices(n)}
	for i := 1; i < n; i++ {
		desc.Edges = append(desc.Edges, edge(i, 0))
	}
	return desc
}

// OutStar returns a graph where vertex 0 is the hub and every other vertex
// (leaf) has a single edge hub -> leaf.
func OutStar(n int) graph.GraphDescription {
	desc := graph.GraphDescription{Vertices: vertices(n)}
	for i := 1; i < n; i++ {
		desc.Edges = append(desc.Edges, edge(0, i))
	}
	return desc
}

// BiStar returns a graph where vertex 0 is the hub and every other vertex
// (leaf) has both a hub -> leaf and a leaf -> hub edge.
func BiStar(n int) graph.GraphDescription {
	desc := graph.GraphDescription{Vertices: vertices(n)}
	for i := 1; i < n; i++ {
		desc.Edges = append(desc.Edges, edge(0, i), edge(i, 0))
	}
	return desc
}

// Star is an alias for OutStar: vertex 0 is the hub, with a directed edge
// from the hub to every leaf. (The original pattern header set only names
// OutStar and BiStar explicitly; Star is resolved to the directed,
// hub-originating variant so that InStar/OutStar/BiStar remain the three
// genuinely distinct shapes. See DESIGN.md.)
func Star(n int) graph.GraphDescription {
	return OutStar(n)
}

// Random returns a graph with n vertices where each ordered pair (i, j),
// i != j, is included as an edge independently with probability p. seed
// makes the result deterministic so every peer that calls Random with the
// same arguments builds an identical graph.
func Random(n int, p float64, seed int64) graph.GraphDescription {
	desc := graph.GraphDescription{Vertices: vertices(n)}
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if rng.Float64() < p {
				desc.Edges = append(desc.Edges, edge(i, j))
			}
		}
	}
	return desc
}
