package mapping_test

import (
	"testing"

	"github.com/graybat-go/graybat/graph"
	"github.com/graybat-go/graybat/mapping"
	"github.com/graybat-go/graybat/pattern"
)

func buildGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g, err := graph.New(0, pattern.EdgeLess(n))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func disjointCover(t *testing.T, g *graph.Graph, m mapping.Mapping, peerCount int) {
	t.Helper()
	seen := make(map[graph.VertexID]int)
	for p := 0; p < peerCount; p++ {
		for _, v := range m(p, peerCount, g) {
			if owner, ok := seen[v.ID]; ok {
				t.Fatalf("vertex %d claimed by both peer %d and peer %d", v.ID, owner, p)
			}
			seen[v.ID] = p
		}
	}
	if len(seen) != g.NumVertices() {
		t.Fatalf("expected all %d vertices covered, got %d", g.NumVertices(), len(seen))
	}
}

func TestConsecutiveIsDisjointCover(t *testing.T) {
	g := buildGraph(t, 10)
	disjointCover(t, g, mapping.Consecutive, 4)
}

func TestRoundrobinIsDisjointCover(t *testing.T) {
	g := buildGraph(t, 10)
	disjointCover(t, g, mapping.Roundrobin, 4)
}

func TestRandomIsDisjointCover(t *testing.T) {
	g := buildGraph(t, 10)
	disjointCover(t, g, mapping.Random(7), 4)
}

func TestFilterIsDisjointCover(t *testing.T) {
	desc := pattern.EdgeLess(10)
	for i := range desc.Vertices {
		desc.Vertices[i].Property = i%2 == 0
	}
	g, err := graph.New(0, desc)
	if err != nil {
		t.Fatal(err)
	}
	isEven := mapping.Filter(func(p graph.VertexProperty) bool { return p.(bool) })

	var covered int
	seen := make(map[graph.VertexID]bool)
	for p := 0; p < 3; p++ {
		for _, v := range isEven(p, 3, g) {
			if seen[v.ID] {
				t.Fatalf("vertex %d claimed twice", v.ID)
			}
			seen[v.ID] = true
			covered++
			if int(v.ID)%2 != 0 {
				t.Fatalf("odd vertex %d matched predicate", v.ID)
			}
		}
	}
	if covered != 5 {
		t.Fatalf("expected 5 even vertices covered, got %d", covered)
	}
}

func TestExcessPeersHostNothing(t *testing.T) {
	g := buildGraph(t, 3)
	for _, m := range []mapping.Mapping{mapping.Consecutive, mapping.Roundrobin, mapping.Random(1)} {
		if got := m(10, 20, g); len(got) != 0 {
			t.Fatalf("expected excess peer to host nothing, got %v", got)
		}
	}
}

func TestRandomMappingDeterministicAcrossPeers(t *testing.T) {
	g := buildGraph(t, 50)
	m := mapping.Random(123)

	// Simulate every peer independently walking the mapping and confirm
	// the union still forms a clean disjoint cover (spec.md §8 scenario 5).
	disjointCover(t, g, m, 4)
}
