package cage

import (
	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/directory"
	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/graph"
	"github.com/graybat-go/graybat/internal/threadpool"
	"github.com/graybat-go/graybat/mapping"
	"github.com/graybat-go/graybat/serialize"
	"github.com/graybat-go/graybat/transport"
)

// Cage bundles a Graph, a transport.Capability and the directory built up
// over it (spec.md §4.7). Use New to construct one, Distribute to publish
// vertex ownership, and the Send/Recv/collective accessors thereafter.
type Cage struct {
	cap  transport.Capability
	ser  serialize.Policy
	pool *threadpool.Pool

	graph *graph.Graph
	dir   *directory.Directory

	hosted []graph.VertexID
}

// New builds a Cage from cfg. The returned Cage is constructed but not yet
// distributed: call Distribute before using Send/Recv/Spread/Collect.
func New(cfg CageConfig) (*Cage, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("cage: invalid configuration: %w", err)
	}

	g := cfg.Graph
	if g == nil {
		built, err := graph.New(cfg.GraphID, *cfg.Description)
		if err != nil {
			return nil, xerrors.Errorf("cage: building graph from description: %w", err)
		}
		g = built
	}

	return &Cage{
		cap:   cfg.Transport,
		ser:   cfg.Serializer,
		pool:  threadpool.New(cfg.WorkerPoolSize),
		graph: g,
		dir:   directory.New(g.ID(), cfg.Transport.GlobalContext()),
	}, nil
}

// SetGraph replaces the Cage's graph and resets its directory, per spec.md
// §4.7 ("Replace graph; invalidates previous directory state"). Distribute
// must be called again before Send/Recv/Spread/Collect are usable.
func (c *Cage) SetGraph(id graph.GraphID, desc graph.GraphDescription) error {
	g, err := graph.New(id, desc)
	if err != nil {
		return xerrors.Errorf("cage: setgraph: %w", err)
	}
	c.graph = g
	c.dir = directory.New(g.ID(), c.cap.GlobalContext())
	c.hosted = nil
	return nil
}

// Graph returns the graph this Cage currently operates over.
func (c *Cage) Graph() *graph.Graph { return c.graph }

// Peers returns the global context (spec.md §4.7 "getPeers").
func (c *Cage) Peers() transport.Context { return c.cap.GlobalContext() }

// HostedVertices returns the vertices this peer owns, in the order
// Distribute's Mapping produced them. Empty until Distribute is called.
func (c *Cage) HostedVertices() []graph.Vertex {
	out := make([]graph.Vertex, 0, len(c.hosted))
	for _, id := range c.hosted {
		if v, err := c.graph.Vertex(id); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Distribute applies m locally to determine this peer's hosted vertices,
// then runs the collective announce protocol so every peer learns the full
// vertex-to-peer assignment (spec.md §4.7, §5 "distribute is a barrier on
// the global context").
func (c *Cage) Distribute(m mapping.Mapping) error {
	ctx := c.cap.GlobalContext()

	hostedVerts := m(int(ctx.Self()), ctx.Size(), c.graph)
	hosted := make([]graph.VertexID, len(hostedVerts))
	for i, v := range hostedVerts {
		hosted[i] = v.ID
	}

	if err := c.dir.Announce(c.cap, ctx, hosted); err != nil {
		return xerrors.Errorf("cage: distribute: %w", err)
	}
	if err := c.cap.Barrier(ctx); err != nil {
		return xerrors.Errorf("cage: distribute: closing barrier: %w", err)
	}

	c.hosted = hosted
	return nil
}

// Vertex resolves id against the Cage's current graph.
func (c *Cage) Vertex(id graph.VertexID) (graph.Vertex, error) { return c.graph.Vertex(id) }

// Edge resolves the first edge from src to dst against the Cage's current
// graph.
func (c *Cage) Edge(src, dst graph.VertexID) (graph.Edge, bool) { return c.graph.Edge(src, dst) }

// InEdges returns v's incoming edges in description order.
func (c *Cage) InEdges(v graph.VertexID) []graph.Edge { return c.graph.InEdges(v) }

// OutEdges returns v's outgoing edges in description order.
func (c *Cage) OutEdges(v graph.VertexID) []graph.Edge { return c.graph.OutEdges(v) }

// Close releases the underlying transport and the Cage's worker pool.
func (c *Cage) Close() error {
	c.pool.Close()
	return c.cap.Close()
}

func (c *Cage) edgeContext() (transport.Context, error) {
	ctx, ok := c.dir.MapGraph(c.graph.ID())
	if !ok {
		return transport.Context{}, xerrors.Errorf("cage: graph %d has no announced context (call Distribute first): %w", c.graph.ID(), errs.ContextError)
	}
	return ctx, nil
}

func (c *Cage) ownerOf(v graph.VertexID) (transport.VAddr, error) {
	owner, ok := c.dir.MapVertex(v)
	if !ok {
		return 0, xerrors.Errorf("cage: vertex %d has no known owner (call Distribute first): %w", v, errs.ProtocolError)
	}
	return owner, nil
}
