package directory

import (
	"sort"
	"sync"

	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/graph"
	"github.com/graybat-go/graybat/transport"
)

// absent pads an announce round for peers with fewer vertices than the
// round count, matching the original NameService.hpp's sendData sentinel.
const absent int64 = -1

// Directory is the process-local view of the GVON directory: which peer
// hosts which vertex, and which Context backs each graph's collective
// operations. It is built up by Announce calls and treated as immutable
// once populated (spec.md §5 "Shared resources").
type Directory struct {
	mu sync.RWMutex

	vertexPeer   map[graph.VertexID]transport.VAddr
	peerVertices map[transport.VAddr][]graph.VertexID
	graphContext map[graph.GraphID]transport.Context
}

// New creates a Directory that already knows the root graph's Context (the
// backend's global context, per NameService.hpp's constructor seeding
// contextMap[graph.id] with the global context).
func New(rootGraphID graph.GraphID, rootCtx transport.Context) *Directory {
	d := &Directory{
		vertexPeer:   make(map[graph.VertexID]transport.VAddr),
		peerVertices: make(map[transport.VAddr][]graph.VertexID),
		graphContext: make(map[graph.GraphID]transport.Context),
	}
	d.graphContext[rootGraphID] = rootCtx
	return d
}

// Announce runs the collective protocol that publishes which vertices the
// calling peer hosts (per a Mapping) to every other peer of ctx, and
// records the result locally. Every peer of ctx must call Announce with
// the same ctx in the same relative order as any other collective on ctx.
func (d *Directory) Announce(cap transport.Capability, ctx transport.Context, hosted []graph.VertexID) error {
	myCount := []int64{int64(len(hosted))}
	maxCount := make([]int64, 1)
	if err := cap.AllReduce(ctx, transport.MAX, myCount, maxCount); err != nil {
		return xerrors.Errorf("directory: announce allreduce failed: %w", err)
	}

	size := ctx.Size()
	addrs := ctx.VAddrs()

	for round := int64(0); round < maxCount[0]; round++ {
		send := []int64{absent}
		if round < int64(len(hosted)) {
			send[0] = int64(hosted[round])
		}
		recv := make([]int64, size)
		if err := cap.AllGather(ctx, send, recv); err != nil {
			return xerrors.Errorf("directory: announce allgather failed: %w", err)
		}

		d.mu.Lock()
		for pos, v := range recv {
			if v == absent {
				continue
			}
			vid := graph.VertexID(v)
			owner := addrs[pos]
			if existing, ok := d.vertexPeer[vid]; ok && existing != owner {
				d.mu.Unlock()
				return xerrors.Errorf("directory: vertex %d announced by both peer %d and peer %d: %w", vid, existing, owner, errs.ProtocolError)
			}
			d.vertexPeer[vid] = owner
			d.peerVertices[owner] = append(d.peerVertices[owner], vid)
		}
		d.mu.Unlock()
	}

	return nil
}

// AnnounceSubgraph derives a sub-context over exactly the peers that host
// at least one vertex of subVertices (a subgraph of the graph backed by
// parentGraphID's context) and records it under subGraphID, matching
// NameService.hpp's two-argument announce overload.
func (d *Directory) AnnounceSubgraph(cap transport.Capability, parentGraphID, subGraphID graph.GraphID, subVertices []graph.VertexID) (transport.Context, error) {
	parentCtx, ok := d.MapGraph(parentGraphID)
	if !ok {
		return transport.Context{}, xerrors.Errorf("directory: unknown parent graph %d: %w", parentGraphID, errs.ContextError)
	}

	seen := make(map[transport.VAddr]struct{})
	for _, v := range subVertices {
		owner, ok := d.MapVertex(v)
		if !ok {
			return transport.Context{}, xerrors.Errorf("directory: vertex %d has no known owner: %w", v, errs.ProtocolError)
		}
		seen[owner] = struct{}{}
	}

	members := make([]transport.VAddr, 0, len(seen))
	for v := range seen {
		members = append(members, v)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

	newCtx, err := cap.CreateContext(members, parentCtx)
	if err != nil {
		return transport.Context{}, xerrors.Errorf("directory: creating sub-context for graph %d failed: %w", subGraphID, err)
	}

	d.mu.Lock()
	d.graphContext[subGraphID] = newCtx
	d.mu.Unlock()

	return newCtx, nil
}

// MapVertex returns the peer that hosts vertex v.
func (d *Directory) MapVertex(v graph.VertexID) (transport.VAddr, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	vaddr, ok := d.vertexPeer[v]
	return vaddr, ok
}

// MapPeer returns the vertices hosted by peer.
func (d *Directory) MapPeer(peer transport.VAddr) []graph.VertexID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]graph.VertexID(nil), d.peerVertices[peer]...)
}

// MapGraph returns the Context backing gid's collective operations.
func (d *Directory) MapGraph(gid graph.GraphID) (transport.Context, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ctx, ok := d.graphContext[gid]
	return ctx, ok
}
