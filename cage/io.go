package cage

import (
	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/graph"
	"github.com/graybat-go/graybat/internal/threadpool"
	"github.com/graybat-go/graybat/transport"
)

// Send lowers edge/data onto the transport following spec.md §4.7's
// edge-to-transport lowering: dstVAddr = directory.mapVertex(dst), tag =
// edge.id, ctx = directory.mapGraph(graph).
func (c *Cage) Send(e graph.Edge, data interface{}) error {
	dst, err := c.ownerOf(e.Dst)
	if err != nil {
		return err
	}
	ctx, err := c.edgeContext()
	if err != nil {
		return err
	}
	payload, err := c.ser.Serialize(data)
	if err != nil {
		return xerrors.Errorf("cage: serializing payload for edge %d: %w", e.ID, err)
	}
	return c.cap.Send(dst, int(e.ID), ctx, payload)
}

// Recv reverses Send: it resolves e's source peer, receives the message
// tagged with e.ID over the graph's context, and restores it into out.
func (c *Cage) Recv(e graph.Edge, out interface{}) error {
	src, err := c.ownerOf(e.Src)
	if err != nil {
		return err
	}
	ctx, err := c.edgeContext()
	if err != nil {
		return err
	}
	return c.recvInto(src, int(e.ID), ctx, out)
}

// recvInto prepares a buffer for out (probing the transport for the exact
// size when the serializer can't pre-size one, e.g. serialize.Forward),
// receives into it, and restores it.
func (c *Cage) recvInto(src transport.VAddr, tag int, ctx transport.Context, out interface{}) error {
	buf, err := c.ser.Prepare(out)
	if err != nil {
		return xerrors.Errorf("cage: preparing receive buffer: %w", err)
	}
	if buf == nil {
		status, err := c.cap.Probe(src, tag, ctx)
		if err != nil {
			return xerrors.Errorf("cage: probing tag %d: %w", tag, err)
		}
		buf = make([]byte, status.Size)
	}
	if _, err := c.cap.Recv(src, tag, ctx, buf); err != nil {
		return xerrors.Errorf("cage: receiving tag %d: %w", tag, err)
	}
	return c.ser.Restore(out, buf)
}

// sendEvent wraps a transport.Event: nothing further needs to run once the
// send completes, so Wait/Ready simply delegate.
type sendEvent struct {
	ev *transport.Event
}

// Wait blocks for the send to complete.
func (h *sendEvent) Wait() (transport.Status, error) { return h.ev.Wait() }

// Ready reports whether the send has completed.
func (h *sendEvent) Ready() bool { return h.ev.Ready() }

// recvEvent wraps a transport.Event for an in-flight AsyncRecv: the payload
// is only restored into the caller's out value once the event completes,
// since the wire bytes aren't available before then.
type recvEvent struct {
	ev  *transport.Event
	ser interface{ Restore(dst interface{}, received []byte) error }
	buf []byte
	out interface{}
}

// Wait blocks for the receive to complete and restores it into out.
func (h *recvEvent) Wait() (transport.Status, error) {
	status, err := h.ev.Wait()
	if err != nil {
		return status, err
	}
	return status, h.ser.Restore(h.out, h.buf)
}

// Ready reports whether the receive has completed, restoring it into out
// each time it's observed to have (restoring the same bytes again leaves
// out unchanged).
func (h *recvEvent) Ready() bool {
	if !h.ev.Ready() {
		return false
	}
	_ = h.ser.Restore(h.out, h.buf)
	return true
}

// AsyncSend is the non-blocking counterpart of Send.
func (c *Cage) AsyncSend(e graph.Edge, data interface{}) (*sendEvent, error) {
	dst, err := c.ownerOf(e.Dst)
	if err != nil {
		return nil, err
	}
	ctx, err := c.edgeContext()
	if err != nil {
		return nil, err
	}
	payload, err := c.ser.Serialize(data)
	if err != nil {
		return nil, xerrors.Errorf("cage: serializing payload for edge %d: %w", e.ID, err)
	}
	ev, err := c.cap.AsyncSend(dst, int(e.ID), ctx, payload)
	if err != nil {
		return nil, err
	}
	return &sendEvent{ev: ev}, nil
}

// AsyncRecv is the non-blocking counterpart of Recv.
func (c *Cage) AsyncRecv(e graph.Edge, out interface{}) (*recvEvent, error) {
	src, err := c.ownerOf(e.Src)
	if err != nil {
		return nil, err
	}
	ctx, err := c.edgeContext()
	if err != nil {
		return nil, err
	}

	buf, err := c.ser.Prepare(out)
	if err != nil {
		return nil, xerrors.Errorf("cage: preparing receive buffer: %w", err)
	}
	if buf == nil {
		status, err := c.cap.Probe(src, int(e.ID), ctx)
		if err != nil {
			return nil, xerrors.Errorf("cage: probing edge %d: %w", e.ID, err)
		}
		buf = make([]byte, status.Size)
	}

	ev, err := c.cap.AsyncRecv(src, int(e.ID), ctx, buf)
	if err != nil {
		return nil, err
	}
	return &recvEvent{ev: ev, ser: c.ser, buf: buf, out: out}, nil
}

// RecvAny receives from any in-edge of any hosted vertex, per spec.md
// §4.7's "any-recv": it posts a wildcard probe on the graph context,
// receives from whichever (source, tag) answers it, restores the payload
// into out, and resolves the edge it arrived on.
func (c *Cage) RecvAny(out interface{}) (graph.Edge, error) {
	ctx, err := c.edgeContext()
	if err != nil {
		return graph.Edge{}, err
	}

	status, err := c.cap.Probe(transport.AnyVAddr, transport.AnyTag, ctx)
	if err != nil {
		return graph.Edge{}, xerrors.Errorf("cage: any-recv probe: %w", err)
	}
	if err := c.recvInto(status.Source, status.Tag, ctx, out); err != nil {
		return graph.Edge{}, err
	}
	return c.graph.EdgeByID(graph.EdgeID(status.Tag))
}

// Spread sends an identical payload on every out-edge of v, fanned out
// across the Cage's worker pool (spec.md §4.7, §5 "configurable, possibly
// zero" thread pool).
func (c *Cage) Spread(v graph.VertexID, data interface{}) error {
	edges := c.graph.OutEdges(v)
	tasks := make([]func() error, len(edges))
	for i, e := range edges {
		e := e
		tasks[i] = func() error {
			if err := c.Send(e, data); err != nil {
				return xerrors.Errorf("cage: spread over edge %d: %w", e.ID, err)
			}
			return nil
		}
	}
	return threadpool.Run(c.pool, tasks)
}

// Collect receives one payload on every in-edge of v, in in-edge order,
// into outs (spec.md §4.7 "collect"). len(outs) must equal
// len(InEdges(v)).
func (c *Cage) Collect(v graph.VertexID, outs []interface{}) error {
	edges := c.graph.InEdges(v)
	if len(outs) != len(edges) {
		return xerrors.Errorf("cage: collect: vertex %d has %d in-edges, got %d output slots", v, len(edges), len(outs))
	}
	tasks := make([]func() error, len(edges))
	for i, e := range edges {
		e, out := e, outs[i]
		tasks[i] = func() error {
			if err := c.Recv(e, out); err != nil {
				return xerrors.Errorf("cage: collect over edge %d: %w", e.ID, err)
			}
			return nil
		}
	}
	return threadpool.Run(c.pool, tasks)
}
