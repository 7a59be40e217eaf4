package cage

import (
	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/transport"
)

// Graph-scoped collectives (spec.md §4.7): each operates over the context
// associated with the Cage's current graph, established by Distribute.

// AllReduce combines in across every peer hosting this graph and writes
// the identical result to out on every peer.
func (c *Cage) AllReduce(op transport.ReduceOp, in, out []int64) error {
	ctx, err := c.edgeContext()
	if err != nil {
		return err
	}
	return c.cap.AllReduce(ctx, op, in, out)
}

// Reduce combines in across every peer hosting this graph and writes the
// result to out only on root.
func (c *Cage) Reduce(root transport.VAddr, op transport.ReduceOp, in, out []int64) error {
	ctx, err := c.edgeContext()
	if err != nil {
		return err
	}
	return c.cap.Reduce(ctx, root, op, in, out)
}

// AllGather concatenates every peer's in into out, ordered by VAddr, on
// every peer.
func (c *Cage) AllGather(in, out []int64) error {
	ctx, err := c.edgeContext()
	if err != nil {
		return err
	}
	return c.cap.AllGather(ctx, in, out)
}

// Gather concatenates every peer's in into out, ordered by VAddr, on root
// only.
func (c *Cage) Gather(root transport.VAddr, in, out []int64) error {
	ctx, err := c.edgeContext()
	if err != nil {
		return err
	}
	return c.cap.Gather(ctx, root, in, out)
}

// Scatter splits root's in into equal chunks and delivers the chunk for
// each peer into that peer's out.
func (c *Cage) Scatter(root transport.VAddr, in, out []int64) error {
	ctx, err := c.edgeContext()
	if err != nil {
		return err
	}
	return c.cap.Scatter(ctx, root, in, out)
}

// Broadcast copies root's inout to every other peer's inout.
func (c *Cage) Broadcast(root transport.VAddr, inout []int64) error {
	ctx, err := c.edgeContext()
	if err != nil {
		return err
	}
	return c.cap.Broadcast(ctx, root, inout)
}

// Barrier blocks every peer hosting this graph until all of them have
// called it.
func (c *Cage) Barrier() error {
	ctx, err := c.edgeContext()
	if err != nil {
		return xerrors.Errorf("cage: barrier: %w", err)
	}
	return c.cap.Barrier(ctx)
}
