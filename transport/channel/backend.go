package channel

import (
	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/internal/collective"
	"github.com/graybat-go/graybat/transport"
)

// Backend is a transport.Capability bound to one peer (self) of a shared
// Fabric. It is the synchronous/channel backend's implementation of
// spec.md §4.5.
type Backend struct {
	fab  *Fabric
	self transport.VAddr
	glob transport.Context
}

var _ transport.Capability = (*Backend)(nil)

// GlobalContext implements transport.Capability.
func (b *Backend) GlobalContext() transport.Context { return b.glob }

// CreateContext implements transport.Capability. It is collective over
// parent: every peer of parent must call it with the same vaddrs, in the
// same relative order as any other collective call on parent, since it
// shares parent's round barrier.
func (b *Backend) CreateContext(vaddrs []transport.VAddr, parent transport.Context) (transport.Context, error) {
	pos := posOf(parent, b.self)
	if pos < 0 {
		return transport.Context{}, xerrors.Errorf("channel: self %d is not a member of parent context %d: %w", b.self, parent.ID(), errs.ContextError)
	}

	rb := b.fab.barrierWithLock(parent.ID())
	res := rb.run(pos, nil, func(contribs [][]int64) [][]int64 {
		id := int64(b.fab.newContextID())
		out := make([][]int64, len(contribs))
		for i := range out {
			out[i] = []int64{id}
		}
		return out
	})
	newID := transport.ContextID(res[0])

	for i, v := range vaddrs {
		if v == b.self {
			return transport.NewContext(newID, vaddrs, transport.VAddr(i)), nil
		}
	}
	return transport.InvalidContext(newID), nil
}

// Send implements transport.Capability.
func (b *Backend) Send(dst transport.VAddr, tag int, ctx transport.Context, data []byte) error {
	payload := append([]byte(nil), data...)
	b.fab.deliver(ctx.ID(), dst, message{src: b.self, tag: tag, payload: payload})
	return nil
}

// Recv implements transport.Capability.
func (b *Backend) Recv(src transport.VAddr, tag int, ctx transport.Context, buf []byte) (transport.Status, error) {
	msg := b.fab.take(ctx.ID(), b.self, src, tag)
	if len(msg.payload) != len(buf) {
		return transport.Status{}, xerrors.Errorf("channel: recv expected %d bytes, got %d: %w", len(buf), len(msg.payload), errs.SizeMismatch)
	}
	copy(buf, msg.payload)
	return transport.Status{Source: msg.src, Tag: msg.tag, Size: len(msg.payload)}, nil
}

// AsyncSend implements transport.Capability. Delivery into the destination
// mailbox is itself instantaneous (an unbounded in-process queue), so the
// returned Event is already complete.
func (b *Backend) AsyncSend(dst transport.VAddr, tag int, ctx transport.Context, data []byte) (*transport.Event, error) {
	if err := b.Send(dst, tag, ctx, data); err != nil {
		return nil, err
	}
	done := make(chan struct{})
	close(done)
	ev := transport.NewEvent(done, func() (transport.Status, error) {
		return transport.Status{Source: b.self, Tag: tag, Size: len(data)}, nil
	})
	return ev, nil
}

// AsyncRecv implements transport.Capability.
func (b *Backend) AsyncRecv(src transport.VAddr, tag int, ctx transport.Context, buf []byte) (*transport.Event, error) {
	done := make(chan struct{})
	var status transport.Status
	var recvErr error
	go func() {
		status, recvErr = b.Recv(src, tag, ctx, buf)
		close(done)
	}()
	return transport.NewEvent(done, func() (transport.Status, error) {
		return status, recvErr
	}), nil
}

// Probe implements transport.Capability.
func (b *Backend) Probe(src transport.VAddr, tag int, ctx transport.Context) (transport.Status, error) {
	msg := b.fab.peekBlocking(ctx.ID(), b.self, src, tag)
	return transport.Status{Source: msg.src, Tag: msg.tag, Size: len(msg.payload)}, nil
}

// AllReduce implements transport.Capability.
func (b *Backend) AllReduce(ctx transport.Context, op transport.ReduceOp, in, out []int64) error {
	pos, err := b.requirePos(ctx)
	if err != nil {
		return err
	}
	rb := b.fab.barrierWithLock(ctx.ID())
	res := rb.run(pos, append([]int64(nil), in...), func(c [][]int64) [][]int64 { return collective.AllReduce(op, c) })
	copy(out, res)
	return nil
}

// Reduce implements transport.Capability.
func (b *Backend) Reduce(ctx transport.Context, root transport.VAddr, op transport.ReduceOp, in, out []int64) error {
	pos, err := b.requirePos(ctx)
	if err != nil {
		return err
	}
	rootPos := posOf(ctx, root)
	rb := b.fab.barrierWithLock(ctx.ID())
	res := rb.run(pos, append([]int64(nil), in...), func(c [][]int64) [][]int64 { return collective.Reduce(op, rootPos, c) })
	if pos == rootPos {
		copy(out, res)
	}
	return nil
}

// AllGather implements transport.Capability.
func (b *Backend) AllGather(ctx transport.Context, in, out []int64) error {
	pos, err := b.requirePos(ctx)
	if err != nil {
		return err
	}
	rb := b.fab.barrierWithLock(ctx.ID())
	res := rb.run(pos, append([]int64(nil), in...), collective.AllGather)
	copy(out, res)
	return nil
}

// Gather implements transport.Capability.
func (b *Backend) Gather(ctx transport.Context, root transport.VAddr, in, out []int64) error {
	pos, err := b.requirePos(ctx)
	if err != nil {
		return err
	}
	rootPos := posOf(ctx, root)
	rb := b.fab.barrierWithLock(ctx.ID())
	res := rb.run(pos, append([]int64(nil), in...), func(c [][]int64) [][]int64 { return collective.Gather(rootPos, c) })
	if pos == rootPos {
		copy(out, res)
	}
	return nil
}

// Scatter implements transport.Capability.
func (b *Backend) Scatter(ctx transport.Context, root transport.VAddr, in, out []int64) error {
	pos, err := b.requirePos(ctx)
	if err != nil {
		return err
	}
	rootPos := posOf(ctx, root)
	var contribution []int64
	if pos == rootPos {
		contribution = append([]int64(nil), in...)
	}
	rb := b.fab.barrierWithLock(ctx.ID())
	res := rb.run(pos, contribution, func(c [][]int64) [][]int64 { return collective.Scatter(rootPos, c) })
	copy(out, res)
	return nil
}

// Broadcast implements transport.Capability.
func (b *Backend) Broadcast(ctx transport.Context, root transport.VAddr, inout []int64) error {
	pos, err := b.requirePos(ctx)
	if err != nil {
		return err
	}
	rootPos := posOf(ctx, root)
	var contribution []int64
	if pos == rootPos {
		contribution = append([]int64(nil), inout...)
	}
	rb := b.fab.barrierWithLock(ctx.ID())
	res := rb.run(pos, contribution, func(c [][]int64) [][]int64 { return collective.Broadcast(rootPos, c) })
	copy(inout, res)
	return nil
}

// Barrier implements transport.Capability.
func (b *Backend) Barrier(ctx transport.Context) error {
	pos, err := b.requirePos(ctx)
	if err != nil {
		return err
	}
	rb := b.fab.barrierWithLock(ctx.ID())
	rb.run(pos, nil, collective.Barrier)
	return nil
}

// Close implements transport.Capability by releasing this process's hold
// on the shared Fabric.
func (b *Backend) Close() error {
	Release()
	return nil
}

func (b *Backend) requirePos(ctx transport.Context) (int, error) {
	pos := posOf(ctx, b.self)
	if pos < 0 {
		return 0, xerrors.Errorf("channel: self %d is not a member of context %d: %w", b.self, ctx.ID(), errs.ContextError)
	}
	return pos, nil
}

// barrierWithLock returns ctx's round barrier, creating it if this is the
// first collective call seen for it.
func (f *Fabric) barrierWithLock(ctx transport.ContextID) *roundBarrier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.barrier(ctx)
}
