package socket

import (
	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/internal/collective"
	"github.com/graybat-go/graybat/transport"
)

// collectiveTag is the reserved tag used for all point-to-point messages a
// collective operation exchanges with its coordinator; it is outside the
// [0, 2^31) user tag range spec.md §6 reserves for application traffic.
const collectiveTag = -2

// runCollective gathers one contribution per member of ctx at coordinator,
// combines them, and — when expectReply is true — sends every other
// member its slice of the result. It is the socket backend's point-to-point
// substitute for transport/channel's shared-memory round barrier: the
// coordinator plays the role the last-arriving peer plays there.
func (b *Backend) runCollective(ctx transport.Context, coordinator transport.VAddr, contribute []int64, expectReply bool, combine func(contribs [][]int64) [][]int64) ([]int64, error) {
	addrs := ctx.VAddrs()

	if b.self != coordinator {
		if err := b.sendInts(coordinator, collectiveTag, ctx, contribute); err != nil {
			return nil, xerrors.Errorf("socket: sending collective contribution: %w", err)
		}
		if !expectReply {
			return nil, nil
		}
		out, err := b.recvInts(coordinator, collectiveTag, ctx)
		if err != nil {
			return nil, xerrors.Errorf("socket: receiving collective result: %w", err)
		}
		return out, nil
	}

	contribs := make([][]int64, len(addrs))
	myPos := -1
	for i, v := range addrs {
		if v == coordinator {
			contribs[i] = contribute
			myPos = i
			continue
		}
		in, err := b.recvInts(v, collectiveTag, ctx)
		if err != nil {
			return nil, xerrors.Errorf("socket: receiving contribution from %d: %w", v, err)
		}
		contribs[i] = in
	}

	results := combine(contribs)

	if expectReply {
		for i, v := range addrs {
			if v == coordinator {
				continue
			}
			if err := b.sendInts(v, collectiveTag, ctx, results[i]); err != nil {
				return nil, xerrors.Errorf("socket: replying to %d: %w", v, err)
			}
		}
	}

	return results[myPos], nil
}

// AllReduce implements transport.Capability. The coordinator is always
// ctx.VAddrs()[0], since every member expects a reply.
func (b *Backend) AllReduce(ctx transport.Context, op transport.ReduceOp, in, out []int64) error {
	res, err := b.runCollective(ctx, ctx.VAddrs()[0], in, true, func(c [][]int64) [][]int64 { return collective.AllReduce(op, c) })
	if err != nil {
		return err
	}
	copy(out, res)
	return nil
}

// Reduce implements transport.Capability. root is also the coordinator;
// only it receives a reply.
func (b *Backend) Reduce(ctx transport.Context, root transport.VAddr, op transport.ReduceOp, in, out []int64) error {
	rootPos := posOf(ctx, root)
	res, err := b.runCollective(ctx, root, in, false, func(c [][]int64) [][]int64 { return collective.Reduce(op, rootPos, c) })
	if err != nil {
		return err
	}
	if b.self == root {
		copy(out, res)
	}
	return nil
}

// AllGather implements transport.Capability.
func (b *Backend) AllGather(ctx transport.Context, in, out []int64) error {
	res, err := b.runCollective(ctx, ctx.VAddrs()[0], in, true, collective.AllGather)
	if err != nil {
		return err
	}
	copy(out, res)
	return nil
}

// Gather implements transport.Capability.
func (b *Backend) Gather(ctx transport.Context, root transport.VAddr, in, out []int64) error {
	rootPos := posOf(ctx, root)
	res, err := b.runCollective(ctx, root, in, false, func(c [][]int64) [][]int64 { return collective.Gather(rootPos, c) })
	if err != nil {
		return err
	}
	if b.self == root {
		copy(out, res)
	}
	return nil
}

// Scatter implements transport.Capability.
func (b *Backend) Scatter(ctx transport.Context, root transport.VAddr, in, out []int64) error {
	rootPos := posOf(ctx, root)
	var contribution []int64
	if b.self == root {
		contribution = in
	}
	res, err := b.runCollective(ctx, root, contribution, true, func(c [][]int64) [][]int64 { return collective.Scatter(rootPos, c) })
	if err != nil {
		return err
	}
	copy(out, res)
	return nil
}

// Broadcast implements transport.Capability.
func (b *Backend) Broadcast(ctx transport.Context, root transport.VAddr, inout []int64) error {
	rootPos := posOf(ctx, root)
	var contribution []int64
	if b.self == root {
		contribution = inout
	}
	res, err := b.runCollective(ctx, root, contribution, true, func(c [][]int64) [][]int64 { return collective.Broadcast(rootPos, c) })
	if err != nil {
		return err
	}
	copy(inout, res)
	return nil
}

// Barrier implements transport.Capability.
func (b *Backend) Barrier(ctx transport.Context) error {
	_, err := b.runCollective(ctx, ctx.VAddrs()[0], nil, true, collective.Barrier)
	return err
}

// customReduceTag is the reserved tag used by AllReduceFunc's point-to-point
// exchange with its coordinator, alongside collectiveTag.
const customReduceTag = -4

// AllReduceFunc implements transport.CustomReducer. The coordinator is
// always ctx.VAddrs()[0]: it receives every other peer's raw contribution,
// folds them into its own with op in VAddr order, and sends the identical
// result back to everyone. Unlike AllReduce, the combine step runs directly
// on the wire bytes rather than on int64 slices, so it is only offered here
// (spec.md §9 restricts custom reduce operators to the socket backend): the
// channel backend's shared-memory round barrier has no coordinator to run
// op on behalf of every peer.
func (b *Backend) AllReduceFunc(ctx transport.Context, op func(a, b []byte) []byte, in []byte, out *[]byte) error {
	coordinator := ctx.VAddrs()[0]

	if b.self != coordinator {
		if err := b.Send(coordinator, customReduceTag, ctx, in); err != nil {
			return xerrors.Errorf("socket: sending custom-reduce contribution: %w", err)
		}
		result, err := b.recvBytes(coordinator, customReduceTag, ctx)
		if err != nil {
			return xerrors.Errorf("socket: receiving custom-reduce result: %w", err)
		}
		*out = result
		return nil
	}

	result := in
	for _, v := range ctx.VAddrs() {
		if v == coordinator {
			continue
		}
		contribution, err := b.recvBytes(v, customReduceTag, ctx)
		if err != nil {
			return xerrors.Errorf("socket: receiving contribution from %d: %w", v, err)
		}
		result = op(result, contribution)
	}

	for _, v := range ctx.VAddrs() {
		if v == coordinator {
			continue
		}
		if err := b.Send(v, customReduceTag, ctx, result); err != nil {
			return xerrors.Errorf("socket: replying custom-reduce result to %d: %w", v, err)
		}
	}
	*out = result
	return nil
}

func posOf(ctx transport.Context, v transport.VAddr) int {
	for i, a := range ctx.VAddrs() {
		if a == v {
			return i
		}
	}
	return -1
}
