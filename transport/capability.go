package transport

// Capability is implemented by every communication backend (spec.md §4.5).
// All operations below whose doc says "blocking" are suspension points per
// spec.md §5; Ready/Probe/graph accessors never block.
type Capability interface {
	// GlobalContext returns this process's initial context, containing
	// every peer.
	GlobalContext() Context

	// CreateContext is collective over parent: every peer in parent must
	// call it with the same vaddrs. Peers listed in vaddrs receive a new
	// Context ordered as given; peers not listed receive an invalid
	// Context (Context.Valid() == false).
	CreateContext(vaddrs []VAddr, parent Context) (Context, error)

	// Send blocks until data has been handed to dst for delivery on
	// (ctx, tag).
	Send(dst VAddr, tag int, ctx Context, data []byte) error

	// Recv blocks until a message matching (src, tag, ctx) arrives and
	// copies it into buf. src/tag may be AnyVAddr/AnyTag.
	Recv(src VAddr, tag int, ctx Context, buf []byte) (Status, error)

	// AsyncSend is the non-blocking counterpart of Send.
	AsyncSend(dst VAddr, tag int, ctx Context, data []byte) (*Event, error)

	// AsyncRecv is the non-blocking counterpart of Recv.
	AsyncRecv(src VAddr, tag int, ctx Context, buf []byte) (*Event, error)

	// Probe reports the size/source/tag of the next matching message
	// without consuming it. src/tag may be AnyVAddr/AnyTag.
	Probe(src VAddr, tag int, ctx Context) (Status, error)

	// AllReduce combines in across every peer in ctx with op and writes
	// the identical result to out on every peer.
	AllReduce(ctx Context, op ReduceOp, in, out []int64) error

	// Reduce combines in across every peer in ctx with op and writes the
	// result to out only on root.
	Reduce(ctx Context, root VAddr, op ReduceOp, in, out []int64) error

	// AllGather concatenates every peer's in (each len(in) long) into out
	// (len(in)*ctx.Size() long, ordered by VAddr) on every peer.
	AllGather(ctx Context, in, out []int64) error

	// Gather concatenates every peer's in into out, ordered by VAddr, on
	// root only.
	Gather(ctx Context, root VAddr, in, out []int64) error

	// Scatter splits root's in (len(out)*ctx.Size() long) into ctx.Size()
	// equal chunks and delivers the chunk for each peer into that peer's
	// out.
	Scatter(ctx Context, root VAddr, in, out []int64) error

	// Broadcast copies root's inout to every other peer's inout.
	Broadcast(ctx Context, root VAddr, inout []int64) error

	// Barrier blocks every peer in ctx until all of them have called it.
	Barrier(ctx Context) error

	// Close releases any resources (connections, registrations) acquired
	// by this backend. Safe to call once the last Cage using it is done.
	Close() error
}

// CustomReducer is an optional extension implemented by backends that
// support arbitrary binary reduction operators (spec.md §9 open question:
// restricted to the socket backend; the channel/synchronous backend only
// offers the fixed ReduceOp set).
type CustomReducer interface {
	// AllReduceFunc folds in together with every other peer's contribution
	// in ctx using op, in VAddr order, and writes the identical result to
	// *out on every peer.
	AllReduceFunc(ctx Context, op func(a, b []byte) []byte, in []byte, out *[]byte) error
}
