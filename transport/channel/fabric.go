package channel

import (
	"sync"
	"sync/atomic"

	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/transport"
)

var (
	globalMu   sync.Mutex
	globalFab  *Fabric
	globalRefs int
)

// Acquire returns the process-wide Fabric sized for size peers, creating it
// on the first call and reference-counting every call after that (spec.md
// §9 "global transport state"). Every caller in the process must agree on
// size; a mismatched size is a configuration error.
func Acquire(size int) (*Fabric, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalFab == nil {
		globalFab = newFabric(size)
	} else if globalFab.size != size {
		return nil, xerrors.Errorf("channel: fabric already acquired with size %d, got %d: %w", globalFab.size, size, errs.ConfigurationError)
	}
	globalRefs++
	return globalFab, nil
}

// Release decrements the shared Fabric's reference count, tearing it down
// once the last holder releases it.
func Release() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalRefs == 0 {
		return
	}
	globalRefs--
	if globalRefs == 0 {
		globalFab = nil
	}
}

// Fabric is the shared, in-process rendezvous point for every peer of the
// synchronous backend: mailboxes for point-to-point traffic and reusable
// round barriers for collectives, both keyed by context.
type Fabric struct {
	mu        sync.Mutex
	cond      *sync.Cond
	size      int
	nextCtxID int32

	pools    map[poolKey]*pool
	barriers map[transport.ContextID]*roundBarrier
}

func newFabric(size int) *Fabric {
	f := &Fabric{
		size:     size,
		pools:    make(map[poolKey]*pool),
		barriers: make(map[transport.ContextID]*roundBarrier),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Peer returns a Capability bound to self within the process-wide global
// context (VAddrs 0..size-1).
func (f *Fabric) Peer(self transport.VAddr) (*Backend, error) {
	if self < 0 || int(self) >= f.size {
		return nil, xerrors.Errorf("channel: vaddr %d out of range [0,%d): %w", self, f.size, errs.ConfigurationError)
	}
	addrs := make([]transport.VAddr, f.size)
	for i := range addrs {
		addrs[i] = transport.VAddr(i)
	}
	return &Backend{
		fab:  f,
		self: self,
		glob: transport.NewContext(0, addrs, self),
	}, nil
}

func (f *Fabric) pool(ctx transport.ContextID, tag int) *pool {
	key := poolKey{ctx: ctx, tag: tag}
	p, ok := f.pools[key]
	if !ok {
		p = newPool()
		f.pools[key] = p
	}
	return p
}

func (f *Fabric) barrier(ctx transport.ContextID) *roundBarrier {
	rb, ok := f.barriers[ctx]
	if !ok {
		rb = newRoundBarrier(f.size)
		f.barriers[ctx] = rb
	}
	return rb
}

func (f *Fabric) deliver(ctx transport.ContextID, dst transport.VAddr, msg message) {
	f.mu.Lock()
	f.pool(ctx, msg.tag).deliver(dst, msg)
	f.cond.Broadcast()
	f.mu.Unlock()
}

// take blocks until a message matching (src, tag) arrives in dst's inbox
// for ctx, then removes and returns it.
func (f *Fabric) take(ctx transport.ContextID, dst, src transport.VAddr, tag int) message {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if m, ok := f.scan(ctx, dst, src, tag, true); ok {
			return m
		}
		f.cond.Wait()
	}
}

// peekBlocking blocks until a matching message exists, without removing it.
func (f *Fabric) peekBlocking(ctx transport.ContextID, dst, src transport.VAddr, tag int) message {
	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if m, ok := f.scan(ctx, dst, src, tag, false); ok {
			return m
		}
		f.cond.Wait()
	}
}

// tryTake is the non-blocking counterpart of take; ok is false if nothing
// matches yet.
func (f *Fabric) tryTake(ctx transport.ContextID, dst, src transport.VAddr, tag int) (message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scan(ctx, dst, src, tag, true)
}

// scan must be called with f.mu held. When tag is transport.AnyTag it
// checks every pool registered for ctx; otherwise only dst/tag's own pool.
func (f *Fabric) scan(ctx transport.ContextID, dst, src transport.VAddr, tag int, remove bool) (message, bool) {
	if tag != transport.AnyTag {
		b := f.pool(ctx, tag).box(dst)
		if remove {
			return b.take(src)
		}
		return b.peek(src)
	}
	for key, p := range f.pools {
		if key.ctx != ctx {
			continue
		}
		b := p.box(dst)
		if remove {
			if m, ok := b.take(src); ok {
				return m, true
			}
		} else if m, ok := b.peek(src); ok {
			return m, true
		}
	}
	return message{}, false
}

func (f *Fabric) newContextID() transport.ContextID {
	return transport.ContextID(atomic.AddInt32(&f.nextCtxID, 1))
}

func posOf(ctx transport.Context, self transport.VAddr) int {
	for i, v := range ctx.VAddrs() {
		if v == self {
			return i
		}
	}
	return -1
}
