package socket

import (
	"encoding/binary"

	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/transport"
)

// contextInitTag is the reserved tag CreateContext's coordinator uses to
// hand the freshly minted context ID to every other member.
const contextInitTag = -3

// deliver is called by a connection's readLoop for every frame it decodes.
func (b *Backend) deliver(f frame) {
	b.mu.Lock()
	key := inboxKey{ctx: f.ctx, tag: f.tag}
	ib := b.inboxFor(key)
	ib.pending = append(ib.pending, inboxMessage{src: f.src, tag: f.tag, payload: f.payload})
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Send implements transport.Capability.
func (b *Backend) Send(dst transport.VAddr, tag int, ctx transport.Context, data []byte) error {
	c, err := b.connFor(dst)
	if err != nil {
		return err
	}
	return c.send(frame{
		typ:     msgPeer,
		src:     b.self,
		dst:     dst,
		ctx:     ctx.ID(),
		tag:     int32(tag),
		payload: append([]byte(nil), data...),
	})
}

// Recv implements transport.Capability.
func (b *Backend) Recv(src transport.VAddr, tag int, ctx transport.Context, buf []byte) (transport.Status, error) {
	msg := b.take(ctx.ID(), src, int32(tag))
	if len(msg.payload) != len(buf) {
		return transport.Status{}, xerrors.Errorf("socket: recv expected %d bytes, got %d: %w", len(buf), len(msg.payload), errs.SizeMismatch)
	}
	copy(buf, msg.payload)
	return transport.Status{Source: msg.src, Tag: int(msg.tag), Size: len(msg.payload)}, nil
}

// AsyncSend implements transport.Capability. The blocking Send call runs on
// the backend's worker pool (Config.PoolSize, 0 meaning one goroutine per
// call rather than the original caller's) so the number of concurrent async
// sends in flight is bounded the same way Cage.Spread/Collect bound their
// fan-out.
func (b *Backend) AsyncSend(dst transport.VAddr, tag int, ctx transport.Context, data []byte) (*transport.Event, error) {
	done := make(chan struct{})
	var sendErr error
	go b.pool.Submit(func() {
		sendErr = b.Send(dst, tag, ctx, data)
		close(done)
	})
	return transport.NewEvent(done, func() (transport.Status, error) {
		return transport.Status{Source: b.self, Tag: tag, Size: len(data)}, sendErr
	}), nil
}

// AsyncRecv implements transport.Capability; see AsyncSend for the pooling
// rationale.
func (b *Backend) AsyncRecv(src transport.VAddr, tag int, ctx transport.Context, buf []byte) (*transport.Event, error) {
	done := make(chan struct{})
	var status transport.Status
	var recvErr error
	go b.pool.Submit(func() {
		status, recvErr = b.Recv(src, tag, ctx, buf)
		close(done)
	})
	return transport.NewEvent(done, func() (transport.Status, error) {
		return status, recvErr
	}), nil
}

// Probe implements transport.Capability.
func (b *Backend) Probe(src transport.VAddr, tag int, ctx transport.Context) (transport.Status, error) {
	msg := b.peekBlocking(ctx.ID(), src, int32(tag))
	return transport.Status{Source: msg.src, Tag: int(msg.tag), Size: len(msg.payload)}, nil
}

func (b *Backend) take(ctx transport.ContextID, src transport.VAddr, tag int32) inboxMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		if m, ok := b.scan(ctx, src, tag, true); ok {
			return m
		}
		b.cond.Wait()
	}
}

func (b *Backend) peekBlocking(ctx transport.ContextID, src transport.VAddr, tag int32) inboxMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		if m, ok := b.scan(ctx, src, tag, false); ok {
			return m
		}
		b.cond.Wait()
	}
}

// scan must be called with b.mu held.
func (b *Backend) scan(ctx transport.ContextID, src transport.VAddr, tag int32, remove bool) (inboxMessage, bool) {
	if tag != int32(transport.AnyTag) {
		ib := b.inboxFor(inboxKey{ctx: ctx, tag: tag})
		if remove {
			return ib.take(src)
		}
		return ib.peek(src)
	}
	for key, ib := range b.inboxes {
		if key.ctx != ctx {
			continue
		}
		if remove {
			if m, ok := ib.take(src); ok {
				return m, true
			}
		} else if m, ok := ib.peek(src); ok {
			return m, true
		}
	}
	return inboxMessage{}, false
}

// sendInts serializes vals as big-endian int64s and sends them as a single
// frame's payload.
func (b *Backend) sendInts(dst transport.VAddr, tag int, ctx transport.Context, vals []int64) error {
	return b.Send(dst, tag, ctx, encodeInts(vals))
}

// recvInts blocks for a frame on (src, tag, ctx) and decodes its payload as
// big-endian int64s.
func (b *Backend) recvInts(src transport.VAddr, tag int, ctx transport.Context) ([]int64, error) {
	msg := b.take(ctx.ID(), src, int32(tag))
	return decodeInts(msg.payload), nil
}

// recvBytes blocks for a frame on (src, tag, ctx) and returns its payload
// verbatim, with no length expectation (unlike Recv, which copies into a
// caller-sized buf).
func (b *Backend) recvBytes(src transport.VAddr, tag int, ctx transport.Context) ([]byte, error) {
	msg := b.take(ctx.ID(), src, int32(tag))
	return msg.payload, nil
}

func encodeInts(vals []int64) []byte {
	out := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.BigEndian.PutUint64(out[i*8:(i+1)*8], uint64(v))
	}
	return out
}

func decodeInts(data []byte) []int64 {
	n := len(data) / 8
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = int64(binary.BigEndian.Uint64(data[i*8 : (i+1)*8]))
	}
	return out
}
