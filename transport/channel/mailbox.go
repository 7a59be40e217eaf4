package channel

import "github.com/graybat-go/graybat/transport"

// message is one payload in flight between two peers of the same context.
type message struct {
	src     transport.VAddr
	tag     int
	payload []byte
}

// poolKey identifies the set of per-destination mailboxes for one context
// and tag. Wildcard tag receives (transport.AnyTag) are handled by the
// Fabric scanning every pool of the context rather than addressing one
// directly.
type poolKey struct {
	ctx transport.ContextID
	tag int
}

// mailbox is the inbox for one (context, destination, tag) triple. Messages
// are kept in arrival order; a Recv with an exact source filter preserves
// FIFO order for that source, and a wildcard-source Recv takes the oldest
// arrival regardless of sender, matching spec.md §4.5's ordering guarantee.
type mailbox struct {
	pending []message
}

// pool is the set of live mailboxes for one (context, tag) pair, one per
// destination VAddr, guarded by the owning Fabric's lock.
type pool struct {
	boxes map[transport.VAddr]*mailbox
}

func newPool() *pool { return &pool{boxes: make(map[transport.VAddr]*mailbox)} }

func (p *pool) box(dst transport.VAddr) *mailbox {
	b, ok := p.boxes[dst]
	if !ok {
		b = &mailbox{}
		p.boxes[dst] = b
	}
	return b
}

// deliver appends msg to dst's mailbox.
func (p *pool) deliver(dst transport.VAddr, msg message) {
	b := p.box(dst)
	b.pending = append(b.pending, msg)
}

// take removes and returns the first message in dst's mailbox whose source
// matches src (transport.AnyVAddr matches any source).
func (b *mailbox) take(src transport.VAddr) (message, bool) {
	for i, m := range b.pending {
		if src == transport.AnyVAddr || m.src == src {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return m, true
		}
	}
	return message{}, false
}

// peek reports the first matching message without removing it.
func (b *mailbox) peek(src transport.VAddr) (message, bool) {
	for _, m := range b.pending {
		if src == transport.AnyVAddr || m.src == src {
			return m, true
		}
	}
	return message{}, false
}
