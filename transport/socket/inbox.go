package socket

import "github.com/graybat-go/graybat/transport"

// inboxKey identifies one (context, tag) mailbox for this process; dst is
// implicitly always this Backend's own VAddr, since every inbound frame on
// a socket backend is addressed here by construction (peers dial directly).
type inboxKey struct {
	ctx transport.ContextID
	tag int32
}

type inboxMessage struct {
	src     transport.VAddr
	tag     int32
	payload []byte
}

// inbox holds messages arrived for one (context, tag) pair, in arrival
// order, mirroring transport/channel's mailbox.
type inbox struct {
	pending []inboxMessage
}

func (b *Backend) inboxFor(key inboxKey) *inbox {
	ib, ok := b.inboxes[key]
	if !ok {
		ib = &inbox{}
		b.inboxes[key] = ib
	}
	return ib
}

func (ib *inbox) take(src transport.VAddr) (inboxMessage, bool) {
	for i, m := range ib.pending {
		if src == transport.AnyVAddr || m.src == src {
			ib.pending = append(ib.pending[:i], ib.pending[i+1:]...)
			return m, true
		}
	}
	return inboxMessage{}, false
}

func (ib *inbox) peek(src transport.VAddr) (inboxMessage, bool) {
	for _, m := range ib.pending {
		if src == transport.AnyVAddr || m.src == src {
			return m, true
		}
	}
	return inboxMessage{}, false
}
