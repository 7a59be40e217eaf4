package socket

import (
	"bufio"
	"net"
	"sync"
)

// conn is one outbound, persistent TCP connection to a peer, used only for
// writing. Writes are serialized; nothing is read from it. Frames from a
// peer arrive on the connection that peer dialed to us, which acceptLoop
// hands to readLoop.
type conn struct {
	netConn net.Conn
	wmu     sync.Mutex
	w       *bufio.Writer
}

func (c *conn) send(f frame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return writeFrame(c.w, f)
}

// readLoop decodes frames from netConn until it errors or is closed,
// handing each one to b.deliver. It runs only on inbound, accepted
// connections (the peer's own sends to us); outbound connections from
// connFor are not read.
func (b *Backend) readLoop(netConn net.Conn) {
	r := bufio.NewReader(netConn)
	for {
		f, err := readFrame(r)
		if err != nil {
			return
		}
		b.deliver(f)
	}
}

func (b *Backend) acceptLoop() {
	for {
		netConn, err := b.listener.Accept()
		if err != nil {
			return
		}
		go b.readLoop(netConn)
	}
}
