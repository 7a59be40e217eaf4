package socket

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	"google.golang.org/grpc"

	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/internal/threadpool"
	"github.com/graybat-go/graybat/signaling"
	"github.com/graybat-go/graybat/signaling/signalingpb"
	"github.com/graybat-go/graybat/transport"
)

// Config names the socket transport's configuration options (spec.md §6
// "Configuration"): masterUri (SignalingAddr), peerUri (AdvertiseURI),
// contextSize and contextName. maxBufferSize is not a Config field: the
// payload limit is the fixed maxPayload constant in wire.go.
type Config struct {
	// SignalingAddr is the signaling server's address ("masterUri").
	SignalingAddr string
	// ListenAddr is the local address to accept peer connections on; use
	// "host:0" for an ephemeral port.
	ListenAddr string
	// AdvertiseURI is published to the signaling service for other peers
	// to dial. Derived from the listener's bound address if empty.
	AdvertiseURI string
	// ContextName names the global context ("contextName", default
	// "context").
	ContextName string
	// ContextSize is the number of peers expected to join the global
	// context ("contextSize").
	ContextSize int
	// PoolSize bounds the number of goroutines AsyncSend/AsyncRecv use to
	// run their blocking counterpart in the background. 0 (the default)
	// still runs each one on its own goroutine rather than the caller's,
	// since Async* must return before the operation completes regardless
	// of pool size; a positive PoolSize only bounds how many such
	// operations run concurrently (spec.md §5 "configurable, possibly
	// zero" thread pool).
	PoolSize int
	Logger   *logrus.Entry
}

func (cfg *Config) withDefaults() {
	if cfg.ContextName == "" {
		cfg.ContextName = "context"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(logrus.New())
	}
}

// Backend is a transport.Capability bound to one peer's process, backed by
// real TCP connections to every other peer of its global context and by
// the signaling service for discovery (spec.md "Asynchronous socket
// backend").
type Backend struct {
	self   transport.VAddr
	glob   transport.Context
	logger *logrus.Entry

	listener net.Listener

	mu      sync.Mutex
	cond    *sync.Cond
	inboxes map[inboxKey]*inbox
	conns   map[transport.VAddr]*conn
	addrs   map[transport.VAddr]string

	pool *threadpool.Pool

	nextCtxID int64

	signalingConn *grpc.ClientConn
	client        signaling.SignalingClient
	contextID     int64
	vaddr         int32
}

// Connect registers with the signaling service, discovers every other
// member of the named context, and starts accepting peer connections.
// Callers must call Close when done (spec.md §5 "scoped acquisition").
func Connect(ctx context.Context, cfg Config) (*Backend, error) {
	cfg.withDefaults()

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, xerrors.Errorf("socket: listen on %s: %w", cfg.ListenAddr, errWrap(err))
	}

	advertise := cfg.AdvertiseURI
	if advertise == "" {
		advertise = fmt.Sprintf("tcp://%s", listener.Addr().String())
	}

	signalingConn, err := signaling.Dial(ctx, cfg.SignalingAddr)
	if err != nil {
		_ = listener.Close()
		return nil, xerrors.Errorf("socket: dialing signaling server %s: %w", cfg.SignalingAddr, errWrap(err))
	}
	client := signaling.NewSignalingClient(signalingConn)

	ctxReply, err := client.RequestContext(ctx, &signalingpb.RequestContextRequest{
		ContextName:  cfg.ContextName,
		ExpectedSize: int32(cfg.ContextSize),
	})
	if err != nil || !ctxReply.Success {
		_ = signalingConn.Close()
		_ = listener.Close()
		return nil, xerrors.Errorf("socket: requesting context %q: %w", cfg.ContextName, errWrap(errOrProtocol(err)))
	}

	vReply, err := client.RequestVaddr(ctx, &signalingpb.RequestVaddrRequest{
		ContextID: ctxReply.ContextID,
		PeerURI:   advertise,
	})
	if err != nil || !vReply.Success {
		_ = signalingConn.Close()
		_ = listener.Close()
		return nil, xerrors.Errorf("socket: requesting vaddr: %w", errWrap(errOrProtocol(err)))
	}

	addrs := make(map[transport.VAddr]string, cfg.ContextSize)
	vaddrs := make([]transport.VAddr, cfg.ContextSize)
	for v := 0; v < cfg.ContextSize; v++ {
		uri, err := lookupVaddrWithRetry(ctx, client, ctxReply.ContextID, int32(v))
		if err != nil {
			_ = signalingConn.Close()
			_ = listener.Close()
			return nil, xerrors.Errorf("socket: looking up vaddr %d: %w", v, err)
		}
		addrs[transport.VAddr(v)] = uri
		vaddrs[v] = transport.VAddr(v)
	}

	b := &Backend{
		self:          transport.VAddr(vReply.Vaddr),
		logger:        cfg.Logger,
		listener:      listener,
		inboxes:       make(map[inboxKey]*inbox),
		conns:         make(map[transport.VAddr]*conn),
		addrs:         addrs,
		pool:          threadpool.New(cfg.PoolSize),
		signalingConn: signalingConn,
		client:        client,
		contextID:     ctxReply.ContextID,
		vaddr:         vReply.Vaddr,
	}
	b.cond = sync.NewCond(&b.mu)
	b.glob = transport.NewContext(transport.ContextID(ctxReply.ContextID), vaddrs, b.self)

	go b.acceptLoop()

	return b, nil
}

func errOrProtocol(err error) error {
	if err != nil {
		return err
	}
	return errs.ProtocolError
}

// lookupVaddrWithRetry polls LookupVaddr until the peer that owns vaddr has
// itself called RequestVaddr. RequestContext only guarantees every peer has
// joined the named context by the time it unblocks, not that every peer has
// already registered its own address, so an immediate lookup can legitimately
// race a sibling's RequestVaddr call.
func lookupVaddrWithRetry(ctx context.Context, client signaling.SignalingClient, contextID int64, vaddr int32) (string, error) {
	const retryDelay = 20 * time.Millisecond
	for {
		reply, err := client.LookupVaddr(ctx, &signalingpb.LookupVaddrRequest{ContextID: contextID, Vaddr: vaddr})
		if err != nil {
			return "", errWrap(err)
		}
		if reply.Success {
			return reply.URI, nil
		}
		select {
		case <-ctx.Done():
			return "", xerrors.Errorf("timed out waiting for vaddr %d to register: %w", vaddr, ctx.Err())
		case <-time.After(retryDelay):
		}
	}
}

var _ transport.Capability = (*Backend)(nil)
var _ transport.CustomReducer = (*Backend)(nil)

// GlobalContext implements transport.Capability.
func (b *Backend) GlobalContext() transport.Context { return b.glob }

// CreateContext implements transport.Capability. The first VAddr listed in
// vaddrs acts as coordinator: it mints a fresh context ID and sends it to
// every other member over parent; peers excluded from vaddrs never
// exchange a message and simply receive an invalid Context.
func (b *Backend) CreateContext(vaddrs []transport.VAddr, parent transport.Context) (transport.Context, error) {
	if len(vaddrs) == 0 {
		return transport.InvalidContext(0), nil
	}
	coordinator := vaddrs[0]
	pos := -1
	for i, v := range vaddrs {
		if v == b.self {
			pos = i
		}
	}
	if pos < 0 {
		return transport.InvalidContext(0), nil
	}

	if b.self == coordinator {
		id := b.newContextID()
		for _, v := range vaddrs[1:] {
			if err := b.sendInts(v, contextInitTag, parent, []int64{id}); err != nil {
				return transport.Context{}, xerrors.Errorf("socket: broadcasting new context id: %w", err)
			}
		}
		return transport.NewContext(transport.ContextID(id), vaddrs, b.self), nil
	}

	idSlice, err := b.recvInts(coordinator, contextInitTag, parent)
	if err != nil {
		return transport.Context{}, xerrors.Errorf("socket: receiving new context id: %w", err)
	}
	return transport.NewContext(transport.ContextID(idSlice[0]), vaddrs, b.self), nil
}

// newContextID mints a context ID unique across the whole process group
// without negotiation: the high bits carry this peer's VAddr (only the
// coordinator of a CreateContext call ever mints one), the low bits a
// local counter.
func (b *Backend) newContextID() int64 {
	c := atomic.AddInt64(&b.nextCtxID, 1)
	return int64(b.self)<<32 | c
}

// Close implements transport.Capability: it deregisters from the
// signaling service and tears down every connection.
func (b *Backend) Close() error {
	b.pool.Close()
	_, _ = b.client.LeaveContext(context.Background(), &signalingpb.LeaveContextRequest{ContextID: b.contextID, Vaddr: b.vaddr})
	_ = b.signalingConn.Close()
	_ = b.listener.Close()

	b.mu.Lock()
	conns := make([]*conn, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.Unlock()
	for _, c := range conns {
		_ = c.netConn.Close()
	}
	return nil
}

// connFor returns the outbound connection to dst, dialing it on first use.
func (b *Backend) connFor(dst transport.VAddr) (*conn, error) {
	b.mu.Lock()
	if c, ok := b.conns[dst]; ok {
		b.mu.Unlock()
		return c, nil
	}
	addr, ok := b.addrs[dst]
	b.mu.Unlock()
	if !ok {
		return nil, xerrors.Errorf("socket: no known address for vaddr %d: %w", dst, errs.ConfigurationError)
	}

	netConn, err := net.Dial("tcp", trimScheme(addr))
	if err != nil {
		return nil, xerrors.Errorf("socket: dialing %d at %s: %w", dst, addr, errWrap(err))
	}
	c := &conn{netConn: netConn, w: bufio.NewWriter(netConn)}

	b.mu.Lock()
	if existing, ok := b.conns[dst]; ok {
		b.mu.Unlock()
		_ = netConn.Close()
		return existing, nil
	}
	b.conns[dst] = c
	b.mu.Unlock()
	return c, nil
}

func trimScheme(uri string) string {
	const scheme = "tcp://"
	if len(uri) >= len(scheme) && uri[:len(scheme)] == scheme {
		return uri[len(scheme):]
	}
	return uri
}
