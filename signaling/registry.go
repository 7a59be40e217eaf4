package signaling

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/signaling/signalingpb"
)

// registry implements SignalingServer. It tracks named contexts in memory
// (spec.md §6 "Persisted state: None") and blocks RequestContext calls
// until the declared number of peers have joined, using the same
// mutex-plus-notify-channel rendezvous idiom as
// dbspgraph.workerPool.ReserveWorkers.
type registry struct {
	logger  *logrus.Entry
	metrics *metrics

	mu        sync.Mutex
	changedCh chan struct{}
	nextID    int64
	byName    map[string]*namedContext
	byID      map[int64]*namedContext
}

type namedContext struct {
	id           int64
	expectedSize int32
	joined       int32
	peers        map[int32]string
	nextVaddr    int32
}

func newRegistry(logger *logrus.Entry, m *metrics) *registry {
	return &registry{
		logger:    logger,
		metrics:   m,
		changedCh: make(chan struct{}, 1),
		byName:    make(map[string]*namedContext),
		byID:      make(map[int64]*namedContext),
	}
}

// notify wakes every goroutine waiting on the current changedCh by closing
// it and installing a fresh one. It must be called with r.mu held.
func (r *registry) notify() {
	close(r.changedCh)
	r.changedCh = make(chan struct{})
}

// RequestContext implements SignalingServer.
func (r *registry) RequestContext(ctx context.Context, req *signalingpb.RequestContextRequest) (*signalingpb.RequestContextReply, error) {
	r.mu.Lock()
	nc, ok := r.byName[req.ContextName]
	if !ok {
		r.nextID++
		nc = &namedContext{
			id:           r.nextID,
			expectedSize: req.ExpectedSize,
			peers:        make(map[int32]string),
		}
		r.byName[req.ContextName] = nc
		r.byID[nc.id] = nc
	}
	nc.joined++
	if nc.joined == nc.expectedSize {
		r.metrics.contextsRegistered.Inc()
	}
	r.notify()
	r.mu.Unlock()

	for {
		r.mu.Lock()
		ready := nc.joined >= nc.expectedSize
		id := nc.id
		changed := r.changedCh
		r.mu.Unlock()
		if ready {
			r.logger.WithFields(logrus.Fields{"context_name": req.ContextName, "context_id": id}).Info("context fully registered")
			return &signalingpb.RequestContextReply{ContextID: id, Success: true}, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, xerrors.Errorf("waiting for context %q to fill: %w", req.ContextName, ctx.Err())
		}
	}
}

// RequestVaddr implements SignalingServer.
func (r *registry) RequestVaddr(_ context.Context, req *signalingpb.RequestVaddrRequest) (*signalingpb.RequestVaddrReply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nc, ok := r.byID[req.ContextID]
	if !ok {
		return nil, xerrors.Errorf("unknown context %d: %w", req.ContextID, errs.ProtocolError)
	}
	vaddr := nc.nextVaddr
	nc.nextVaddr++
	nc.peers[vaddr] = req.PeerURI
	r.metrics.vaddrsAssigned.Inc()
	r.logger.WithFields(logrus.Fields{"context_id": req.ContextID, "vaddr": vaddr, "peer_uri": req.PeerURI}).Debug("assigned vaddr")
	return &signalingpb.RequestVaddrReply{Vaddr: vaddr, Success: true}, nil
}

// LookupVaddr implements SignalingServer.
func (r *registry) LookupVaddr(_ context.Context, req *signalingpb.LookupVaddrRequest) (*signalingpb.LookupVaddrReply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nc, ok := r.byID[req.ContextID]
	if !ok {
		return &signalingpb.LookupVaddrReply{Success: false}, nil
	}
	uri, ok := nc.peers[req.Vaddr]
	if !ok {
		return &signalingpb.LookupVaddrReply{Success: false}, nil
	}
	return &signalingpb.LookupVaddrReply{URI: uri, Success: true}, nil
}

// LeaveContext implements SignalingServer.
func (r *registry) LeaveContext(_ context.Context, req *signalingpb.LeaveContextRequest) (*signalingpb.LeaveContextReply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nc, ok := r.byID[req.ContextID]
	if !ok {
		return &signalingpb.LeaveContextReply{Success: false}, nil
	}
	delete(nc.peers, req.Vaddr)
	return &signalingpb.LeaveContextReply{Success: true}, nil
}
