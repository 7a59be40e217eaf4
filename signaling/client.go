package signaling

import (
	"context"

	"google.golang.org/grpc"

	"github.com/graybat-go/graybat/signaling/signalingpb"
)

// SignalingClient is the client-side stub for the signaling service's four
// RPCs, grounded on the original include/graybat/signaling/GrpcSignalingClient.hpp
// (already gRPC-based).
type SignalingClient interface {
	RequestContext(ctx context.Context, in *signalingpb.RequestContextRequest, opts ...grpc.CallOption) (*signalingpb.RequestContextReply, error)
	RequestVaddr(ctx context.Context, in *signalingpb.RequestVaddrRequest, opts ...grpc.CallOption) (*signalingpb.RequestVaddrReply, error)
	LookupVaddr(ctx context.Context, in *signalingpb.LookupVaddrRequest, opts ...grpc.CallOption) (*signalingpb.LookupVaddrReply, error)
	LeaveContext(ctx context.Context, in *signalingpb.LeaveContextRequest, opts ...grpc.CallOption) (*signalingpb.LeaveContextReply, error)
}

type signalingClient struct {
	cc grpc.ClientConnInterface
}

// NewSignalingClient wraps an established connection (see Dial) with the
// four signaling RPCs.
func NewSignalingClient(cc grpc.ClientConnInterface) SignalingClient {
	return &signalingClient{cc: cc}
}

// Dial connects to a signaling server at addr, blocking until the
// connection is ready (spec.md §5: signaling-service calls are a
// suspension point), and wires in the gob codec every call uses.
func Dial(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	return grpc.DialContext(ctx, addr,
		grpc.WithInsecure(),
		grpc.WithBlock(),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
}

func (c *signalingClient) RequestContext(ctx context.Context, in *signalingpb.RequestContextRequest, opts ...grpc.CallOption) (*signalingpb.RequestContextReply, error) {
	out := new(signalingpb.RequestContextReply)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/RequestContext", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *signalingClient) RequestVaddr(ctx context.Context, in *signalingpb.RequestVaddrRequest, opts ...grpc.CallOption) (*signalingpb.RequestVaddrReply, error) {
	out := new(signalingpb.RequestVaddrReply)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/RequestVaddr", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *signalingClient) LookupVaddr(ctx context.Context, in *signalingpb.LookupVaddrRequest, opts ...grpc.CallOption) (*signalingpb.LookupVaddrReply, error) {
	out := new(signalingpb.LookupVaddrReply)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/LookupVaddr", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *signalingClient) LeaveContext(ctx context.Context, in *signalingpb.LeaveContextRequest, opts ...grpc.CallOption) (*signalingpb.LeaveContextReply, error) {
	out := new(signalingpb.LeaveContextReply)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/LeaveContext", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
