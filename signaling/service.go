package signaling

import (
	"context"

	"google.golang.org/grpc"

	"github.com/graybat-go/graybat/signaling/signalingpb"
)

// SignalingServer is implemented by the signaling service's business logic
// (registry) and registered against a grpc.Server via RegisterSignalingServer.
type SignalingServer interface {
	RequestContext(context.Context, *signalingpb.RequestContextRequest) (*signalingpb.RequestContextReply, error)
	RequestVaddr(context.Context, *signalingpb.RequestVaddrRequest) (*signalingpb.RequestVaddrReply, error)
	LookupVaddr(context.Context, *signalingpb.LookupVaddrRequest) (*signalingpb.LookupVaddrReply, error)
	LeaveContext(context.Context, *signalingpb.LeaveContextRequest) (*signalingpb.LeaveContextReply, error)
}

// RegisterSignalingServer registers srv's four RPCs on gSrv.
func RegisterSignalingServer(gSrv *grpc.Server, srv SignalingServer) {
	gSrv.RegisterService(&signalingServiceDesc, srv)
}

const serviceName = "graybat.signaling.Signaling"

var signalingServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SignalingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RequestContext", Handler: requestContextHandler},
		{MethodName: "RequestVaddr", Handler: requestVaddrHandler},
		{MethodName: "LookupVaddr", Handler: lookupVaddrHandler},
		{MethodName: "LeaveContext", Handler: leaveContextHandler},
	},
	Metadata: "graybat/signaling.proto",
}

func requestContextHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(signalingpb.RequestContextRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignalingServer).RequestContext(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/RequestContext"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SignalingServer).RequestContext(ctx, req.(*signalingpb.RequestContextRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func requestVaddrHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(signalingpb.RequestVaddrRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignalingServer).RequestVaddr(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/RequestVaddr"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SignalingServer).RequestVaddr(ctx, req.(*signalingpb.RequestVaddrRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func lookupVaddrHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(signalingpb.LookupVaddrRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignalingServer).LookupVaddr(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/LookupVaddr"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SignalingServer).LookupVaddr(ctx, req.(*signalingpb.LookupVaddrRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func leaveContextHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(signalingpb.LeaveContextRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignalingServer).LeaveContext(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/LeaveContext"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SignalingServer).LeaveContext(ctx, req.(*signalingpb.LeaveContextRequest))
	}
	return interceptor(ctx, in, info, handler)
}
