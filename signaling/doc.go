// Package signaling implements the external signaling service used by the
// socket transport backend to let peers discover one another (spec.md §6):
// four gRPC RPCs (RequestContext, RequestVaddr, LookupVaddr, LeaveContext)
// served by an in-memory registry, grounded on the original
// include/graybat/signaling/GrpcSignalingClient.hpp and on the teacher's
// dbspgraph.Master gRPC bootstrap idiom.
package signaling
