// Package signalingpb defines the wire messages of the four signaling RPCs
// (spec.md §6), tracking the shape of the original GrpcSignalingTypes. No
// .proto source ships with the retrieved example pack, so these are plain
// Go structs carried over gRPC via a gob-based codec (see signaling.codec)
// instead of generated protobuf marshaling code.
package signalingpb

// RequestContextRequest registers the calling peer's interest in a named
// context of a declared size.
type RequestContextRequest struct {
	ContextName  string
	ExpectedSize int32
}

// RequestContextReply carries the context's assigned ID once it has been
// (conceptually) blocked on until ExpectedSize peers requested it.
type RequestContextReply struct {
	ContextID int64
	Success   bool
}

// RequestVaddrRequest asks for a dense VAddr within an already-registered
// context and records the calling peer's own URI for later lookups.
type RequestVaddrRequest struct {
	ContextID int64
	PeerURI   string
}

// RequestVaddrReply carries the assigned VAddr.
type RequestVaddrReply struct {
	Vaddr   int32
	Success bool
}

// LookupVaddrRequest asks for the URI a given VAddr registered in a
// context.
type LookupVaddrRequest struct {
	ContextID int64
	Vaddr     int32
}

// LookupVaddrReply carries the looked-up peer's URI.
type LookupVaddrReply struct {
	URI     string
	Success bool
}

// LeaveContextRequest deregisters a VAddr from a context.
type LeaveContextRequest struct {
	ContextID int64
	Vaddr     int32
}

// LeaveContextReply acknowledges deregistration.
type LeaveContextReply struct {
	Success bool
}
