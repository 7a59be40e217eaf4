// Package socket implements the asynchronous, socket-based transport
// backend (spec.md "Asynchronous socket backend"): peers are separate OS
// processes that discover one another through the external signaling
// service (the signaling package) and exchange framed TCP messages
// matching spec.md §6's wire format: [MsgType, srcVAddr, dstVAddr,
// contextID, tag, payload]. Collectives are layered on top of ordinary
// point-to-point Send/Recv against a coordinator peer (the root for rooted
// collectives, otherwise the first VAddr of the context), the way a star-topology MPI implementation builds
// collectives out of send/recv rather than a dedicated wire message per
// operation.
package socket
