// Package transport defines the Capability contract that every GrayBat
// communication backend must satisfy (spec.md §4.5): peer addressing,
// contexts, blocking and non-blocking point-to-point operations, the
// collective operations, and the Event handle used for the latter.
//
// Two concrete backends live in the transport/channel and transport/socket
// subpackages; both implement Capability.
package transport
