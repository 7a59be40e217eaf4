// Package channel implements the synchronous, MPI-like transport backend
// from spec.md §4.5 as a process-wide Fabric shared by in-process
// goroutines, each standing in for one peer normally launched by an
// external SPMD launcher (mpirun and friends). Point-to-point messages are
// mailboxes keyed by (context, tag, destination); collectives are
// implemented directly over shared Fabric state as reusable rendezvous
// barriers, matching the "common operations" matrix of spec.md §4.5.
//
// A Fabric is acquired once per process (spec.md §9 "global transport
// state") and shared by every peer/Cage that asks for it with the same
// size; the last release tears it down.
package channel
