// Package directory implements the GVON name/directory service (spec.md
// §4.6): the collective announce protocol that turns each peer's locally
// hosted vertices into a process-wide vertex-to-peer mapping, plus the
// lookup tables built from it. It is a direct port of the original
// include/NameService.hpp's padded round-robin announce (AllReduce MAX
// followed by AllGather per round, padding absent vertices with -1) onto
// the transport.Capability interface.
package directory
