// Package mapping provides the pure vertex-to-peer assignment functions
// required by spec.md §4.3. Each Mapping, called identically on every peer
// (differing only in peerID), must produce a disjoint cover of the graph's
// vertices across the union of all peers.
package mapping
