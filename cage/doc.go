// Package cage provides the top-level facade over a Graph, a
// transport.Capability and a directory.Directory (spec.md §4.7). A Cage is
// not safe for concurrent use by multiple goroutines, mirroring
// dbspgraph.Master/Worker's single-owner usage in the teacher codebase.
package cage
