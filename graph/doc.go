// Package graph implements the immutable, dense-integer-keyed directed
// multigraph that GrayBat's virtual overlay network is built on top of.
//
// A Graph is constructed once from a GraphDescription and never mutated
// afterwards; Vertex and Edge values are lightweight, value-like views
// backed by the Graph that produced them.
package graph
