package graph

import "golang.org/x/xerrors"

var (
	// ErrUnknownVertex is returned when an operation references a
	// VertexID that is not part of the graph.
	ErrUnknownVertex = xerrors.New("vertex is not part of the graph")

	// ErrUnknownEdge is returned when an operation references an EdgeID
	// that is not part of the graph.
	ErrUnknownEdge = xerrors.New("edge is not part of the graph")

	// ErrInvalidDescription is returned by New when a GraphDescription
	// fails the permutation/reference invariants required by spec.md §4.1.
	ErrInvalidDescription = xerrors.New("graph description is invalid")
)
