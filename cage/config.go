package cage

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/graph"
	"github.com/graybat-go/graybat/serialize"
	"github.com/graybat-go/graybat/transport"
)

// CageConfig configures a Cage. Exactly one of Graph or Description must be
// set: Graph for an already-built graph, Description for one a Pattern
// produced that the Cage should build itself (spec.md §4.7 "Constructed
// with either (a) an already-built Graph or (b) a Pattern").
type CageConfig struct {
	// Graph is a pre-built graph to use as-is.
	Graph *graph.Graph

	// Description is built into a graph via graph.New when Graph is nil.
	Description *graph.GraphDescription

	// GraphID identifies the graph built from Description. Ignored when
	// Graph is set (the graph's own ID is used instead).
	GraphID graph.GraphID

	// Transport is the backend the Cage sends, receives and runs
	// collectives over. Required.
	Transport transport.Capability

	// Serializer converts edge payloads to and from wire bytes. Defaults
	// to serialize.Forward.
	Serializer serialize.Policy

	// WorkerPoolSize bounds the number of goroutines Spread/Collect use to
	// fan out per-edge operations. 0 (the default) runs them inline on
	// the calling goroutine, one after another (spec.md §5).
	WorkerPoolSize int
}

// validate checks whether a configuration is usable and fills in defaults,
// following bspgraph.GraphConfig.validate's pattern of collecting every
// problem via multierror before returning.
func (c *CageConfig) validate() error {
	var err error

	if c.Transport == nil {
		err = multierror.Append(err, xerrors.New("transport capability not specified"))
	}
	if c.Graph == nil && c.Description == nil {
		err = multierror.Append(err, xerrors.New("neither a graph nor a graph description was specified"))
	}
	if c.Serializer == nil {
		c.Serializer = serialize.Forward{}
	}
	if c.WorkerPoolSize < 0 {
		c.WorkerPoolSize = 0
	}

	return err
}
