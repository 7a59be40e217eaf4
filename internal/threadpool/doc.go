// Package threadpool provides a small fixed-size worker pool used by the
// socket transport backend (to bound how many AsyncSend/AsyncRecv operations
// run concurrently) and by
// the Cage facade (to fan out the per-edge sends/receives a Spread/Collect
// call lowers to). It is grounded on bspgraph.Graph's vertexCh/stepWorker
// idiom: a channel of work items consumed by a fixed set of goroutines, with
// a buffered error channel retaining only the first failure of a round.
package threadpool
