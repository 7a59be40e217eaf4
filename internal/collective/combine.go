// Package collective holds the pure combining functions shared by every
// transport backend's collective operations (spec.md §4.5): given one
// contribution per position, compute the per-position result. Backends
// differ only in how contributions are gathered and results distributed
// (shared memory for transport/channel, point-to-point messages to a
// coordinator for transport/socket); the arithmetic itself is identical.
package collective

import "github.com/graybat-go/graybat/transport"

// AllReduce folds every contribution with op and returns the identical
// reduced vector for every position.
func AllReduce(op transport.ReduceOp, contribs [][]int64) [][]int64 {
	width := len(contribs[0])
	acc := make([]int64, width)
	copy(acc, contribs[0])
	for _, c := range contribs[1:] {
		for i := range acc {
			acc[i] = op.Apply(acc[i], c[i])
		}
	}
	out := make([][]int64, len(contribs))
	for i := range out {
		out[i] = acc
	}
	return out
}

// Reduce is AllReduce restricted to deliver its result to rootPos only;
// every other position receives nil.
func Reduce(op transport.ReduceOp, rootPos int, contribs [][]int64) [][]int64 {
	reduced := AllReduce(op, contribs)
	out := make([][]int64, len(contribs))
	out[rootPos] = reduced[rootPos]
	return out
}

// AllGather concatenates every position's contribution, in position order,
// and delivers the same concatenation to every position.
func AllGather(contribs [][]int64) [][]int64 {
	var cat []int64
	for _, c := range contribs {
		cat = append(cat, c...)
	}
	out := make([][]int64, len(contribs))
	for i := range out {
		out[i] = cat
	}
	return out
}

// Gather is AllGather restricted to rootPos only.
func Gather(rootPos int, contribs [][]int64) [][]int64 {
	cat := AllGather(contribs)
	out := make([][]int64, len(contribs))
	out[rootPos] = cat[rootPos]
	return out
}

// Scatter splits rootPos's contribution into len(contribs) equal chunks
// and delivers chunk i to position i.
func Scatter(rootPos int, contribs [][]int64) [][]int64 {
	whole := contribs[rootPos]
	n := len(contribs)
	chunk := len(whole) / n
	out := make([][]int64, n)
	for i := 0; i < n; i++ {
		out[i] = append([]int64(nil), whole[i*chunk:(i+1)*chunk]...)
	}
	return out
}

// Broadcast delivers rootPos's contribution, unchanged, to every position.
func Broadcast(rootPos int, contribs [][]int64) [][]int64 {
	val := contribs[rootPos]
	out := make([][]int64, len(contribs))
	for i := range out {
		out[i] = val
	}
	return out
}

// Barrier carries no data; every position receives nil once every peer has
// arrived.
func Barrier(contribs [][]int64) [][]int64 {
	return make([][]int64, len(contribs))
}
