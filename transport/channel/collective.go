package channel

import "sync"

// roundBarrier is a reusable rendezvous point for one context's sequence of
// collective calls (spec.md §4.5: AllReduce/Reduce/AllGather/Gather/
// Scatter/Broadcast/Barrier all act as a barrier over their context's
// members). Every participating peer calls run once per round, in the same
// relative order as every other peer (guaranteed by the SPMD structure the
// spec assumes); the last arrival computes the combined result for every
// position and wakes the others.
//
// Results are kept per-generation rather than overwritten in place: a slow
// waiter for round g must not observe round g+1's result if a fast peer
// already raced ahead and completed the next round before the slow peer
// woke up. Given the scale this backend is built for (in-process
// simulation and tests, not long-running production traffic), retaining
// every generation's result for the process lifetime is an acceptable
// trade for that race-freedom.
type roundBarrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	size       int
	generation int
	arrived    int
	contribs   [][]int64
	results    map[int][][]int64
}

func newRoundBarrier(size int) *roundBarrier {
	rb := &roundBarrier{size: size, results: make(map[int][][]int64)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// run contributes this peer's value (nil if it has none to offer) at
// position pos and blocks until every peer in the round has contributed,
// then returns the slice combine computed for pos. combine is one of the
// internal/collective functions, partially applied over the round's
// contributions.
func (rb *roundBarrier) run(pos int, contribution []int64, combine func(contribs [][]int64) [][]int64) []int64 {
	rb.mu.Lock()
	gen := rb.generation
	if rb.contribs == nil {
		rb.contribs = make([][]int64, rb.size)
	}
	rb.contribs[pos] = contribution
	rb.arrived++

	if rb.arrived == rb.size {
		rb.results[gen] = combine(rb.contribs)
		rb.arrived = 0
		rb.contribs = nil
		rb.generation++
		rb.cond.Broadcast()
		res := rb.results[gen][pos]
		rb.mu.Unlock()
		return res
	}

	for rb.generation == gen {
		rb.cond.Wait()
	}
	res := rb.results[gen][pos]
	rb.mu.Unlock()
	return res
}
