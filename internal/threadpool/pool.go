package threadpool

import "sync/atomic"

// Pool runs work items on a fixed number of goroutines. A zero-size Pool
// runs every item inline on the caller's goroutine instead of spinning up
// workers, which lets callers treat "no pooling configured" and "a pool of
// one" uniformly.
type Pool struct {
	size int
	work chan func()
	done chan struct{}
}

// New returns a Pool of size worker goroutines. size <= 0 yields a Pool
// that runs every submitted task inline.
func New(size int) *Pool {
	p := &Pool{size: size}
	if size <= 0 {
		return p
	}
	p.work = make(chan func())
	p.done = make(chan struct{})
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Size returns the number of worker goroutines; 0 means tasks run inline.
func (p *Pool) Size() int { return p.size }

func (p *Pool) worker() {
	for fn := range p.work {
		fn()
	}
}

// Submit runs fn, either inline or on a pool worker, and returns once fn
// has been accepted (not necessarily completed) for execution.
func (p *Pool) Submit(fn func()) {
	if p.size <= 0 {
		fn()
		return
	}
	p.work <- fn
}

// Close shuts down the pool's workers. Safe to call on an inline (size-0)
// Pool as a no-op.
func (p *Pool) Close() {
	if p.size <= 0 {
		return
	}
	close(p.work)
}

// Run submits every task to the pool and blocks until all of them have
// completed, returning the first non-nil error any of them produced
// (matching bspgraph.Graph.step's single-error-per-round behavior).
func Run(p *Pool, tasks []func() error) error {
	if len(tasks) == 0 {
		return nil
	}

	errCh := make(chan error, 1)
	var pending int64 = int64(len(tasks))
	doneCh := make(chan struct{})

	for _, task := range tasks {
		task := task
		p.Submit(func() {
			if err := task(); err != nil {
				tryEmitError(errCh, err)
			}
			if atomic.AddInt64(&pending, -1) == 0 {
				close(doneCh)
			}
		})
	}

	<-doneCh
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func tryEmitError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}
