package socket_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/graybat-go/graybat/signaling"
	"github.com/graybat-go/graybat/transport"
	"github.com/graybat-go/graybat/transport/socket"
)

// startSignalingServer starts a signaling server on an ephemeral loopback
// port and returns its address, cleaning it up via t.Cleanup.
func startSignalingServer(t *testing.T) string {
	t.Helper()
	srv := signaling.NewServer(signaling.ServerConfig{IP: "127.0.0.1", Port: 0})
	if err := srv.Start(); err != nil {
		t.Fatalf("signaling.Server.Start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv.Addr()
}

// runPeers connects len(fns) socket backends against a shared named
// context on a freshly started signaling server, runs each fn concurrently,
// and closes every backend afterwards.
func runPeers(t *testing.T, contextName string, fns ...func(t *testing.T, b *socket.Backend) error) {
	t.Helper()
	addr := startSignalingServer(t)
	peers := len(fns)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs *multierror.Error

	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn func(t *testing.T, b *socket.Backend) error) {
			defer wg.Done()
			b, err := socket.Connect(context.Background(), socket.Config{
				SignalingAddr: addr,
				ListenAddr:    "127.0.0.1:0",
				ContextName:   contextName,
				ContextSize:   peers,
			})
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("peer %d connect: %w", i, err))
				mu.Unlock()
				return
			}
			defer b.Close()

			if err := fn(t, b); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("peer %d: %w", i, err))
				mu.Unlock()
			}
		}(i, fn)
	}
	wg.Wait()

	if err := errs.ErrorOrNil(); err != nil {
		t.Fatal(err)
	}
}

func TestSocketSendRecvRoundTrip(t *testing.T) {
	// VAddrs are assigned in RequestVaddr arrival order, so each peer picks
	// its role from its own VAddr rather than from its position in fns.
	sendOrRecv := func(t *testing.T, b *socket.Backend) error {
		if b.GlobalContext().Self() == 0 {
			return b.Send(1, 42, b.GlobalContext(), []byte("hello"))
		}
		buf := make([]byte, len("hello"))
		status, err := b.Recv(0, 42, b.GlobalContext(), buf)
		if err != nil {
			return err
		}
		if string(buf) != "hello" || status.Source != 0 || status.Tag != 42 {
			return fmt.Errorf("unexpected recv: %q %+v", buf, status)
		}
		return nil
	}
	runPeers(t, "send-recv", sendOrRecv, sendOrRecv)
}

func TestSocketAsyncSendRecvOverPooledWorkers(t *testing.T) {
	addr := startSignalingServer(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs *multierror.Error
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := socket.Connect(context.Background(), socket.Config{
				SignalingAddr: addr,
				ListenAddr:    "127.0.0.1:0",
				ContextName:   "async-pooled",
				ContextSize:   2,
				PoolSize:      2,
			})
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("peer %d connect: %w", i, err))
				mu.Unlock()
				return
			}
			defer b.Close()

			if b.GlobalContext().Self() == 0 {
				ev, err := b.AsyncSend(1, 99, b.GlobalContext(), []byte("async"))
				if err != nil {
					mu.Lock()
					errs = multierror.Append(errs, fmt.Errorf("peer 0 async send: %w", err))
					mu.Unlock()
					return
				}
				if _, err := ev.Wait(); err != nil {
					mu.Lock()
					errs = multierror.Append(errs, fmt.Errorf("peer 0 async send wait: %w", err))
					mu.Unlock()
				}
				return
			}
			buf := make([]byte, len("async"))
			ev, err := b.AsyncRecv(0, 99, b.GlobalContext(), buf)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("peer 1 async recv: %w", err))
				mu.Unlock()
				return
			}
			if _, err := ev.Wait(); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("peer 1 async recv wait: %w", err))
				mu.Unlock()
				return
			}
			if string(buf) != "async" {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("expected %q, got %q", "async", buf))
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if err := errs.ErrorOrNil(); err != nil {
		t.Fatal(err)
	}
}

func TestSocketBarrierSynchronizes(t *testing.T) {
	runPeers(t, "barrier",
		func(t *testing.T, b *socket.Backend) error { return b.Barrier(b.GlobalContext()) },
		func(t *testing.T, b *socket.Backend) error { return b.Barrier(b.GlobalContext()) },
		func(t *testing.T, b *socket.Backend) error { return b.Barrier(b.GlobalContext()) },
	)
}

func TestSocketAllReduceSum(t *testing.T) {
	runPeers(t, "allreduce",
		func(t *testing.T, b *socket.Backend) error {
			out := make([]int64, 1)
			if err := b.AllReduce(b.GlobalContext(), transport.SUM, []int64{1}, out); err != nil {
				return err
			}
			if out[0] != 6 {
				return fmt.Errorf("expected sum 6, got %d", out[0])
			}
			return nil
		},
		func(t *testing.T, b *socket.Backend) error {
			out := make([]int64, 1)
			return b.AllReduce(b.GlobalContext(), transport.SUM, []int64{2}, out)
		},
		func(t *testing.T, b *socket.Backend) error {
			out := make([]int64, 1)
			return b.AllReduce(b.GlobalContext(), transport.SUM, []int64{3}, out)
		},
	)
}

func TestSocketBroadcastFromRoot(t *testing.T) {
	// Whichever peer was assigned VAddr 0 holds the root value.
	runPeers(t, "broadcast",
		func(t *testing.T, b *socket.Backend) error {
			inout := []int64{0}
			if b.GlobalContext().Self() == 0 {
				inout[0] = 7
			}
			return b.Broadcast(b.GlobalContext(), 0, inout)
		},
		func(t *testing.T, b *socket.Backend) error {
			inout := []int64{0}
			if b.GlobalContext().Self() == 0 {
				inout[0] = 7
			}
			if err := b.Broadcast(b.GlobalContext(), 0, inout); err != nil {
				return err
			}
			if inout[0] != 7 {
				return fmt.Errorf("expected broadcast value 7, got %d", inout[0])
			}
			return nil
		},
	)
}

func TestSocketAllReduceFuncSum(t *testing.T) {
	sum := func(a, b []byte) []byte { return []byte{a[0] + b[0]} }
	runPeers(t, "allreducefunc",
		func(t *testing.T, b *socket.Backend) error {
			var out []byte
			if err := b.AllReduceFunc(b.GlobalContext(), sum, []byte{1}, &out); err != nil {
				return err
			}
			if len(out) != 1 || out[0] != 6 {
				return fmt.Errorf("expected custom-reduce sum 6, got %v", out)
			}
			return nil
		},
		func(t *testing.T, b *socket.Backend) error {
			var out []byte
			return b.AllReduceFunc(b.GlobalContext(), sum, []byte{2}, &out)
		},
		func(t *testing.T, b *socket.Backend) error {
			var out []byte
			return b.AllReduceFunc(b.GlobalContext(), sum, []byte{3}, &out)
		},
	)
}

func TestSocketCreateContextExcludesNonMembers(t *testing.T) {
	runPeers(t, "create-context",
		func(t *testing.T, b *socket.Backend) error {
			sub, err := b.CreateContext([]transport.VAddr{0, 1}, b.GlobalContext())
			if err != nil {
				return err
			}
			if b.GlobalContext().Self() < 2 && !sub.Valid() {
				return fmt.Errorf("expected peer %d to be a member", b.GlobalContext().Self())
			}
			if b.GlobalContext().Self() == 2 && sub.Valid() {
				return fmt.Errorf("expected peer 2 to be excluded")
			}
			return nil
		},
		func(t *testing.T, b *socket.Backend) error {
			_, err := b.CreateContext([]transport.VAddr{0, 1}, b.GlobalContext())
			return err
		},
		func(t *testing.T, b *socket.Backend) error {
			_, err := b.CreateContext([]transport.VAddr{0, 1}, b.GlobalContext())
			return err
		},
	)
}
