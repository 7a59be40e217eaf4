package channel_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/graybat-go/graybat/transport"
	"github.com/graybat-go/graybat/transport/channel"
)

// runPeers acquires a Fabric sized len(fns), spawns one goroutine per
// function with its Backend and VAddr, waits for all of them, and releases
// the Fabric. Any error returned by a peer fails the test.
func runPeers(t *testing.T, fns ...func(t *testing.T, b *channel.Backend, self transport.VAddr) error) {
	t.Helper()

	fab, err := channel.Acquire(len(fns))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer channel.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs *multierror.Error

	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn func(t *testing.T, b *channel.Backend, self transport.VAddr) error) {
			defer wg.Done()
			self := transport.VAddr(i)
			b, err := fab.Peer(self)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				return
			}
			if err := fn(t, b, self); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
		}(i, fn)
	}
	wg.Wait()

	if err := errs.ErrorOrNil(); err != nil {
		t.Fatal(err)
	}
}

func TestSendRecvRoundTrip(t *testing.T) {
	runPeers(t,
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			return b.Send(1, 42, b.GlobalContext(), []byte("hello"))
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			buf := make([]byte, len("hello"))
			status, err := b.Recv(0, 42, b.GlobalContext(), buf)
			if err != nil {
				return err
			}
			if string(buf) != "hello" || status.Source != 0 || status.Tag != 42 {
				t.Fatalf("unexpected recv: %q %+v", buf, status)
			}
			return nil
		},
	)
}

func TestRecvPreservesPerSourceFIFO(t *testing.T) {
	runPeers(t,
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			ctx := b.GlobalContext()
			if err := b.Send(2, 0, ctx, []byte{1}); err != nil {
				return err
			}
			return b.Send(2, 0, ctx, []byte{2})
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			return b.Send(2, 0, b.GlobalContext(), []byte{9})
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			ctx := b.GlobalContext()
			buf := make([]byte, 1)
			if _, err := b.Recv(0, 0, ctx, buf); err != nil {
				return err
			}
			if buf[0] != 1 {
				t.Fatalf("expected first message from peer 0 to be 1, got %d", buf[0])
			}
			if _, err := b.Recv(0, 0, ctx, buf); err != nil {
				return err
			}
			if buf[0] != 2 {
				t.Fatalf("expected second message from peer 0 to be 2, got %d", buf[0])
			}
			_, err := b.Recv(1, 0, ctx, buf)
			return err
		},
	)
}

func TestBarrierSynchronizes(t *testing.T) {
	var mu sync.Mutex
	order := make([]int, 0, 4)
	record := func(i int) {
		mu.Lock()
		order = append(order, i)
		mu.Unlock()
	}

	runPeers(t,
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			record(0)
			return b.Barrier(b.GlobalContext())
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			record(1)
			return b.Barrier(b.GlobalContext())
		},
	)

	if len(order) != 2 {
		t.Fatalf("expected both peers to record, got %v", order)
	}
}

func TestAllReduceSum(t *testing.T) {
	runPeers(t,
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			out := make([]int64, 1)
			if err := b.AllReduce(b.GlobalContext(), transport.SUM, []int64{1}, out); err != nil {
				return err
			}
			if out[0] != 6 {
				t.Fatalf("expected sum 6, got %d", out[0])
			}
			return nil
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			out := make([]int64, 1)
			return b.AllReduce(b.GlobalContext(), transport.SUM, []int64{2}, out)
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			out := make([]int64, 1)
			return b.AllReduce(b.GlobalContext(), transport.SUM, []int64{3}, out)
		},
	)
}

func TestBroadcastFromRoot(t *testing.T) {
	runPeers(t,
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			inout := []int64{7}
			return b.Broadcast(b.GlobalContext(), 0, inout)
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			inout := []int64{0}
			if err := b.Broadcast(b.GlobalContext(), 0, inout); err != nil {
				return err
			}
			if inout[0] != 7 {
				t.Fatalf("expected broadcast value 7, got %d", inout[0])
			}
			return nil
		},
	)
}

func TestCreateContextExcludesNonMembers(t *testing.T) {
	runPeers(t,
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			sub, err := b.CreateContext([]transport.VAddr{0, 1}, b.GlobalContext())
			if err != nil {
				return err
			}
			if !sub.Valid() || sub.Size() != 2 {
				t.Fatalf("expected valid 2-member context, got %+v", sub)
			}
			return nil
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			sub, err := b.CreateContext([]transport.VAddr{0, 1}, b.GlobalContext())
			if err != nil {
				return err
			}
			if !sub.Valid() {
				t.Fatal("expected peer 1 to be a member")
			}
			return nil
		},
		func(t *testing.T, b *channel.Backend, self transport.VAddr) error {
			sub, err := b.CreateContext([]transport.VAddr{0, 1}, b.GlobalContext())
			if err != nil {
				return err
			}
			if sub.Valid() {
				t.Fatal("expected peer 2 to be excluded")
			}
			return nil
		},
	)
}
