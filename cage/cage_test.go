package cage_test

import (
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/cage"
	"github.com/graybat-go/graybat/graph"
	"github.com/graybat-go/graybat/mapping"
	"github.com/graybat-go/graybat/pattern"
	"github.com/graybat-go/graybat/transport"
	"github.com/graybat-go/graybat/transport/channel"
)

// runCages acquires a Fabric sized len(fns), builds one Cage per peer over
// a Ring(peers) graph distributed via mapping.Consecutive, hands each peer
// its Cage, and joins/cleans everything up afterwards.
func runCages(t *testing.T, fns ...func(t *testing.T, c *cage.Cage, self transport.VAddr) error) {
	t.Helper()
	peers := len(fns)

	fab, err := channel.Acquire(peers)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer channel.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs *multierror.Error

	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn func(t *testing.T, c *cage.Cage, self transport.VAddr) error) {
			defer wg.Done()
			self := transport.VAddr(i)

			b, err := fab.Peer(self)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				return
			}

			desc := pattern.Ring(peers)
			c, err := cage.New(cage.CageConfig{Description: &desc, Transport: b})
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				return
			}
			defer c.Close()

			if err := c.Distribute(mapping.Consecutive); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				return
			}

			if err := fn(t, c, self); err != nil {
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

func TestDistributeAssignsDisjointHostedVertices(t *testing.T) {
	runCages(t,
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error {
			hosted := c.HostedVertices()
			if len(hosted) == 0 {
				t.Fatalf("peer %d hosts no vertices", self)
			}
			for _, v := range hosted {
				if v.ID != graph.VertexID(2*int(self)) && v.ID != graph.VertexID(2*int(self)+1) {
					t.Fatalf("peer %d unexpectedly hosts vertex %d", self, v.ID)
				}
			}
			return nil
		},
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error { return nil },
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error { return nil },
	)
}

func TestSendRecvOverRingEdge(t *testing.T) {
	runCages(t,
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error {
			e, ok := c.Edge(0, 1)
			if !ok {
				t.Fatal("expected edge 0->1 in a ring")
			}
			return c.Send(e, "hello")
		},
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error {
			e, ok := c.Edge(0, 1)
			if !ok {
				t.Fatal("expected edge 0->1 in a ring")
			}
			var got string
			if err := c.Recv(e, &got); err != nil {
				return err
			}
			if got != "hello" {
				t.Fatalf("expected %q, got %q", "hello", got)
			}
			return nil
		},
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error { return nil },
	)
}

func TestSpreadAndCollectOverInStar(t *testing.T) {
	const peers = 3
	fab, err := channel.Acquire(peers)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer channel.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs *multierror.Error
	var sum int

	for i := 0; i < peers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := fab.Peer(transport.VAddr(i))
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				return
			}

			desc := pattern.InStar(peers)
			c, err := cage.New(cage.CageConfig{Description: &desc, Transport: b})
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				return
			}
			defer c.Close()

			if err := c.Distribute(mapping.Consecutive); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				return
			}

			if i == 0 {
				outs := make([]interface{}, peers-1)
				vals := make([]int, peers-1)
				for j := range outs {
					outs[j] = &vals[j]
				}
				if err := c.Collect(0, outs); err != nil {
					mu.Lock()
					errs = multierror.Append(errs, err)
					mu.Unlock()
					return
				}
				mu.Lock()
				for _, v := range vals {
					sum += v
				}
				mu.Unlock()
				return
			}

			_, ok := c.Edge(graph.VertexID(i), 0)
			if !ok {
				mu.Lock()
				errs = multierror.Append(errs, xerrors.New("expected leaf->hub edge"))
				mu.Unlock()
				return
			}
			if err := c.Spread(graph.VertexID(i), i); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if err := errs.ErrorOrNil(); err != nil {
		t.Fatal(err)
	}
	if sum != 1+2 {
		t.Fatalf("expected collected sum 3, got %d", sum)
	}
}

func TestGraphScopedBarrier(t *testing.T) {
	runCages(t,
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error { return c.Barrier() },
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error { return c.Barrier() },
		func(t *testing.T, c *cage.Cage, self transport.VAddr) error { return c.Barrier() },
	)
}
