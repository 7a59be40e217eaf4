package threadpool_test

import (
	"sync/atomic"
	"testing"

	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/internal/threadpool"
)

func TestInlinePoolRunsSynchronously(t *testing.T) {
	p := threadpool.New(0)
	defer p.Close()

	var ran int32
	p.Submit(func() { atomic.AddInt32(&ran, 1) })
	if ran != 1 {
		t.Fatalf("expected inline task to have run already, got %d", ran)
	}
}

func TestRunCollectsAllTasksAndFirstError(t *testing.T) {
	p := threadpool.New(4)
	defer p.Close()

	var count int32
	tasks := make([]func() error, 0, 10)
	for i := 0; i < 10; i++ {
		i := i
		tasks = append(tasks, func() error {
			atomic.AddInt32(&count, 1)
			if i == 5 {
				return xerrors.New("boom")
			}
			return nil
		})
	}

	err := threadpool.Run(p, tasks)
	if err == nil {
		t.Fatal("expected an error from task 5")
	}
	if count != 10 {
		t.Fatalf("expected all 10 tasks to run, got %d", count)
	}
}

func TestRunWithNoTasksIsNoop(t *testing.T) {
	p := threadpool.New(2)
	defer p.Close()
	if err := threadpool.Run(p, nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
