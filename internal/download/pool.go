package download

import (
	"golang.org/x/sync/errgroup"
)

// Pool is a fixed-size set of workers.
//
// A Pool is created by its owner, handed to Engine.DownloadAll and joined
// with Wait. Go blocks while all workers are busy, so each worker finishes
// one job before it takes the next.
type Pool struct {
	g    errgroup.Group
	size int
}

// NewPool creates a pool with size workers. Sizes below 1 are raised to 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{size: size}
	p.g.SetLimit(size)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Go runs job on the next free worker, blocking until one is free.
func (p *Pool) Go(job func()) {
	p.g.Go(func() error {
		job()
		return nil
	})
}

// Wait blocks until every submitted job has returned.
func (p *Pool) Wait() {
	_ = p.g.Wait()
}
