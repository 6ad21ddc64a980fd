// Package parallel runs batch work items on a fixed set of workers.
package parallel

import (
	"runtime"
	"sync"
)

// Pool feeds submitted work to its workers. With a single worker the
// pool degenerates to running work inline on the caller.
type Pool struct {
	wg   sync.WaitGroup
	work chan func()
	stop func()
}

// Start launches a pool. A count below one uses one worker per
// available CPU.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{}
	if numWorkers == 1 {
		return p
	}

	p.work = make(chan func(), numWorkers)
	p.stop = sync.OnceFunc(func() { close(p.work) })
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for f := range p.work {
				f()
			}
		}()
	}
	return p
}

// Do submits one work item.
func (p *Pool) Do(f func()) {
	if p.work == nil {
		f()
		return
	}
	p.work <- f
}

// Wait blocks until all submitted work has run. When done is true no
// further work may be submitted afterwards.
func (p *Pool) Wait(done bool) {
	if p.work == nil {
		return
	}
	if done {
		p.Cancel()
	}
	p.wg.Wait()
}

// Cancel stops the workers once the queue drains. Idempotent.
func (p *Pool) Cancel() {
	if p.stop != nil {
		p.stop()
	}
}
