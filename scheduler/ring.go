package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/cpu"

	"github.com/notorious-go/rendezvous/rendezvous"
)

// Ring runs N workers arranged in a directed cycle. Worker i wakes worker i+1
// through a Signal, and the last worker wakes worker 0 again, so exactly one
// worker runs at any time and the token circles the ring.
//
// Worker 0 counts oscillations. When the last worker sees that the count reached
// the target of the current Run, it wakes the driver instead of worker 0 and the
// ring goes quiet until the next Run.
//
// A Ring is driven by one goroutine at a time; concurrent Runs are serialized.
// Close may be called from any goroutine.
type Ring struct {
	log  hclog.Logger
	task Task

	// edges[i] wakes worker i.
	edges []*rendezvous.Signal
	// complete wakes the driver blocked in Run.
	complete *rendezvous.Signal

	counter paddedInt64
	target  paddedInt64
	errs    slotErrors

	mu        sync.Mutex // serializes Run
	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// paddedInt64 keeps a hot counter on its own cache line. Every worker of a ring
// reads the counter and the target on each hop.
type paddedInt64 struct {
	_ cpu.CacheLinePad
	v atomic.Int64
	_ cpu.CacheLinePad
}

// NewRing starts n workers, each running task when the token reaches it. A nil
// task is allowed and makes the ring a pure signalling benchmark.
func NewRing(n int, task Task, opts ...Option) (*Ring, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, n)
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if task == nil {
		task = func(int, uint64) error { return nil }
	}

	r := &Ring{
		log:      o.logger.Named("ring"),
		task:     task,
		edges:    make([]*rendezvous.Signal, n),
		complete: rendezvous.NewSignal(),
		errs:     make(slotErrors, n),
	}
	for i := range r.edges {
		r.edges[i] = rendezvous.NewSignal()
	}

	r.log.Debug("starting workers", "workers", n)
	r.wg.Add(n)
	for i := range n {
		go r.work(i, &o)
	}
	return r, nil
}

func (r *Ring) work(slot int, o *options) {
	defer r.wg.Done()
	log := r.log.With("slot", slot)
	defer o.place(slot, log)()
	defer log.Debug("worker exiting")

	last := len(r.edges) - 1
	edge := r.edges[slot]
	next := r.edges[(slot+1)%len(r.edges)]
	for {
		edge.Wait()
		if edge.IsTerminating() {
			return
		}
		if slot == 0 {
			r.counter.v.Add(1)
		}
		r.errs.record(slot, r.task(slot, uint64(r.counter.v.Load())))
		if slot == last && r.counter.v.Load() >= r.target.v.Load() {
			r.complete.Notify()
			continue
		}
		next.Notify()
	}
}

// Run resets the oscillation counter, hands the token to worker 0 and blocks
// until the token went around the ring oscillations times. When Run returns nil,
// Counter equals oscillations.
//
// The returned error combines the task errors of all hops. Run returns ErrClosed
// after Close, and ErrTerminated if Close interrupted it.
func (r *Ring) Run(oscillations int64) error {
	if oscillations < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidRounds, oscillations)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return ErrClosed
	}

	r.counter.v.Store(0)
	r.target.v.Store(oscillations)
	r.edges[0].Notify()
	r.complete.Wait()
	if r.complete.IsTerminating() {
		return ErrTerminated
	}
	return r.errs.collect()
}

// Counter returns the number of oscillations of the current or last Run.
func (r *Ring) Counter() int64 {
	return r.counter.v.Load()
}

// Workers returns N.
func (r *Ring) Workers() int {
	return len(r.edges)
}

// Close terminates every edge of the ring and the completion signal, then waits
// for all workers to exit. A worker woken by termination exits without passing
// the token on, so no worker is left waiting for a successor that is gone.
//
// Close is idempotent and always returns nil.
func (r *Ring) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		r.log.Debug("terminating ring")
		for _, edge := range r.edges {
			edge.Terminate()
		}
		r.complete.Terminate()
		r.wg.Wait()
		r.log.Debug("ring stopped")
	})
	return nil
}
