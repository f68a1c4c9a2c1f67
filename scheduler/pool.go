package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/notorious-go/rendezvous/rendezvous"
)

// Pool is a persistent pool of N workers driven one round at a time.
//
// Every worker waits on its slot of a FanOut. Advance notifies the FanOut, which
// releases all workers at once, and then waits on a FanIn that completes when
// each worker reported the end of its round. No goroutine is created per round.
//
// A phased Pool, built by NewPhasedPool, splits the round of every worker into
// phases with a Barrier between consecutive phases, so no worker starts a phase
// before all workers finished the previous one.
//
// A Pool is driven by one goroutine at a time; concurrent Advances are
// serialized. Close may be called from any goroutine.
type Pool struct {
	log    hclog.Logger
	phases []Task
	repeat int

	start   *rendezvous.FanOut
	barrier *rendezvous.Barrier // nil unless there are several phase steps
	done    *rendezvous.FanIn

	// round is written by the driver before it notifies start and read by the
	// workers after they were released.
	round uint64
	errs  slotErrors

	mu        sync.Mutex // serializes Advance
	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool starts n workers that run task once per round.
func NewPool(n int, task Task, opts ...Option) (*Pool, error) {
	return newPool(n, 1, []Task{task}, opts)
}

// NewPhasedPool starts n workers whose round is repeat passes over phases. Between
// any two consecutive phase steps every worker arrives at a shared Barrier, so in
// a round of k steps there are k-1 rendezvous and the last step runs straight
// into the end-of-round report.
//
// The classic two-phase round with one barrier in the middle is
//
//	NewPhasedPool(n, 1, []Task{first, second})
func NewPhasedPool(n, repeat int, phases []Task, opts ...Option) (*Pool, error) {
	return newPool(n, repeat, phases, opts)
}

func newPool(n, repeat int, phases []Task, opts []Option) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, n)
	}
	if repeat < 1 {
		return nil, fmt.Errorf("%w: repeat %d", ErrInvalidRounds, repeat)
	}
	if len(phases) == 0 {
		return nil, ErrNoPhases
	}
	for _, phase := range phases {
		if phase == nil {
			return nil, ErrNoPhases
		}
	}
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		log:    o.logger.Named("pool"),
		phases: phases,
		repeat: repeat,
		start:  rendezvous.NewFanOut(n),
		done:   rendezvous.NewFanIn(n),
		errs:   make(slotErrors, n),
	}
	if p.steps() > 1 {
		p.barrier = rendezvous.NewBarrier(n, rendezvous.WithStrategy(o.strategy))
	}

	p.log.Debug("starting workers", "workers", n, "phases", len(phases), "repeat", repeat, "barrier", p.barrier != nil)
	p.wg.Add(n)
	for i := range n {
		go p.work(i, &o)
	}
	return p, nil
}

func (p *Pool) steps() int {
	return p.repeat * len(p.phases)
}

func (p *Pool) work(slot int, o *options) {
	defer p.wg.Done()
	log := p.log.With("slot", slot)
	defer o.place(slot, log)()
	defer log.Debug("worker exiting")

	for {
		p.start.Wait(slot)
		if p.start.IsTerminating() {
			return
		}
		if !p.runRound(slot, p.round) {
			return
		}
		p.done.Notify()
		if p.done.IsTerminating() {
			return
		}
	}
}

// runRound runs every phase step of one round. It reports false if the barrier
// was terminated, in which case the worker must exit.
func (p *Pool) runRound(slot int, round uint64) bool {
	for step := range p.steps() {
		if step > 0 {
			p.barrier.Arrive(slot)
			if p.barrier.IsTerminating() {
				return false
			}
		}
		p.errs.record(slot, p.phases[step%len(p.phases)](slot, round))
	}
	return true
}

// Advance runs one round: it releases every worker and blocks until all of them
// reported completion. The returned error combines the task errors of the round.
//
// Advance returns ErrClosed after Close, and ErrTerminated if Close interrupted
// the round.
func (p *Pool) Advance() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed.Load() {
		return ErrClosed
	}

	p.round++
	p.start.Notify()
	p.done.Wait()
	if p.done.IsTerminating() {
		return ErrTerminated
	}
	return p.errs.collect()
}

// Rounds returns the number of completed rounds.
func (p *Pool) Rounds() uint64 {
	return p.done.Generation()
}

// Workers returns N.
func (p *Pool) Workers() int {
	return p.start.Slots()
}

// Close shuts the pool down and waits for every worker to exit. The primitives
// are terminated in the order a worker meets them in a round: the fan-out, the
// barrier, then the fan-in. Whichever of them a worker is blocked in, it wakes
// up and exits.
//
// Close is idempotent and always returns nil.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.log.Debug("terminating pool")
		p.start.Terminate()
		if p.barrier != nil {
			p.barrier.Terminate()
		}
		p.done.Terminate()
		p.wg.Wait()
		p.log.Debug("pool stopped")
	})
	return nil
}
