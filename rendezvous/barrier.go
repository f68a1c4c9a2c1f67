package rendezvous

import (
	"fmt"
	"sync"
)

// Strategy selects how a Barrier realizes its rendezvous. Both strategies honour
// the same contract and can be swapped without changing callers.
type Strategy int

const (
	// Symmetric makes every participant both notifier and waiter on one shared
	// counter. Each participant takes the barrier's lock once per round.
	Symmetric Strategy = iota

	// Chained routes arrivals through an internal FanIn whose last arrival
	// notifies an internal FanOut, on which every participant then waits. It takes
	// two locks per participant per round.
	Chained
)

func (s Strategy) String() string {
	switch s {
	case Symmetric:
		return "symmetric"
	case Chained:
		return "chained"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// A BarrierOption configures a Barrier.
type BarrierOption func(*barrierOptions)

type barrierOptions struct {
	strategy Strategy
}

// WithStrategy selects the Barrier realization. The default is Symmetric.
func WithStrategy(s Strategy) BarrierOption {
	return func(o *barrierOptions) {
		o.strategy = s
	}
}

// Barrier is a cyclic rendezvous of N participants. No participant returns from
// Arrive until all N have called Arrive for the current generation; then all are
// released together and the generation advances. A participant that arrives
// again right away is counted into the next generation, never the one it just
// left.
//
// A Barrier must be created with NewBarrier and must not be copied after first
// use.
type Barrier struct {
	n        int
	strategy Strategy
	impl     barrier
}

// barrier is the realization behind a Barrier. The slot index has already been
// validated.
type barrier interface {
	arrive(i int)
	Terminator
	generation() uint64
}

// NewBarrier returns a Barrier for n participants. It panics if n is not positive
// or if the strategy is unknown.
func NewBarrier(n int, opts ...BarrierOption) *Barrier {
	checkParties(n)
	var o barrierOptions
	for _, opt := range opts {
		opt(&o)
	}
	b := &Barrier{n: n, strategy: o.strategy}
	switch o.strategy {
	case Symmetric:
		b.impl = newSymmetricBarrier(n)
	case Chained:
		b.impl = &chainedBarrier{in: NewFanIn(n), out: NewFanOut(n)}
	default:
		panic(fmt.Errorf("rendezvous: unknown barrier strategy %v", o.strategy))
	}
	return b
}

// Arrive blocks participant i until every participant arrived in the current
// generation, or until the Barrier is terminated. The index identifies the
// caller for bookkeeping only; it does not affect release order.
//
// Check IsTerminating after Arrive returns. Arrive panics if i is not in 0..N-1.
func (b *Barrier) Arrive(i int) {
	checkSlot(i, b.n)
	b.impl.arrive(i)
}

// Terminate trips the latch and releases every blocked participant. Calling it
// again has no effect.
func (b *Barrier) Terminate() {
	b.impl.Terminate()
}

// IsTerminating reports whether Terminate has been called.
func (b *Barrier) IsTerminating() bool {
	return b.impl.IsTerminating()
}

// Generation returns the number of completed rendezvous.
func (b *Barrier) Generation() uint64 {
	return b.impl.generation()
}

// Slots returns N.
func (b *Barrier) Slots() int {
	return b.n
}

// Strategy returns the realization chosen at construction.
func (b *Barrier) Strategy() Strategy {
	return b.strategy
}

type symmetricBarrier struct {
	mu   sync.Mutex
	cond sync.Cond

	n       int
	arrived int
	gen     uint64
	// arrivedIn holds, per slot, one past the generation the slot last arrived in.
	arrivedIn []uint64

	latch Latch
}

func newSymmetricBarrier(n int) *symmetricBarrier {
	b := &symmetricBarrier{n: n, arrivedIn: make([]uint64, n)}
	b.cond.L = &b.mu
	return b
}

func (b *symmetricBarrier) arrive(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latch.Tripped() {
		return
	}
	gen := b.gen
	if b.arrivedIn[i] == gen+1 {
		panic(fmt.Errorf("rendezvous: barrier slot %d in generation %d: %w", i, gen, ErrRearrived))
	}
	b.arrivedIn[i] = gen + 1
	b.arrived++
	if b.arrived == b.n {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for b.gen == gen && !b.latch.Tripped() {
		b.cond.Wait()
	}
}

func (b *symmetricBarrier) Terminate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latch.Trip() {
		b.cond.Broadcast()
	}
}

func (b *symmetricBarrier) IsTerminating() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latch.Tripped()
}

func (b *symmetricBarrier) generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// chainedBarrier is a FanIn feeding a FanOut. The participant whose arrival
// completes the fan-in notifies the fan-out. Every participant consumed its
// fan-out slot of the previous generation before arriving, so that notify never
// finds an unconsumed slot.
type chainedBarrier struct {
	in  *FanIn
	out *FanOut
}

func (b *chainedBarrier) arrive(i int) {
	if b.in.arrive() {
		b.out.Notify()
	}
	b.out.Wait(i)
}

// Terminate trips the fan-in before the fan-out, so a participant that slips past
// the fan-in is still released by the fan-out.
func (b *chainedBarrier) Terminate() {
	b.in.Terminate()
	b.out.Terminate()
}

func (b *chainedBarrier) IsTerminating() bool {
	return b.in.IsTerminating() || b.out.IsTerminating()
}

func (b *chainedBarrier) generation() uint64 {
	return b.out.Generation()
}
