package rendezvous

import (
	"fmt"
	"sync"
)

// FanOut releases N indexed waiters once per round. One goroutine calls Notify;
// each of the N slots calls Wait with its own index and is released exactly once
// per Notify.
//
// All slots share one mutex and one condition variable. Slots are released
// together and run in no particular order relative to each other.
//
// A FanOut must be created with NewFanOut and must not be copied after first use.
type FanOut struct {
	mu   sync.Mutex
	cond sync.Cond

	// gen is the current generation; Notify advances it.
	gen uint64
	// seen holds, per slot, the last generation that slot consumed. A slot has a
	// pending signal iff seen[i] != gen.
	seen []uint64
	// unconsumed counts the slots with a pending signal.
	unconsumed int

	latch Latch
}

// NewFanOut returns a FanOut with n slots. It panics if n is not positive.
func NewFanOut(n int) *FanOut {
	checkParties(n)
	f := &FanOut{seen: make([]uint64, n)}
	f.cond.L = &f.mu
	return f
}

// Notify advances the generation and gives every slot a pending signal.
//
// Notify must be called by a single goroutine, once per round, and only after
// every slot consumed the previous round. Calling it earlier would silently drop
// a wakeup, so it panics with an error wrapping ErrUnconsumed instead. After
// termination Notify does nothing.
func (f *FanOut) Notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latch.Tripped() {
		return
	}
	if f.unconsumed > 0 {
		panic(fmt.Errorf("rendezvous: fan-out notified with %d of %d slots pending: %w", f.unconsumed, len(f.seen), ErrUnconsumed))
	}
	f.gen++
	f.unconsumed = len(f.seen)
	f.cond.Broadcast()
}

// Wait blocks slot i until it has a pending signal for the current generation or
// the FanOut is terminated, then consumes the signal.
//
// A second Wait on the same slot in the same generation blocks until the next
// Notify. Wait panics if i is not in 0..N-1.
func (f *FanOut) Wait(i int) {
	checkSlot(i, len(f.seen))
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.seen[i] == f.gen && !f.latch.Tripped() {
		f.cond.Wait()
	}
	if f.latch.Tripped() {
		return
	}
	f.seen[i] = f.gen
	f.unconsumed--
}

// Terminate trips the latch and wakes all N waiters. Calling it again has no
// effect.
func (f *FanOut) Terminate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latch.Trip() {
		f.cond.Broadcast()
	}
}

// IsTerminating reports whether Terminate has been called.
func (f *FanOut) IsTerminating() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latch.Tripped()
}

// Generation returns the number of Notify calls that took effect.
func (f *FanOut) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen
}

// Slots returns N.
func (f *FanOut) Slots() int {
	return len(f.seen)
}
