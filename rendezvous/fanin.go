package rendezvous

import "sync"

// FanIn gathers N notifications into one wakeup per round. Each of N notifier
// goroutines calls Notify once per round; a single waiter returns from Wait once
// all N arrived.
//
// The N-th Notify of a round resets the arrival count, completes the generation
// and wakes the waiter in one critical section. An arrival for the next round
// therefore always lands in the next round's count, even when it races with the
// waiter that is still waking up from the previous one.
//
// Completed rounds are not lost when the waiter is late: Wait consumes one
// completed round per call, in order.
//
// A FanIn must be created with NewFanIn and must not be copied after first use.
type FanIn struct {
	mu   sync.Mutex
	cond sync.Cond

	n       int
	arrived int
	// gen counts completed rounds and consumed counts the ones Wait returned for.
	gen      uint64
	consumed uint64

	latch Latch
}

// NewFanIn returns a FanIn expecting n notifiers per round. It panics if n is not
// positive.
func NewFanIn(n int) *FanIn {
	checkParties(n)
	f := &FanIn{n: n}
	f.cond.L = &f.mu
	return f
}

// Notify records one arrival for the current round. After termination it does
// nothing.
func (f *FanIn) Notify() {
	f.arrive()
}

// arrive is Notify that also reports whether this arrival completed the round.
func (f *FanIn) arrive() (completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latch.Tripped() {
		return false
	}
	f.arrived++
	if f.arrived < f.n {
		return false
	}
	f.arrived = 0
	f.gen++
	f.cond.Signal()
	return true
}

// Wait blocks until a round completed that has not been consumed yet, or until
// the FanIn is terminated. Check IsTerminating after it returns.
func (f *FanIn) Wait() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.consumed == f.gen && !f.latch.Tripped() {
		f.cond.Wait()
	}
	if f.latch.Tripped() {
		return
	}
	f.consumed++
}

// Terminate trips the latch and wakes the waiter. Calling it again has no effect.
func (f *FanIn) Terminate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latch.Trip() {
		f.cond.Broadcast()
	}
}

// IsTerminating reports whether Terminate has been called.
func (f *FanIn) IsTerminating() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latch.Tripped()
}

// Generation returns the number of completed rounds.
func (f *FanIn) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen
}

// Slots returns N.
func (f *FanIn) Slots() int {
	return f.n
}
