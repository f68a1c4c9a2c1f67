// Package roundtest provides utilities for testing round-based rendezvous
// primitives and the schedulers built from them.
//
// # Overview
//
// Two kinds of checks come up again and again when testing blocking primitives:
//
//   - Liveness and exclusion of a single call: a Wait must block until its round
//     is released, and must return once it is. [Go] starts a call in its own
//     goroutine and returns a [Call] that can assert either within a deadline.
//   - Ordering across rounds: no participant may start round G+1 before every
//     participant finished round G. A [Recorder] timestamps the start and finish
//     of each participant's round on a single logical clock and reports every
//     interleaving that breaks this rule.
//
// # Example Usage
//
//	call := roundtest.Go(func() { gate.Wait(0) })
//	call.Blocks(t, 50*time.Millisecond) // nothing notified yet
//	gate.Notify()
//	call.Returns(t, time.Second)
package roundtest

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// Call is a function running in its own goroutine.
type Call struct {
	done chan struct{}
}

// Go runs f in a new goroutine and returns a handle to observe when it returns.
func Go(f func()) *Call {
	c := &Call{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		f()
	}()
	return c
}

// Done returns a channel that is closed once the call returned.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Returned reports whether the call has returned, without blocking.
func (c *Call) Returned() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Blocks fails the test if the call returns within d.
//
// A blocked call can only be shown to block for as long as we watch it; pick d
// long enough for a wrongly released call to get scheduled.
func (c *Call) Blocks(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case <-c.done:
		t.Errorf("call returned, expected it to block for at least %v", d)
	case <-time.After(d):
	}
}

// Returns fails the test if the call has not returned within d.
func (c *Call) Returns(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(d):
		t.Errorf("call did not return within %v", d)
	}
}

// Recorder timestamps the rounds of a fixed set of participants.
//
// Participants call Start when they begin the work of a round and Finish when
// they are done with it. Every timestamp comes from one logical clock that ticks
// under a mutex, so timestamps taken by different goroutines are totally ordered.
//
// A Recorder is safe for concurrent use. The zero value is not usable; create one
// with NewRecorder.
type Recorder struct {
	mu    sync.Mutex
	clock uint64
	spans []map[int]span // per participant, round -> span
}

type span struct {
	start, finish uint64
}

// NewRecorder returns a Recorder for n participants.
func NewRecorder(n int) *Recorder {
	r := &Recorder{spans: make([]map[int]span, n)}
	for i := range r.spans {
		r.spans[i] = make(map[int]span)
	}
	return r
}

// Start records that participant p began round g.
func (r *Recorder) Start(p, g int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock++
	s := r.spans[p][g]
	s.start = r.clock
	r.spans[p][g] = s
}

// Finish records that participant p finished round g.
func (r *Recorder) Finish(p, g int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock++
	s := r.spans[p][g]
	s.finish = r.clock
	r.spans[p][g] = s
}

// Violations returns one error for every participant that started a round before
// some participant finished the previous one, and for every round a participant
// started but never finished.
func (r *Recorder) Violations() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	lastFinish := make(map[int]uint64) // round -> latest finish over all participants
	lastFinisher := make(map[int]int)
	for p, rounds := range r.spans {
		for g, s := range rounds {
			if s.finish == 0 {
				errs = append(errs, fmt.Errorf("participant %d never finished round %d", p, g))
				continue
			}
			if s.finish > lastFinish[g] {
				lastFinish[g] = s.finish
				lastFinisher[g] = p
			}
		}
	}
	for p, rounds := range r.spans {
		for g, s := range rounds {
			prev, ok := lastFinish[g-1]
			if !ok || s.start == 0 {
				continue
			}
			if s.start < prev {
				errs = append(errs, fmt.Errorf("participant %d started round %d at t=%d before participant %d finished round %d at t=%d",
					p, g, s.start, lastFinisher[g-1], g-1, prev))
			}
		}
	}
	return errs
}

// Check reports every violation as a test error.
func (r *Recorder) Check(t testing.TB) {
	t.Helper()
	for _, err := range r.Violations() {
		t.Error(err)
	}
}
