package rendezvous

import "sync"

// Signal is a one-shot-per-round handoff between one notifier and one waiter.
//
// Notify records a pending signal and Wait consumes it. Signals are not counted:
// notifying twice before the waiter consumes the first is the same as notifying
// once. A Notify that happens before the waiter parks is not lost; the waiter
// finds it pending and returns without blocking.
//
// A Signal must be created with NewSignal and must not be copied after first use.
type Signal struct {
	mu      sync.Mutex
	cond    sync.Cond
	pending bool
	gen     uint64
	latch   Latch
}

// NewSignal returns an active Signal with no pending notification.
func NewSignal() *Signal {
	s := &Signal{}
	s.cond.L = &s.mu
	return s
}

// Notify makes a signal pending and wakes the waiter if it is parked. It is
// ignored when a signal is already pending or the Signal is terminating.
func (s *Signal) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latch.Tripped() || s.pending {
		return
	}
	s.pending = true
	s.cond.Signal()
}

// Wait blocks until a signal is pending or the Signal is terminated. A pending
// signal is consumed and the generation advances.
//
// Wait does not report why it returned; check IsTerminating before acting on the
// wakeup. Once terminated, every Wait returns immediately.
func (s *Signal) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.pending && !s.latch.Tripped() {
		s.cond.Wait()
	}
	if s.latch.Tripped() {
		return
	}
	s.pending = false
	s.gen++
}

// Terminate trips the latch and wakes the waiter. Calling it again has no effect.
func (s *Signal) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latch.Trip() {
		s.cond.Broadcast()
	}
}

// IsTerminating reports whether Terminate has been called.
func (s *Signal) IsTerminating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latch.Tripped()
}

// Generation returns the number of signals consumed so far.
func (s *Signal) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}
