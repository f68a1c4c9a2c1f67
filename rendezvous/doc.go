// Package rendezvous provides round-based synchronization primitives for fixed
// pools of goroutines that coordinate over and over again without being spawned
// and joined for every round.
//
// # Primitives
//
//   - [Signal]: one notifier hands one waiter a one-shot wakeup per round.
//   - [FanOut]: one notifier releases N indexed waiters, each exactly once per round.
//   - [FanIn]: N notifiers report completion; one waiter wakes when all N reported.
//   - [Barrier]: N participants wait for each other; none passes until all arrived.
//
// Every primitive counts generations. A generation is one round: a notification
// that was made before its waiter parked is still delivered, and a waiter that
// comes back early for the next round blocks instead of consuming the same round
// twice.
//
// # Termination
//
// Each primitive embeds a [Latch], a one-way switch from [Active] to
// [Terminated]. Terminate trips it and wakes every goroutine blocked inside that
// primitive; all later waits return immediately. Terminate is idempotent and safe
// to call concurrently with any other method.
//
// Waits do not return a value. A goroutine that wakes up must ask whether it was
// released by a round or by shutdown:
//
//	for {
//	    gate.Wait(slot)
//	    if gate.IsTerminating() {
//	        return
//	    }
//	    // ... do the round's work ...
//	    done.Notify()
//	}
//
// # Memory Ordering
//
// Every state change and every predicate check happens under the primitive's
// mutex. Anything a goroutine wrote before calling Notify (or Arrive) is visible
// to the goroutines released by that round once their Wait (or Arrive) returns.
//
// # Usage Errors
//
// Contract violations are bugs in the caller and panic: a non-positive slot count,
// a slot index outside 0..N-1, notifying a FanOut before every slot consumed the
// previous round, and arriving at a Barrier twice in one generation. The panic
// value is an error wrapping [ErrParties], [ErrSlotRange], [ErrUnconsumed] or
// [ErrRearrived].
//
// # Ownership
//
// A primitive belongs to whatever builds the topology around it, never to a
// single worker. The owner terminates it, waits for every goroutine that may
// still touch it to exit, and only then drops it. See the scheduler package for
// owners that follow this protocol.
package rendezvous
