// Package scheduler composes the primitives of the rendezvous package into
// persistent worker topologies that run many short rounds without creating a
// goroutine per round.
//
// # Topologies
//
//   - [Ring]: N workers in a cycle of Signals. The token travels around the ring
//     a requested number of times per [Ring.Run].
//   - [Pool]: N workers behind a FanOut and a FanIn. [Pool.Advance] releases all
//     of them and returns once every one of them finished its round.
//   - Phased [Pool] (see [NewPhasedPool]): like Pool, but every round is cut into
//     phases separated by a Barrier, so all workers finish one phase before any of
//     them starts the next.
//
// # Lifecycle
//
// Constructors start the workers right away; the workers park on their first
// primitive until the driver starts a round. A topology owns every primitive it
// creates and every counter its workers share, so independent instances never
// interfere with each other.
//
// Close terminates each primitive in an order that reaches every worker,
// wherever it is parked, then waits for all workers to exit. A round in flight
// during Close returns [ErrTerminated]; later rounds return [ErrClosed].
//
//	pool, err := scheduler.NewPool(runtime.NumCPU(), step)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//	for range frames {
//	    if err := pool.Advance(); err != nil {
//	        return err
//	    }
//	}
//
// # Placement
//
// Workers are goroutines. For latency-sensitive use, [WithLockedThreads] gives
// each worker an OS thread of its own and [WithCPUs] additionally pins those
// threads to CPUs on Linux.
package scheduler
