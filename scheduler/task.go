package scheduler

import (
	"fmt"

	"go.uber.org/multierr"
)

// Task is the unit of work a worker performs in a round. The slot identifies the
// worker (0..N-1) and round is the 1-based number of the round being run; for a
// Ring it is the oscillation count after worker 0 incremented it.
//
// A Task must return in bounded time. Its error does not stop the topology: all
// errors of a round are combined and returned by that round's Run or Advance.
type Task func(slot int, round uint64) error

// slotErrors keeps one error per worker slot, so workers never share a lock to
// report failures. A slot is written only by its worker while a round is running
// and read by the driver after the round completed; the rendezvous primitives
// order the two.
type slotErrors []error

func (e slotErrors) record(slot int, err error) {
	if err != nil {
		e[slot] = multierr.Append(e[slot], fmt.Errorf("slot %d: %w", slot, err))
	}
}

// collect combines the errors of the round that just completed and resets every
// slot for the next one.
func (e slotErrors) collect() error {
	err := multierr.Combine(e...)
	clear(e)
	return err
}
