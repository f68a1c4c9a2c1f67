package rendezvous

import (
	"errors"
	"fmt"
)

// Usage errors. The primitives panic with an error wrapping one of these when a
// caller breaks their contract; none of them is recoverable at this layer.
var (
	// ErrParties is wrapped when a primitive is constructed with fewer than one slot.
	ErrParties = errors.New("slot count must be positive")

	// ErrSlotRange is wrapped when a slot index lies outside 0..N-1.
	ErrSlotRange = errors.New("slot index out of range")

	// ErrUnconsumed is wrapped when a FanOut is notified before every slot consumed
	// the previous generation.
	ErrUnconsumed = errors.New("previous generation not fully consumed")

	// ErrRearrived is wrapped when a Barrier participant arrives twice in the same
	// generation.
	ErrRearrived = errors.New("participant arrived twice in one generation")
)

func checkParties(n int) {
	if n <= 0 {
		panic(fmt.Errorf("rendezvous: %w: got %d", ErrParties, n))
	}
}

func checkSlot(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Errorf("rendezvous: %w: slot %d of %d", ErrSlotRange, i, n))
	}
}
