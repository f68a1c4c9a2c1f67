package rendezvous

// Latch is the termination state of a primitive. It is a one-way state machine:
// a Latch starts [Active] and may move to [Terminated] exactly once; it never
// moves back.
//
// A Latch holds no lock of its own. Every primitive in this package embeds one
// and only reads or trips it while holding the primitive's mutex, so the
// transition is ordered with the rest of the primitive's state. Whatever a
// goroutine observed before a Terminate call is visible to every goroutine that
// wakes up because of it.
//
// The zero-value Latch is Active.
type Latch uint8

const (
	// Active is the initial state. Signals and rounds are delivered normally.
	Active Latch = iota
	// Terminated is the final state. Blocked and future waits return immediately
	// and the generation counter of the owning primitive is frozen.
	Terminated
)

// Trip moves the latch to Terminated. It reports whether this call performed the
// transition; a second Trip returns false and changes nothing.
func (l *Latch) Trip() bool {
	if *l == Terminated {
		return false
	}
	*l = Terminated
	return true
}

// Tripped reports whether the latch is Terminated.
func (l Latch) Tripped() bool {
	return l == Terminated
}

func (l Latch) String() string {
	switch l {
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	default:
		return "invalid"
	}
}

// Terminator is implemented by every primitive in this package. Owners use it to
// tear down a set of primitives uniformly.
type Terminator interface {
	// Terminate trips the primitive's latch and wakes every goroutine blocked in
	// it. It is idempotent and safe to call concurrently with waits and notifies.
	Terminate()

	// IsTerminating reports whether Terminate has been called. It never blocks.
	//
	// Callers check it right after each wait returns: a wait cannot tell a real
	// signal from a shutdown wakeup by itself.
	IsTerminating() bool
}
