package scheduler

import "errors"

var (
	// ErrClosed is returned by Run and Advance once Close has been called.
	ErrClosed = errors.New("scheduler: closed")

	// ErrTerminated is returned by a Run or Advance that was in flight when Close
	// shut the topology down. The round did not complete.
	ErrTerminated = errors.New("scheduler: terminated during round")

	// ErrInvalidWorkers is returned by constructors given fewer than one worker.
	ErrInvalidWorkers = errors.New("scheduler: worker count must be positive")

	// ErrInvalidRounds is returned for a non-positive oscillation or repeat count.
	ErrInvalidRounds = errors.New("scheduler: round count must be positive")

	// ErrNoPhases is returned when a pool is built without a task.
	ErrNoPhases = errors.New("scheduler: at least one non-nil task is required")

	// ErrInvalidCPU is returned by constructors given a negative CPU index.
	ErrInvalidCPU = errors.New("scheduler: invalid cpu index")
)
