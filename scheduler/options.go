package scheduler

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-hclog"

	"github.com/notorious-go/rendezvous/rendezvous"
)

// An Option configures a Ring or a Pool.
type Option func(*options)

type options struct {
	logger      hclog.Logger
	lockThreads bool
	cpus        []int
	strategy    rendezvous.Strategy
}

// WithLogger sets the logger for lifecycle events: workers starting, pinning and
// exiting, and teardown. Rounds themselves are never logged. The default logger
// discards everything.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLockedThreads wires every worker to its own OS thread for the worker's
// whole life.
func WithLockedThreads() Option {
	return func(o *options) {
		o.lockThreads = true
	}
}

// WithCPUs pins worker i to cpus[i%len(cpus)]. It implies WithLockedThreads.
// Pinning is only supported on Linux; elsewhere, and whenever the kernel refuses,
// the failure is logged and the worker runs unpinned.
func WithCPUs(cpus ...int) Option {
	return func(o *options) {
		o.cpus = cpus
		o.lockThreads = o.lockThreads || len(cpus) > 0
	}
}

// WithBarrierStrategy selects the realization of the mid-round barrier of a
// phased Pool. It has no effect on other topologies.
func WithBarrierStrategy(s rendezvous.Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

func newOptions(opts []Option) (options, error) {
	o := options{logger: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	for _, cpu := range o.cpus {
		if cpu < 0 {
			return o, fmt.Errorf("%w: %d", ErrInvalidCPU, cpu)
		}
	}
	return o, nil
}

// place prepares the calling goroutine to run worker slot and returns a function
// that undoes it when the worker exits.
//
// A pinned thread is never unlocked. It exits together with its worker, so its
// affinity mask cannot leak to unrelated goroutines.
func (o *options) place(slot int, log hclog.Logger) (release func()) {
	if !o.lockThreads {
		return func() {}
	}
	runtime.LockOSThread()
	if len(o.cpus) == 0 {
		return runtime.UnlockOSThread
	}
	cpu := o.cpus[slot%len(o.cpus)]
	if err := pinCPU(cpu); err != nil {
		log.Warn("cannot pin worker, running unpinned", "cpu", cpu, "error", err)
		return runtime.UnlockOSThread
	}
	log.Debug("worker pinned", "cpu", cpu)
	return func() {}
}
