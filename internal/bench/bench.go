// Package bench measures how long a scheduling topology takes per batch of
// rounds. It drives topologies only through their public Run and Close methods.
package bench

import (
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/go-hclog"
	"go.uber.org/multierr"
)

// Runner is a topology under measurement. Run executes one timed batch.
type Runner interface {
	Run() error
	Close() error
}

// Case builds a fresh Runner. The Runner is built once per case and reused for
// every trial, so construction cost never shows up in the timings.
type Case struct {
	Name string
	New  func() (Runner, error)
}

// Result summarizes the timed trials of one case.
type Result struct {
	Name    string
	Samples []time.Duration
	Mean    time.Duration
	StdDev  time.Duration
}

func (r Result) String() string {
	return fmt.Sprintf("%s\tmean: %v\tstddev: %v\ttrials: %d", r.Name, r.Mean, r.StdDev, len(r.Samples))
}

// Harness runs cases for a number of warm-up and timed trials.
type Harness struct {
	// Trials is the number of timed runs per case.
	Trials int
	// Warmup runs are executed first and discarded.
	Warmup int
	Logger hclog.Logger

	// now is replaced in tests.
	now func() time.Time
}

// Measure builds the case, runs it Warmup+Trials times and summarizes the timed
// runs. The Runner is always closed; its Close error is combined with any run
// error.
func (h *Harness) Measure(c Case) (res Result, err error) {
	log := h.logger().With("case", c.Name)
	r, err := c.New()
	if err != nil {
		return Result{}, fmt.Errorf("%s: build: %w", c.Name, err)
	}
	defer func() {
		multierr.AppendInto(&err, r.Close())
	}()

	now := h.now
	if now == nil {
		now = time.Now
	}
	samples := make([]time.Duration, 0, h.Trials)
	for i := range h.Warmup + h.Trials {
		begin := now()
		if err := r.Run(); err != nil {
			return Result{}, fmt.Errorf("%s: trial %d: %w", c.Name, i, err)
		}
		elapsed := now().Sub(begin)
		if i < h.Warmup {
			log.Trace("discarding warm-up trial", "trial", i, "elapsed", elapsed)
			continue
		}
		samples = append(samples, elapsed)
	}
	res = Summarize(c.Name, samples)
	log.Debug("measured", "mean", res.Mean, "stddev", res.StdDev)
	return res, nil
}

func (h *Harness) logger() hclog.Logger {
	if h.Logger == nil {
		return hclog.NewNullLogger()
	}
	return h.Logger
}

// Summarize computes the mean and the sample standard deviation of samples. The
// deviation of fewer than two samples is zero.
func Summarize(name string, samples []time.Duration) Result {
	res := Result{Name: name, Samples: samples}
	if len(samples) == 0 {
		return res
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	mean := sum / float64(len(samples))
	res.Mean = time.Duration(mean)
	if len(samples) < 2 {
		return res
	}
	var sq float64
	for _, s := range samples {
		d := float64(s) - mean
		sq += d * d
	}
	res.StdDev = time.Duration(math.Sqrt(sq / float64(len(samples)-1)))
	return res
}
