// Command roundbench measures the per-batch latency of the scheduler topologies.
//
// Usage:
//
//	roundbench [-config bench.yaml] [-trials n]
//
// Each case builds its topology once, runs one discarded warm-up batch and then
// the timed trials, and prints the mean and standard deviation.
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/notorious-go/rendezvous/internal/bench"
	"github.com/notorious-go/rendezvous/scheduler"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML benchmark matrix")
	trials := flag.Int("trials", 0, "override the number of timed trials")
	flag.Parse()

	if err := run(*configPath, *trials); err != nil {
		fmt.Fprintln(os.Stderr, "roundbench:", err)
		os.Exit(1)
	}
}

func run(configPath string, trials int) error {
	cfg, err := Load(configPath)
	if err != nil {
		return err
	}
	if trials > 0 {
		cfg.Trials = trials
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "roundbench",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})
	h := bench.Harness{Trials: cfg.Trials, Warmup: cfg.Warmup, Logger: logger}

	var results []bench.Result
	for _, cc := range cfg.Cases {
		logger.Info("testing", "case", cc.Name())
		res, err := h.Measure(newCase(cc, logger))
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	for _, res := range results {
		fmt.Println("RESULT\t" + res.String())
	}
	return nil
}

// newCase adapts a configured topology to the harness. A batch is a full ring
// run, or Rounds consecutive Advance calls on a pool.
func newCase(cc CaseConfig, logger hclog.Logger) bench.Case {
	opts := []scheduler.Option{
		scheduler.WithLogger(logger),
		scheduler.WithCPUs(cc.CPUs...),
	}
	return bench.Case{
		Name: cc.Name(),
		New: func() (bench.Runner, error) {
			switch cc.Topology {
			case "ring":
				r, err := scheduler.NewRing(cc.Workers, nil, opts...)
				if err != nil {
					return nil, err
				}
				return ringRunner{r, int64(cc.Rounds)}, nil
			case "pool":
				p, err := scheduler.NewPool(cc.Workers, noop, opts...)
				if err != nil {
					return nil, err
				}
				return poolRunner{p, cc.Rounds}, nil
			default:
				strategy, err := cc.strategy()
				if err != nil {
					return nil, err
				}
				p, err := scheduler.NewPhasedPool(cc.Workers, cc.Repeat, []scheduler.Task{noop, noop},
					append(slices.Clone(opts), scheduler.WithBarrierStrategy(strategy))...)
				if err != nil {
					return nil, err
				}
				return poolRunner{p, cc.Rounds}, nil
			}
		},
	}
}

func noop(int, uint64) error { return nil }

type ringRunner struct {
	*scheduler.Ring
	oscillations int64
}

func (r ringRunner) Run() error {
	return r.Ring.Run(r.oscillations)
}

type poolRunner struct {
	*scheduler.Pool
	rounds int
}

func (p poolRunner) Run() error {
	for range p.rounds {
		if err := p.Advance(); err != nil {
			return err
		}
	}
	return nil
}
