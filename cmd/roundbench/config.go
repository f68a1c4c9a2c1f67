package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/notorious-go/rendezvous/rendezvous"
)

// Config holds the benchmark matrix.
type Config struct {
	Trials   int          `yaml:"trials"`
	Warmup   int          `yaml:"warmup"`
	LogLevel string       `yaml:"log_level"`
	Cases    []CaseConfig `yaml:"cases"`
}

// CaseConfig describes one topology to measure.
type CaseConfig struct {
	// Topology is "ring", "pool" or "phased".
	Topology string `yaml:"topology"`
	Workers  int    `yaml:"workers"`
	// Rounds is the number of oscillations of a ring, or Advance calls of a pool,
	// per timed trial.
	Rounds int `yaml:"rounds"`
	// Repeat is the number of two-phase passes per round of a phased pool.
	Repeat int `yaml:"repeat"`
	// Barrier is "symmetric" (default) or "chained".
	Barrier string `yaml:"barrier"`
	CPUs    []int  `yaml:"cpus"`
}

// Default returns the standard matrix: rings of 2 to 100 workers passing the
// token 100 times, and plain and phased pools of 4 to 64 workers running 10000
// rounds.
func Default() Config {
	cfg := Config{
		Trials:   10,
		Warmup:   1,
		LogLevel: "info",
	}
	for _, n := range []int{2, 3, 5, 10, 100} {
		cfg.Cases = append(cfg.Cases, CaseConfig{Topology: "ring", Workers: n, Rounds: 100})
	}
	for _, topology := range []string{"pool", "phased"} {
		for _, n := range []int{4, 16, 64} {
			cfg.Cases = append(cfg.Cases, CaseConfig{Topology: topology, Workers: n, Rounds: 10000, Repeat: 1})
		}
	}
	return cfg
}

// Load reads a YAML file on top of the defaults. Cases listed in the file replace
// the default cases.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.Cases = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Cases) == 0 {
		cfg.Cases = Default().Cases
	}
	return cfg, nil
}

// Validate reports every problem in the configuration at once.
func (c Config) Validate() error {
	var err error
	if c.Trials < 1 {
		err = multierr.Append(err, fmt.Errorf("trials must be positive, got %d", c.Trials))
	}
	if c.Warmup < 0 {
		err = multierr.Append(err, fmt.Errorf("warmup must not be negative, got %d", c.Warmup))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		err = multierr.Append(err, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	for i, cc := range c.Cases {
		multierr.AppendInto(&err, cc.validate(i))
	}
	return err
}

func (c CaseConfig) validate(i int) error {
	var err error
	switch c.Topology {
	case "ring", "pool", "phased":
	default:
		err = multierr.Append(err, fmt.Errorf("case %d: unknown topology %q", i, c.Topology))
	}
	if c.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("case %d: workers must be positive, got %d", i, c.Workers))
	}
	if c.Rounds < 1 {
		err = multierr.Append(err, fmt.Errorf("case %d: rounds must be positive, got %d", i, c.Rounds))
	}
	if c.Topology == "phased" && c.Repeat < 1 {
		err = multierr.Append(err, fmt.Errorf("case %d: repeat must be positive, got %d", i, c.Repeat))
	}
	if _, serr := c.strategy(); serr != nil {
		err = multierr.Append(err, fmt.Errorf("case %d: %w", i, serr))
	}
	return err
}

func (c CaseConfig) strategy() (rendezvous.Strategy, error) {
	switch c.Barrier {
	case "", "symmetric":
		return rendezvous.Symmetric, nil
	case "chained":
		return rendezvous.Chained, nil
	default:
		return 0, fmt.Errorf("unknown barrier strategy %q", c.Barrier)
	}
}

// Name identifies the case in the results.
func (c CaseConfig) Name() string {
	switch c.Topology {
	case "ring":
		return fmt.Sprintf("ring [%d, %d]", c.Workers, c.Rounds)
	case "phased":
		s, _ := c.strategy()
		return fmt.Sprintf("phased %v [%d, %d x %d]", s, c.Workers, c.Rounds, c.Repeat)
	default:
		return fmt.Sprintf("%s [%d, %d]", c.Topology, c.Workers, c.Rounds)
	}
}
