package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Topologies a coordinator can run its worker pool in.
const (
	TopologySpawn  = "spawn"  // coordinator starts worker processes itself
	TopologyStatic = "static" // operator starts a fixed world of processes
	TopologyLocal  = "local"  // workers run as goroutines in the coordinator
)

// Chunk scheduling policies.
const (
	PolicyGreedy   = "greedy"
	PolicyBalanced = "balanced"
)

// EnvPrefix prefixes every environment variable the coordinator reads.
const EnvPrefix = "ODDEVEN_"

var (
	// ErrInvalidArgs wraps every configuration and topology error.
	ErrInvalidArgs = errors.New("invalid arguments")
	// ErrHelp is returned when help was requested.
	ErrHelp = flag.ErrHelp
)

var (
	topologies = []string{TopologySpawn, TopologyStatic, TopologyLocal}
	policies   = []string{PolicyGreedy, PolicyBalanced}
)

// Config is the coordinator configuration. The zero value is not useful;
// start from Default.
type Config struct {
	ArraySize int    `yaml:"array_size"`
	DelayMs   int    `yaml:"delay_ms"`
	Verbose   int    `yaml:"verbose"`
	Log       bool   `yaml:"log"`
	LogFile   string `yaml:"log_file"`
	Min       int    `yaml:"min"`
	Max       int    `yaml:"max"`
	Procs     int    `yaml:"procs"`
	Topology  string `yaml:"topology"`
	Listen    string `yaml:"listen"`
	WorkerBin string `yaml:"worker_bin"`
	Policy    string `yaml:"policy"`
	Session   string `yaml:"session"`
	TraceFile string `yaml:"trace_file"`
	Seed      uint64 `yaml:"seed"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		DelayMs:  1,
		Verbose:  0,
		LogFile:  "Log.txt",
		Min:      -0xFFFF,
		Max:      0xFFFF,
		Procs:    4,
		Topology: TopologySpawn,
		Listen:   ":7070",
		Policy:   PolicyGreedy,
	}
}

// Workers returns the size of the worker pool: every process but rank 0.
func (c *Config) Workers() int {
	return c.Procs - 1
}

// Validate reports the first invalid setting, wrapped in ErrInvalidArgs.
func (c *Config) Validate() error {
	switch {
	case c.ArraySize <= 0:
		return invalid("size has to be greater than 0")
	case c.Procs < 2:
		return invalid("at least two processes are needed for sorting to work, got %d", c.Procs)
	case c.DelayMs < 0:
		return invalid("delay cannot be negative")
	case c.Verbose < 0 || c.Verbose > 2:
		return invalid("verbose level must be 0, 1 or 2")
	case c.Min >= c.Max:
		return invalid("min array value has to be smaller than max")
	case !slices.Contains(topologies, c.Topology):
		return invalid("unknown topology %q (want one of %s)", c.Topology, strings.Join(topologies, ", "))
	case !slices.Contains(policies, c.Policy):
		return invalid("unknown policy %q (want one of %s)", c.Policy, strings.Join(policies, ", "))
	}
	return nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return invalid("config file: %v", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return invalid("config file %s: %v", path, err)
	}
	return nil
}

// ApplyEnv overlays ODDEVEN_* environment variables onto c.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	ints := map[string]*int{
		"ARRAY_SIZE": &c.ArraySize,
		"DELAY":      &c.DelayMs,
		"VERBOSE":    &c.Verbose,
		"MIN":        &c.Min,
		"MAX":        &c.Max,
		"PROCS":      &c.Procs,
	}
	for name, dst := range ints {
		if v := getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return invalid("%s%s: %v", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"LOG_FILE":   &c.LogFile,
		"TOPOLOGY":   &c.Topology,
		"LISTEN":     &c.Listen,
		"WORKER_BIN": &c.WorkerBin,
		"POLICY":     &c.Policy,
		"SESSION":    &c.Session,
		"TRACE":      &c.TraceFile,
	}
	for name, dst := range strs {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	if v := getenv(EnvPrefix + "LOG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return invalid("%sLOG: %v", EnvPrefix, err)
		}
		c.Log = b
	}
	if v := getenv(EnvPrefix + "SEED"); v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return invalid("%sSEED: %v", EnvPrefix, err)
		}
		c.Seed = s
	}
	return nil
}

// Parse builds the coordinator configuration from defaults, an optional YAML
// file (--config or ODDEVEN_CONFIG), the environment and args, in that order
// of precedence. ARRAY_SIZE may come before or after the options.
func Parse(args []string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path := configPath(args, getenv); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	fs := cfg.flagSet()

	var positional []string
	for rest := args; len(rest) > 0; {
		if isSize(rest[0]) || !strings.HasPrefix(rest[0], "-") {
			positional = append(positional, rest[0])
			rest = rest[1:]
			continue
		}
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, ErrHelp
			}
			return nil, invalid("%v", err)
		}
		next := fs.Args()
		if len(next) == len(rest) {
			// A lone "-" is not a flag.
			positional = append(positional, rest[0])
			next = rest[1:]
		}
		rest = next
	}

	switch {
	case len(positional) > 1:
		return nil, invalid("unexpected arguments %v", positional[1:])
	case len(positional) == 1:
		n, err := strconv.Atoi(positional[0])
		if err != nil {
			return nil, invalid("array size %q is not an integer", positional[0])
		}
		cfg.ArraySize = n
	case cfg.ArraySize == 0:
		return nil, invalid("too few arguments: ARRAY_SIZE is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) flagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("coordinator", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.String("config", "", "YAML configuration file")
	fs.IntVar(&c.DelayMs, "delay", c.DelayMs, "compare delay in milliseconds")
	fs.IntVar(&c.Verbose, "v", c.Verbose, "verbose level")
	fs.BoolVar(&c.Log, "log", c.Log, "append a statistics record")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "statistics log file")
	fs.IntVar(&c.Min, "min", c.Min, "min generated value")
	fs.IntVar(&c.Max, "max", c.Max, "max generated value")
	fs.IntVar(&c.Procs, "procs", c.Procs, "total process count")
	fs.StringVar(&c.Topology, "topology", c.Topology, "worker topology")
	fs.StringVar(&c.Listen, "listen", c.Listen, "listen address for static topology")
	fs.StringVar(&c.WorkerBin, "worker-bin", c.WorkerBin, "worker binary for spawn topology")
	fs.StringVar(&c.Policy, "policy", c.Policy, "chunk scheduling policy")
	fs.StringVar(&c.Session, "session", c.Session, "session id workers must present")
	fs.StringVar(&c.TraceFile, "trace", c.TraceFile, "trace output file")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "array generator seed")
	return fs
}

// configPath finds --config in args or ODDEVEN_CONFIG in the environment.
func configPath(args []string, getenv func(string) string) string {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return getenv(EnvPrefix + "CONFIG")
}

// isSize reports whether a is an integer, negative ones included, so that
// "-5" is rejected as a size rather than as an unknown flag.
func isSize(a string) bool {
	_, err := strconv.Atoi(a)
	return err == nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgs, fmt.Sprintf(format, args...))
}

// Usage prints the coordinator help text.
func Usage(w io.Writer) {
	fmt.Fprint(w, `coordinator ARRAY_SIZE [OPTION]
	ARRAY_SIZE
		size of the array to sort (positive integer)
	--delay COMPARE_DELAY_MS
		compare operation delay in milliseconds used to simulate
		computation heavy operation (non-negative integer, default 1)
	-v VERBOSE_LEVEL
		0 = basic info, 1 = debug print every pass, 2 = detailed
	--log
		append a statistics record to the log file
	--log-file PATH
		statistics log file (default Log.txt)
	--min VALUE
		min value of generated array (integer, default -65535)
	--max VALUE
		max value of generated array (integer, default 65535)
	--procs N
		total process count including the coordinator (>= 2, default 4)
	--topology spawn|static|local
		spawn: start worker processes, static: wait for N-1 workers
		to register on --listen, local: in-process workers (default spawn)
	--listen ADDR
		coordinator address for the static topology (default :7070)
	--worker-bin PATH
		worker binary for the spawn topology (default: worker next to
		the coordinator binary)
	--policy greedy|balanced
		chunk scheduling policy (default greedy)
	--session ID
		session id static workers must present
	--trace PATH
		write OpenTelemetry spans to PATH
	--seed N
		seed for the array generator (0 = random)
	--config PATH
		YAML file with any of the settings above
`)
}
