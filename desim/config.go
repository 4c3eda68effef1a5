package desim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the validated parameter bundle a Simulator run consumes,
// enumerating exactly the configuration surface in spec.md §6.
type Config struct {
	// MaxTime is required: the simulation terminates once the next pending
	// event's time exceeds it.
	MaxTime float64 `yaml:"max_time"`
	// TimeInit is the simulation clock's starting value; the first event
	// must be scheduled at or after it. Defaults to 0.
	TimeInit float64 `yaml:"time_init"`
	// RandomSeed is opaque to the engine; consumed by user models via RNG.
	RandomSeed *int64 `yaml:"random_seed,omitempty"`
	// StopCondition, if set, terminates the loop once it returns true,
	// checked before each dispatch.
	StopCondition func(time float64) bool `yaml:"-"`
	// OutputDir enables metadata write and the measurements file when set.
	OutputDir string `yaml:"output_dir,omitempty"`
	// Progress enables the progress bar.
	Progress bool `yaml:"progress,omitempty"`
	// Profile enables CPU profiling when OutputDir is also set; the profile is
	// written to <output_dir>/cpu.prof. Simulate does not return profile stats.
	Profile bool `yaml:"profile,omitempty"`
	// ObjectMemoryChangeInterval, if >0, writes a memory diff to the
	// measurements file every N dispatched batches.
	ObjectMemoryChangeInterval int `yaml:"object_memory_change_interval,omitempty"`
	// MaxTimePrecision is the number of decimal digits used to format
	// checkpoint file names (see Checkpointer).
	MaxTimePrecision int `yaml:"max_time_precision,omitempty"`
	// CheckpointInterval, if >0 and OutputDir is set, saves a checkpoint
	// under <output_dir>/checkpoints every N dispatched batches, in addition
	// to one at loop start and one at loop end.
	CheckpointInterval int `yaml:"checkpoint_interval,omitempty"`
}

// Validate enforces the constraints spec.md §6 lists: MaxTime > TimeInit,
// and OutputDir (if set) must be an existing directory.
func (c *Config) Validate() error {
	if c.MaxTime <= c.TimeInit {
		return fmt.Errorf("config: max_time (%v) must be > time_init (%v)", c.MaxTime, c.TimeInit)
	}
	if c.OutputDir != "" {
		info, err := os.Stat(c.OutputDir)
		if err != nil {
			return fmt.Errorf("config: output_dir %q: %w", c.OutputDir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: output_dir %q is not a directory", c.OutputDir)
		}
	}
	if c.MaxTimePrecision < 0 {
		return fmt.Errorf("config: max_time_precision must be >= 0, got %d", c.MaxTimePrecision)
	}
	if c.CheckpointInterval < 0 {
		return fmt.Errorf("config: checkpoint_interval must be >= 0, got %d", c.CheckpointInterval)
	}
	return nil
}

// LoadConfig reads a Config from a YAML file, following the teacher's
// cmd/default_config.go strict-field-parsing convention (unknown keys in
// the file are an error, catching typos early).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}
